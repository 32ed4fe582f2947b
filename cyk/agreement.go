package cyk

import (
	"fmt"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

// ViolationKind classifies an agreement failure. The zero value means none.
type ViolationKind int

const (
	GenderOrNumberMismatch ViolationKind = iota + 1
	NumberMismatch
)

func (k ViolationKind) String() string {
	switch k {
	case 0:
		return "none"
	case GenderOrNumberMismatch:
		return "gender-or-number-mismatch"
	case NumberMismatch:
		return "number-mismatch"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// Violation is an agreement failure found at one constituent. It never
// removes the constituent from the chart.
type Violation struct {
	Ref   Ref
	Kind  ViolationKind
	Rule  grammar.Rule
	Left  morph.Features
	Right morph.Features
}

func (v Violation) String() string {
	return fmt.Sprintf("[%d,%d) %s: %s vs %s (%s)",
		v.Ref.Start, v.Ref.End, v.Kind, v.Left, v.Right, v.Rule)
}

// Annotate recomputes Gender and Number for every derived constituent,
// right child first, and reports agreement violations. Build already does
// the same, so calling it again is harmless.
func Annotate(c *Chart) []Violation {
	var violations []Violation
	c.Walk(func(ref Ref, con *Constituent) {
		if con.IsTerminal() {
			return
		}
		left, right, ok := c.children(con)
		if !ok {
			log.Errorf("constituent %v has unresolved children", ref)
			return
		}
		con.Features = propagate(left.Features, right.Features)
		con.Violation = check(con.Rule.Agreement, left.Features, right.Features)
		if con.Violation != 0 {
			violations = append(violations, Violation{
				Ref:   ref,
				Kind:  con.Violation,
				Rule:  *con.Rule,
				Left:  left.Features,
				Right: right.Features,
			})
		}
	})
	return violations
}

func propagate(left, right morph.Features) morph.Features {
	var out morph.Features
	for _, name := range agreementFeatures {
		v, ok := right.Get(name)
		if !ok {
			v, ok = left.Get(name)
		}
		if !ok {
			continue
		}
		if out == nil {
			out = make(morph.Features, len(agreementFeatures))
		}
		out[name] = v
	}
	return out
}

func check(agreement grammar.Agreement, left, right morph.Features) ViolationKind {
	lg, lgOK := left.Get(morph.FeatureGender)
	rg, rgOK := right.Get(morph.FeatureGender)
	ln, lnOK := left.Get(morph.FeatureNumber)
	rn, rnOK := right.Get(morph.FeatureNumber)

	switch agreement {
	case grammar.AgreementFull:
		// Each feature is compared only when both children carry it.
		if (lgOK && rgOK && lg != rg) || (lnOK && rnOK && ln != rn) {
			return GenderOrNumberMismatch
		}
	case grammar.AgreementNumber:
		if lnOK && rnOK && ln != rn {
			return NumberMismatch
		}
	}
	return 0
}
