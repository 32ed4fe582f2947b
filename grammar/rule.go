// Package grammar holds the binary production rules used by the chart parser.
package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Agreement is the feature agreement a rule demands of its two children.
type Agreement int

const (
	// AgreementNone places no requirement on the children.
	AgreementNone Agreement = iota
	// AgreementNumber requires matching Number.
	AgreementNumber
	// AgreementFull requires matching Gender and Number.
	AgreementFull
)

func (a Agreement) String() string {
	switch a {
	case AgreementNone:
		return "none"
	case AgreementNumber:
		return "number"
	case AgreementFull:
		return "full"
	default:
		return fmt.Sprintf("Agreement(%d)", int(a))
	}
}

// Valid reports whether a is one of the declared agreement kinds.
func (a Agreement) Valid() bool {
	return a >= AgreementNone && a <= AgreementFull
}

// ParseAgreement accepts "none", "number" and "full" plus a few spellings
// used by older rule dumps.
func ParseAgreement(s string) (Agreement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AgreementNone, nil
	case "number", "num", "num_agr", "number-only":
		return AgreementNumber, nil
	case "full", "full_agr":
		return AgreementFull, nil
	}
	return AgreementNone, fmt.Errorf("unknown agreement %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Agreement) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid agreement %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Agreement) UnmarshalText(text []byte) error {
	v, err := ParseAgreement(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Rule is a binary production Left Right -> Result.
type Rule struct {
	Left      string
	Right     string
	Result    string
	Agreement Agreement
}

// String renders the rule in the text grammar notation:
//
//	NP ::= ADJ NOUN ; full
func (r Rule) String() string {
	s := fmt.Sprintf("%s ::= %s %s", FormatSymbol(r.Result), FormatSymbol(r.Left), FormatSymbol(r.Right))
	if r.Agreement != AgreementNone {
		s += " ; " + r.Agreement.String()
	}
	return s
}

// FormatSymbol quotes symbols that are not plain identifiers, so literal
// keys such as "," survive a round trip through the text notation.
func FormatSymbol(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return strconv.Quote(s)
		}
	}
	return s
}
