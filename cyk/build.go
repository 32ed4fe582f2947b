package cyk

import (
	"github.com/tliron/commonlog"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

var log = commonlog.GetLogger("syntext.cyk")

var agreementFeatures = []string{morph.FeatureGender, morph.FeatureNumber}

// Build fills a chart bottom-up with every constituent the grammar derives.
// Derived constituents get their propagated Gender and Number and their
// agreement verdict as they are added; Annotate only collects them.
// Every token must be tagged; the first untagged one fails the build with
// *UntaggedTokenError and no chart.
func Build(tokens []morph.Token, g *grammar.Grammar) (*Chart, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptySentence
	}
	for i, tok := range tokens {
		if !tok.IsTagged() {
			return nil, &UntaggedTokenError{Index: i, Text: tok.Text}
		}
	}

	c := newChart(tokens)
	n := len(c.tokens)

	for i := range c.tokens {
		tok := &c.tokens[i]
		c.add(i, i+1, Constituent{
			Category: tok.CategoryKey().Value,
			Token:    tok,
			Features: agreementSubset(tok.Features),
		})
	}

	for span := 2; span <= n; span++ {
		for start := 0; start <= n-span; start++ {
			end := start + span
			for mid := start + 1; mid < end; mid++ {
				left := c.cells[start][mid]
				right := c.cells[mid][end]
				for li := range left {
					for ri := range right {
						rules := g.RulesFor(left[li].Category, right[ri].Category)
						lf, rf := left[li].Features, right[ri].Features
						for k := range rules {
							c.add(start, end, Constituent{
								Category:  rules[k].Result,
								Rule:      &rules[k],
								Features:  propagate(lf, rf),
								Left:      &Ref{Start: start, End: mid, Slot: li},
								Right:     &Ref{Start: mid, End: end, Slot: ri},
								Violation: check(rules[k].Agreement, lf, rf),
							})
						}
					}
				}
			}
		}
	}

	log.Debugf("chart built: %d tokens, %d constituents, %d roots", n, c.Size(), len(c.Roots()))
	return c, nil
}

func agreementSubset(f morph.Features) morph.Features {
	var out morph.Features
	for _, name := range agreementFeatures {
		if v, ok := f.Get(name); ok {
			if out == nil {
				out = make(morph.Features, len(agreementFeatures))
			}
			out[name] = v
		}
	}
	return out
}
