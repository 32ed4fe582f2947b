package store

import (
	"io"
	"sort"
	"text/scanner"

	"github.com/pkg/errors"
	"golang.org/x/exp/ebnf"

	"github.com/syntpump/syntext/grammar"
)

// ParseEBNF reads a grammar written in EBNF:
//
//	NP = ADJ NOUN | ADJ NP .
//	PP = ADP NP | "," NP .
//
// Each alternative must be a sequence of exactly two names or literal
// tokens. Rules come out in the order their productions appear in the file
// and carry no agreement.
func ParseEBNF(filename string, r io.Reader) ([]grammar.Rule, error) {
	rules, _, err := ParseEBNFLines(filename, r)
	return rules, err
}

// ParseEBNFLines is ParseEBNF that also returns the line each alternative
// starts on.
func ParseEBNFLines(filename string, r io.Reader) ([]grammar.Rule, []int, error) {
	g, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse ebnf")
	}

	prods := make([]*ebnf.Production, 0, len(g))
	for _, p := range g {
		prods = append(prods, p)
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Name.StringPos.Offset < prods[j].Name.StringPos.Offset
	})

	var (
		rules []grammar.Rule
		lines []int
	)
	for _, p := range prods {
		result := p.Name.String
		if p.Expr == nil {
			return nil, nil, positioned(p.Name.StringPos, errors.Errorf("production %s is empty", result))
		}
		for _, alt := range alternatives(p.Expr) {
			seq, ok := unwrap(alt).(ebnf.Sequence)
			if !ok || len(seq) != 2 {
				return nil, nil, positioned(alt.Pos(), errors.Errorf("production %s: alternative must have exactly two symbols", result))
			}
			left, err := symbol(seq[0])
			if err != nil {
				return nil, nil, positioned(seq[0].Pos(), errors.Wrapf(err, "production %s", result))
			}
			right, err := symbol(seq[1])
			if err != nil {
				return nil, nil, positioned(seq[1].Pos(), errors.Wrapf(err, "production %s", result))
			}
			rules = append(rules, grammar.Rule{Left: left, Right: right, Result: result})
			lines = append(lines, alt.Pos().Line)
		}
	}
	return rules, lines, nil
}

func alternatives(expr ebnf.Expression) []ebnf.Expression {
	if alt, ok := unwrap(expr).(ebnf.Alternative); ok {
		return alt
	}
	return []ebnf.Expression{expr}
}

func unwrap(expr ebnf.Expression) ebnf.Expression {
	for {
		g, ok := expr.(*ebnf.Group)
		if !ok {
			return expr
		}
		expr = g.Body
	}
}

func symbol(expr ebnf.Expression) (string, error) {
	switch x := unwrap(expr).(type) {
	case *ebnf.Name:
		return x.String, nil
	case *ebnf.Token:
		if x.String == "" {
			return "", errors.New("empty literal")
		}
		return x.String, nil
	default:
		return "", errors.Errorf("unsupported expression %T", expr)
	}
}

func positioned(pos scanner.Position, err error) error {
	return &SyntaxError{Filename: pos.Filename, Line: pos.Line, Err: err}
}
