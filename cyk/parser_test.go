package cyk

import (
	"errors"
	"strings"
	"testing"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

func testLexicon() *morph.Lexicon {
	l := morph.NewLexicon()
	l.Add("кіт", "NOUN", morph.Features{"Gender": "Masc", "Number": "Sing"})
	l.Add("коти", "NOUN", morph.Features{"Gender": "Masc", "Number": "Plur"})
	l.Add("спить", "VERB", morph.Features{"Number": "Sing"})
	l.Add("великий", "ADJ", morph.Features{"Gender": "Masc", "Number": "Sing"})
	return l
}

func TestParser_Parse(t *testing.T) {
	g := mustGrammar(t,
		grammar.Rule{Left: "NOUN", Right: "VERB", Result: "S", Agreement: grammar.AgreementNumber},
		grammar.Rule{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementFull},
		grammar.Rule{Left: "NP", Right: "VERB", Result: "S", Agreement: grammar.AgreementNumber},
	)
	p := NewParser(testLexicon(), g)

	res, err := p.Parse("Великий кіт спить")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Agrees() {
		t.Errorf("unexpected violations %v", res.Violations)
	}
	if res.Tree[0].Tag != "S" || len(res.Tree) != 5 {
		t.Errorf("tree = %+v", res.Tree)
	}
	if len(res.Tokens) != 3 || res.Chart.Len() != 3 {
		t.Errorf("result tokens = %v", res.Tokens)
	}

	res, err = p.Parse("коти спить")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Kind != NumberMismatch {
		t.Errorf("violations = %v, want one number mismatch", res.Violations)
	}
	if res.Tree == nil {
		t.Error("violations must not block tree extraction")
	}
}

func TestParser_UntaggedWord(t *testing.T) {
	p := NewParser(testLexicon(), mustGrammar(t, rule("S", "NOUN", "VERB")))
	_, err := p.Parse("кіт гарбуз")
	var untagged *UntaggedTokenError
	if !errors.As(err, &untagged) {
		t.Fatalf("Parse() error = %v, want *UntaggedTokenError", err)
	}
	if untagged.Index != 1 || untagged.Text != "гарбуз" {
		t.Errorf("error = %+v", untagged)
	}
}

func TestParser_TaggerError(t *testing.T) {
	tagErr := errors.New("tagger offline")
	p := NewParser(morph.TaggerFunc(func(string) ([]morph.Token, error) {
		return nil, tagErr
	}), mustGrammar(t))
	_, err := p.Parse("кіт")
	if !errors.Is(err, tagErr) {
		t.Fatalf("Parse() error = %v, want wrapped tagger error", err)
	}
	if !strings.HasPrefix(err.Error(), "tag: ") {
		t.Errorf("error %q should be prefixed", err)
	}
}

func TestParser_Chart(t *testing.T) {
	p := NewParser(testLexicon(), mustGrammar(t, rule("NP", "ADJ", "NOUN")))
	if _, err := p.Parse("великий кіт спить"); err == nil {
		t.Fatal("expected incomplete parse")
	}
	c, violations, err := p.Chart("великий кіт спить")
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if c.Complete() {
		t.Error("chart should be incomplete")
	}
	if len(c.Cell(0, 2)) != 1 || len(violations) != 0 {
		t.Errorf("partial chart = %v, violations = %v", c.Cell(0, 2), violations)
	}
}

func TestParser_WithRootPolicy(t *testing.T) {
	g := mustGrammar(t, rule("NP", "NOUN", "VERB"), rule("S", "NOUN", "VERB"))
	p := NewParser(testLexicon(), g, WithRootPolicy(PreferCategory("S")))
	res, err := p.Parse("кіт спить")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Tree[0].Tag != "S" {
		t.Errorf("root = %s, want S", res.Tree[0].Tag)
	}
}
