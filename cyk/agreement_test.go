package cyk

import (
	"testing"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

func TestAnnotate_AmbiguousAgreement(t *testing.T) {
	g := mustGrammar(t,
		grammar.Rule{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementNone},
		grammar.Rule{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementFull},
	)
	c, err := Build([]morph.Token{
		tok("великий", "ADJ", morph.Features{"Gender": "Masc"}),
		tok("хата", "NOUN", morph.Features{"Gender": "Fem"}),
	}, g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(c.Cell(0, 2)); got != 2 {
		t.Fatalf("cell [0][2] has %d constituents, want 2", got)
	}

	violations := Annotate(c)
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1: %v", len(violations), violations)
	}
	v := violations[0]
	if v.Kind != GenderOrNumberMismatch {
		t.Errorf("Kind = %v, want %v", v.Kind, GenderOrNumberMismatch)
	}
	if v.Ref != (Ref{Start: 0, End: 2, Slot: 1}) {
		t.Errorf("Ref = %v, want the full-agreement constituent", v.Ref)
	}

	cell := c.Cell(0, 2)
	if cell[0].Violation != 0 {
		t.Error("the none-agreement constituent must not be flagged")
	}
	if len(c.Cell(0, 2)) != 2 {
		t.Error("annotation removed a constituent")
	}
	if _, err := Extract(c); err != nil {
		t.Errorf("Extract after violations: %v", err)
	}
}

func TestAnnotate_NumberOnly(t *testing.T) {
	g := mustGrammar(t,
		grammar.Rule{Left: "NOUN", Right: "VERB", Result: "S", Agreement: grammar.AgreementNumber},
	)
	tests := []struct {
		name  string
		left  morph.Features
		right morph.Features
		want  int
	}{
		{"number differs", morph.Features{"Number": "Sing"}, morph.Features{"Number": "Plur"}, 1},
		{"number matches", morph.Features{"Number": "Sing", "Gender": "Masc"}, morph.Features{"Number": "Sing", "Gender": "Fem"}, 0},
		{"number missing", morph.Features{"Number": "Sing"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build([]morph.Token{tok("коти", "NOUN", tt.left), tok("спить", "VERB", tt.right)}, g)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			violations := Annotate(c)
			if len(violations) != tt.want {
				t.Fatalf("got %d violations, want %d", len(violations), tt.want)
			}
			if tt.want == 1 && violations[0].Kind != NumberMismatch {
				t.Errorf("Kind = %v, want %v", violations[0].Kind, NumberMismatch)
			}
		})
	}
}

func TestAnnotate_FullAgreementWithAllFeatures(t *testing.T) {
	g := mustGrammar(t,
		grammar.Rule{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementFull},
	)
	agree := []morph.Token{
		tok("велика", "ADJ", morph.Features{"Gender": "Fem", "Number": "Sing"}),
		tok("хата", "NOUN", morph.Features{"Gender": "Fem", "Number": "Sing"}),
	}
	c, err := Build(agree, g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := Annotate(c); len(v) != 0 {
		t.Errorf("matching features reported %v", v)
	}

	numberOff := []morph.Token{
		tok("велика", "ADJ", morph.Features{"Gender": "Fem", "Number": "Sing"}),
		tok("хати", "NOUN", morph.Features{"Gender": "Fem", "Number": "Plur"}),
	}
	c, err = Build(numberOff, g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := Annotate(c); len(v) != 1 || v[0].Kind != GenderOrNumberMismatch {
		t.Errorf("number mismatch under full agreement: got %v", v)
	}
}

func TestAnnotate_PropagatesRightChildFirst(t *testing.T) {
	g := mustGrammar(t,
		rule("NP", "ADJ", "NOUN"),
		rule("S", "NP", "VERB"),
	)
	c, err := Build([]morph.Token{
		tok("великий", "ADJ", morph.Features{"Gender": "Masc", "Number": "Sing", "Case": "Nom"}),
		tok("хата", "NOUN", morph.Features{"Gender": "Fem"}),
		tok("стоїть", "VERB", nil),
	}, g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	Annotate(c)

	np := c.Cell(0, 2)[0]
	if np.Features["Gender"] != "Fem" {
		t.Errorf("NP Gender = %q, want right child's Fem", np.Features["Gender"])
	}
	if np.Features["Number"] != "Sing" {
		t.Errorf("NP Number = %q, want left child's Sing", np.Features["Number"])
	}
	if _, ok := np.Features["Case"]; ok {
		t.Error("only Gender and Number propagate")
	}

	s := c.Roots()[0]
	if s.Features["Gender"] != "Fem" || s.Features["Number"] != "Sing" {
		t.Errorf("S features = %v, want NP's features through an empty verb", s.Features)
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	g := mustGrammar(t,
		grammar.Rule{Left: "ADJ", Right: "NOUN", Result: "NP", Agreement: grammar.AgreementFull},
	)
	c, err := Build([]morph.Token{
		tok("великий", "ADJ", morph.Features{"Gender": "Masc"}),
		tok("хата", "NOUN", morph.Features{"Gender": "Fem"}),
	}, g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	first := Annotate(c)
	second := Annotate(c)
	if len(first) != len(second) || first[0].Ref != second[0].Ref {
		t.Errorf("second run = %v, want %v", second, first)
	}
}
