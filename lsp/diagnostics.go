package lsp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/store"
)

var source = lsName

// Diagnostics checks a grammar document. path decides the format by its
// extension. Lines in the result are zero-based.
func Diagnostics(path, text string) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}

	rules, lines, err := store.ParseLines(store.DetectFormat(path), path, strings.NewReader(text))

	var (
		list   store.SyntaxErrors
		single *store.SyntaxError
	)
	switch {
	case err == nil:
	case errors.As(err, &list):
		for _, e := range list {
			diags = append(diags, diagnostic(e.Line, protocol.DiagnosticSeverityError, e.Err.Error()))
		}
	case errors.As(err, &single):
		diags = append(diags, diagnostic(single.Line, protocol.DiagnosticSeverityError, single.Err.Error()))
	default:
		diags = append(diags, diagnostic(1, protocol.DiagnosticSeverityError, err.Error()))
	}

	lineOf := func(i int) int {
		if i < len(lines) {
			return lines[i]
		}
		return 1
	}
	first := make(map[grammar.Rule]int, len(rules))
	for i, r := range rules {
		if j, ok := first[r]; ok {
			diags = append(diags, diagnostic(lineOf(i), protocol.DiagnosticSeverityWarning,
				fmt.Sprintf("duplicate of %s on line %d", r, lineOf(j))))
			continue
		}
		first[r] = i
	}

	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Range.Start.Line < diags[j].Range.Start.Line
	})
	return diags
}

func diagnostic(line int, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	if line < 1 {
		line = 1
	}
	l := protocol.UInteger(line - 1)
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: l, Character: 0},
			End:   protocol.Position{Line: l + 1, Character: 0},
		},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

// Categories returns the symbols used by the document's rules followed by
// the universal part-of-speech tags it does not use yet, without repeats.
func Categories(path, text string) []string {
	rules, _ := store.Parse(store.DetectFormat(path), path, strings.NewReader(text))

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range rules {
		add(r.Result)
		add(r.Left)
		add(r.Right)
	}
	for _, tag := range universal {
		add(tag)
	}
	return out
}
