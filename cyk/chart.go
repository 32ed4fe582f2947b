// Package cyk implements a CYK chart parser over tagged tokens and a binary
// grammar. The chart keeps every derivable constituent for every span; an
// agreement pass flags feature mismatches without discarding anything, and
// a tree extractor linearizes one parse breadth-first.
package cyk

import (
	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

// Ref addresses a constituent: cell [Start][End], position Slot.
type Ref struct {
	Start int
	End   int
	Slot  int
}

// Constituent is one entry of a chart cell.
type Constituent struct {
	// Category is the token's category key for terminals and the rule
	// result for derived constituents.
	Category string

	// Exactly one of Token and Rule is set.
	Token *morph.Token
	Rule  *grammar.Rule

	// Features holds the propagated Gender and Number.
	Features morph.Features

	// Left and Right point into strictly smaller spans; nil for terminals.
	Left  *Ref
	Right *Ref

	// Violation is set when the rule's agreement fails.
	Violation ViolationKind
}

// IsTerminal reports whether the constituent wraps a token.
func (c *Constituent) IsTerminal() bool {
	return c.Token != nil
}

// Chart is the well-formed substring table of one sentence: an
// (n+1)×(n+1) table whose cell [i][j], i<j, holds the constituents
// spanning tokens i..j-1.
type Chart struct {
	tokens []morph.Token
	cells  [][][]Constituent
}

func newChart(tokens []morph.Token) *Chart {
	n := len(tokens)
	c := &Chart{
		tokens: make([]morph.Token, n),
		cells:  make([][][]Constituent, n+1),
	}
	copy(c.tokens, tokens)
	for i := range c.cells {
		c.cells[i] = make([][]Constituent, n+1)
	}
	return c
}

// Len returns the number of tokens.
func (c *Chart) Len() int {
	return len(c.tokens)
}

// Tokens returns the tokens the chart was built from.
func (c *Chart) Tokens() []morph.Token {
	return c.tokens
}

// Cell returns the constituents spanning [start, end). Invalid spans yield nil.
func (c *Chart) Cell(start, end int) []Constituent {
	if start < 0 || end > len(c.tokens) || start >= end {
		return nil
	}
	return c.cells[start][end]
}

// At resolves a reference.
func (c *Chart) At(r Ref) (*Constituent, bool) {
	cell := c.Cell(r.Start, r.End)
	if r.Slot < 0 || r.Slot >= len(cell) {
		return nil, false
	}
	return &cell[r.Slot], true
}

// Roots returns the constituents spanning the whole sentence.
func (c *Chart) Roots() []Constituent {
	return c.Cell(0, len(c.tokens))
}

// Complete reports whether the sentence has at least one full parse.
func (c *Chart) Complete() bool {
	return len(c.Roots()) > 0
}

// Size returns the total number of constituents in the chart.
func (c *Chart) Size() int {
	size := 0
	c.Walk(func(Ref, *Constituent) { size++ })
	return size
}

// Walk visits every constituent, shorter spans first, then by start and slot.
func (c *Chart) Walk(fn func(ref Ref, con *Constituent)) {
	n := len(c.tokens)
	for span := 1; span <= n; span++ {
		for start := 0; start+span <= n; start++ {
			end := start + span
			cell := c.cells[start][end]
			for slot := range cell {
				fn(Ref{Start: start, End: end, Slot: slot}, &cell[slot])
			}
		}
	}
}

func (c *Chart) add(start, end int, con Constituent) Ref {
	c.cells[start][end] = append(c.cells[start][end], con)
	return Ref{Start: start, End: end, Slot: len(c.cells[start][end]) - 1}
}

func (c *Chart) children(con *Constituent) (left, right *Constituent, ok bool) {
	if con.Left == nil || con.Right == nil {
		return nil, nil, false
	}
	left, lok := c.At(*con.Left)
	right, rok := c.At(*con.Right)
	return left, right, lok && rok
}
