package cyk

import (
	"fmt"

	"github.com/syntpump/syntext/morph"
)

// ParseNode is one node of a breadth-first linearized parse tree.
type ParseNode struct {
	ID  int
	Tag string

	// Word is set for terminals only.
	Word *string

	// Morphology holds the token's features for terminals and the
	// propagated Gender/Number for internal nodes.
	Morphology morph.Features

	// Children holds the ids of the left and right child of internal nodes.
	Children *[2]int

	// Start and End delimit the covered tokens.
	Start int
	End   int

	Violation ViolationKind
}

// IsTerminal reports whether the node wraps a word.
func (n ParseNode) IsTerminal() bool {
	return n.Word != nil
}

// RootPolicy picks the slot of the root among the constituents of cell [0][n].
type RootPolicy func(c *Chart, roots []Constituent) int

// FirstRoot picks the first root constituent.
func FirstRoot(_ *Chart, _ []Constituent) int {
	return 0
}

// PreferCategory picks the first root of the given category, falling back
// to the first root.
func PreferCategory(category string) RootPolicy {
	return func(_ *Chart, roots []Constituent) int {
		for i := range roots {
			if roots[i].Category == category {
				return i
			}
		}
		return 0
	}
}

// PreferAgreeing picks the first root whose subtree has no agreement
// violation, falling back to the first root.
func PreferAgreeing(c *Chart, roots []Constituent) int {
	for i := range roots {
		if subtreeAgrees(c, &roots[i]) {
			return i
		}
	}
	return 0
}

func subtreeAgrees(c *Chart, con *Constituent) bool {
	if con.Violation != 0 {
		return false
	}
	if con.IsTerminal() {
		return true
	}
	left, right, ok := c.children(con)
	return ok && subtreeAgrees(c, left) && subtreeAgrees(c, right)
}

// Extract linearizes the first complete parse.
func Extract(c *Chart) ([]ParseNode, error) {
	return ExtractWith(c, FirstRoot)
}

// ExtractWith linearizes the parse rooted at the constituent chosen by
// policy. Nodes are emitted breadth-first; ids equal positions in the
// result and children ids are handed out when the children are queued, so
// they stay valid for unbalanced trees. A single-token sentence is a
// complete parse consisting of its terminal.
func ExtractWith(c *Chart, policy RootPolicy) ([]ParseNode, error) {
	roots := c.Roots()
	if len(roots) == 0 {
		return nil, &IncompleteParseError{Chart: c}
	}
	if policy == nil {
		policy = FirstRoot
	}
	slot := policy(c, roots)
	if slot < 0 || slot >= len(roots) {
		return nil, fmt.Errorf("%w: root policy chose slot %d of %d", ErrInconsistentChart, slot, len(roots))
	}

	n := c.Len()
	queue := []Ref{{Start: 0, End: n, Slot: slot}}
	nodes := make([]ParseNode, 0, 2*n-1)
	nextID := 1

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		con, ok := c.At(ref)
		if !ok {
			return nil, fmt.Errorf("%w: dangling reference %v", ErrInconsistentChart, ref)
		}

		node := ParseNode{
			ID:        len(nodes),
			Tag:       con.Category,
			Start:     ref.Start,
			End:       ref.End,
			Violation: con.Violation,
		}

		if con.IsTerminal() {
			word := con.Token.Text
			node.Word = &word
			node.Tag = con.Token.Category
			node.Morphology = con.Token.Features.Clone()
			nodes = append(nodes, node)
			continue
		}

		if con.Left == nil || con.Right == nil {
			return nil, fmt.Errorf("%w: constituent %v has no children", ErrInconsistentChart, ref)
		}
		node.Morphology = con.Features.Clone()
		node.Children = &[2]int{nextID, nextID + 1}
		nextID += 2
		queue = append(queue, *con.Left, *con.Right)
		nodes = append(nodes, node)
	}

	return nodes, nil
}
