package grammar

import (
	"fmt"
)

// Store supplies production rules. It is consulted once per session.
type Store interface {
	LoadRules() ([]Rule, error)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func() ([]Rule, error)

func (f StoreFunc) LoadRules() ([]Rule, error) {
	return f()
}

// RuleError reports an invalid rule found while freezing a grammar.
type RuleError struct {
	Index  int
	Rule   Rule
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s -> %s %s): %s", e.Index, e.Rule.Result, e.Rule.Left, e.Rule.Right, e.Reason)
}

type pair struct {
	left, right string
}

// Grammar is an immutable set of rules indexed by their (left, right) pair.
// It is safe for concurrent use.
type Grammar struct {
	rules []Rule
	index map[pair][]Rule
}

// New validates rules and freezes them into a Grammar. Rules that share a
// pair keep their relative order; they must differ in result or agreement.
func New(rules []Rule) (*Grammar, error) {
	g := &Grammar{
		rules: make([]Rule, len(rules)),
		index: make(map[pair][]Rule),
	}
	copy(g.rules, rules)

	seen := make(map[Rule]int, len(rules))
	for i, r := range g.rules {
		switch {
		case r.Left == "" || r.Right == "":
			return nil, &RuleError{Index: i, Rule: r, Reason: "empty right-hand symbol"}
		case r.Result == "":
			return nil, &RuleError{Index: i, Rule: r, Reason: "empty result"}
		case !r.Agreement.Valid():
			return nil, &RuleError{Index: i, Rule: r, Reason: "invalid agreement"}
		}
		if j, ok := seen[r]; ok {
			return nil, &RuleError{Index: i, Rule: r, Reason: fmt.Sprintf("duplicates rule %d", j)}
		}
		seen[r] = i
		key := pair{r.Left, r.Right}
		g.index[key] = append(g.index[key], r)
	}
	return g, nil
}

// Load reads all rules from s and freezes them.
func Load(s Store) (*Grammar, error) {
	rules, err := s.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	g, err := New(rules)
	if err != nil {
		return nil, fmt.Errorf("build grammar: %w", err)
	}
	return g, nil
}

// RulesFor returns every rule whose right-hand side is exactly (left, right).
// The returned slice belongs to the grammar and must not be modified.
func (g *Grammar) RulesFor(left, right string) []Rule {
	return g.index[pair{left, right}]
}

// Rules returns a copy of all rules in load order.
func (g *Grammar) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Len returns the number of rules.
func (g *Grammar) Len() int {
	return len(g.rules)
}

// Duplicates returns the indexes of rules identical to an earlier rule.
func Duplicates(rules []Rule) []int {
	seen := make(map[Rule]bool, len(rules))
	var dups []int
	for i, r := range rules {
		if seen[r] {
			dups = append(dups, i)
			continue
		}
		seen[r] = true
	}
	return dups
}
