package cyk

import (
	"fmt"

	"github.com/syntpump/syntext/grammar"
	"github.com/syntpump/syntext/morph"
)

// Result is a successful parse of one sentence.
type Result struct {
	Tokens     []morph.Token
	Chart      *Chart
	Tree       []ParseNode
	Violations []Violation
}

// Agrees reports whether the chart had no agreement violation.
func (r *Result) Agrees() bool {
	return len(r.Violations) == 0
}

// Parser combines a tagger and a grammar. It holds no per-sentence state
// and may be shared by goroutines as long as the tagger allows it.
type Parser struct {
	tagger  morph.Tagger
	grammar *grammar.Grammar
	policy  RootPolicy
}

// Option configures a Parser.
type Option func(*Parser)

// WithRootPolicy sets how the root is chosen among ambiguous parses.
func WithRootPolicy(policy RootPolicy) Option {
	return func(p *Parser) {
		p.policy = policy
	}
}

// NewParser creates a parser.
func NewParser(tagger morph.Tagger, g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{
		tagger:  tagger,
		grammar: g,
		policy:  FirstRoot,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the parser's grammar.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Tag runs the tagger alone.
func (p *Parser) Tag(sentence string) ([]morph.Token, error) {
	tokens, err := p.tagger.Tag(sentence)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}
	return tokens, nil
}

// Parse tags the sentence and parses the tokens.
func (p *Parser) Parse(sentence string) (*Result, error) {
	tokens, err := p.Tag(sentence)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

// Chart tags and builds an annotated chart without extracting a tree, for
// inspecting sentences that have no complete parse.
func (p *Parser) Chart(sentence string) (*Chart, []Violation, error) {
	tokens, err := p.Tag(sentence)
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(tokens, p.grammar)
	if err != nil {
		return nil, nil, err
	}
	return c, Annotate(c), nil
}

// ParseTokens builds and annotates the chart, then extracts a tree.
func (p *Parser) ParseTokens(tokens []morph.Token) (*Result, error) {
	c, err := Build(tokens, p.grammar)
	if err != nil {
		return nil, err
	}
	violations := Annotate(c)
	tree, err := ExtractWith(c, p.policy)
	if err != nil {
		return nil, err
	}
	for _, v := range violations {
		log.Infof("agreement violation %s", v)
	}
	return &Result{
		Tokens:     c.Tokens(),
		Chart:      c,
		Tree:       tree,
		Violations: violations,
	}, nil
}
