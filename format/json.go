package format

import (
	"encoding/json"
	"io"

	"github.com/syntpump/syntext/cyk"
	"github.com/syntpump/syntext/morph"
)

type JSONEncoder struct {
	w   io.Writer
	res *cyk.Result
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(res *cyk.Result) error {
	e.res = res
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(ResultData(e.res), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type jsonResult struct {
	Tokens     []jsonToken     `json:"tokens"`
	Tree       []jsonNode      `json:"tree"`
	Violations []jsonViolation `json:"violations"`
	Agrees     bool            `json:"agrees"`
}

type jsonToken struct {
	Text     string         `json:"text"`
	Category string         `json:"upos"`
	Features morph.Features `json:"feats,omitempty"`
	Key      string         `json:"key"`
}

type jsonNode struct {
	ID        int            `json:"id"`
	Tag       string         `json:"tag"`
	Word      *string        `json:"word,omitempty"`
	Morph     morph.Features `json:"morph,omitempty"`
	LinksTo   []int          `json:"linksTo,omitempty"`
	Start     int            `json:"start"`
	End       int            `json:"end"`
	Violation string         `json:"violation,omitempty"`
}

type jsonViolation struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Slot  int            `json:"slot"`
	Kind  string         `json:"kind"`
	Rule  string         `json:"rule"`
	Left  morph.Features `json:"left,omitempty"`
	Right morph.Features `json:"right,omitempty"`
}

// ResultData converts a result into the structure written by JSONEncoder.
func ResultData(res *cyk.Result) any {
	out := jsonResult{
		Tokens:     tokensData(res.Tokens),
		Tree:       make([]jsonNode, len(res.Tree)),
		Violations: violationsData(res.Violations),
		Agrees:     res.Agrees(),
	}
	for i, n := range res.Tree {
		node := jsonNode{
			ID:    n.ID,
			Tag:   n.Tag,
			Word:  n.Word,
			Morph: n.Morphology,
			Start: n.Start,
			End:   n.End,
		}
		if n.Children != nil {
			node.LinksTo = []int{n.Children[0], n.Children[1]}
		}
		if n.Violation != 0 {
			node.Violation = n.Violation.String()
		}
		out.Tree[i] = node
	}
	return out
}

// TokensData converts tagged tokens into their JSON form.
func TokensData(tokens []morph.Token) any {
	return tokensData(tokens)
}

func tokensData(tokens []morph.Token) []jsonToken {
	out := make([]jsonToken, len(tokens))
	for i, t := range tokens {
		out[i] = jsonToken{
			Text:     t.Text,
			Category: t.Category,
			Features: t.Features,
			Key:      t.CategoryKey().String(),
		}
	}
	return out
}

func violationsData(violations []cyk.Violation) []jsonViolation {
	out := make([]jsonViolation, len(violations))
	for i, v := range violations {
		out[i] = jsonViolation{
			Start: v.Ref.Start,
			End:   v.Ref.End,
			Slot:  v.Ref.Slot,
			Kind:  v.Kind.String(),
			Rule:  v.Rule.String(),
			Left:  v.Left,
			Right: v.Right,
		}
	}
	return out
}

type jsonChart struct {
	Tokens     []jsonToken     `json:"tokens"`
	Complete   bool            `json:"complete"`
	Cells      []jsonCell      `json:"cells"`
	Violations []jsonViolation `json:"violations"`
}

type jsonCell struct {
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Constituents []jsonConstituent `json:"constituents"`
}

type jsonConstituent struct {
	Category  string         `json:"category"`
	Word      string         `json:"word,omitempty"`
	Rule      string         `json:"rule,omitempty"`
	Features  morph.Features `json:"features,omitempty"`
	Left      *jsonRef       `json:"left,omitempty"`
	Right     *jsonRef       `json:"right,omitempty"`
	Violation string         `json:"violation,omitempty"`
}

type jsonRef struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Slot  int `json:"slot"`
}

func refData(r *cyk.Ref) *jsonRef {
	if r == nil {
		return nil
	}
	return &jsonRef{Start: r.Start, End: r.End, Slot: r.Slot}
}

// ChartData converts a chart into a JSON-friendly list of non-empty cells,
// shorter spans first.
func ChartData(c *cyk.Chart, violations []cyk.Violation) any {
	out := jsonChart{
		Tokens:     tokensData(c.Tokens()),
		Complete:   c.Complete(),
		Cells:      []jsonCell{},
		Violations: violationsData(violations),
	}
	n := c.Len()
	for span := 1; span <= n; span++ {
		for start := 0; start+span <= n; start++ {
			cell := c.Cell(start, start+span)
			if len(cell) == 0 {
				continue
			}
			jc := jsonCell{Start: start, End: start + span}
			for _, con := range cell {
				item := jsonConstituent{
					Category: con.Category,
					Features: con.Features,
					Left:     refData(con.Left),
					Right:    refData(con.Right),
				}
				if con.Token != nil {
					item.Word = con.Token.Text
				}
				if con.Rule != nil {
					item.Rule = con.Rule.String()
				}
				if con.Violation != 0 {
					item.Violation = con.Violation.String()
				}
				jc.Constituents = append(jc.Constituents, item)
			}
			out.Cells = append(out.Cells, jc)
		}
	}
	return out
}
