package store

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/syntpump/syntext/grammar"
)

// ruleDoc is one rule as stored in a document collection dump.
type ruleDoc struct {
	Result string          `json:"upos"`
	Prod   []string        `json:"prod"`
	Full   json.RawMessage `json:"full_agr,omitempty"`
	Number json.RawMessage `json:"num_agr,omitempty"`
}

// flagSet reports whether a raw JSON value turns an agreement on. Missing
// keys, null and false leave it off; any other value enables it.
func flagSet(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "false":
		return false
	}
	return true
}

func (d ruleDoc) rule() (grammar.Rule, error) {
	if len(d.Prod) != 2 {
		return grammar.Rule{}, errors.Errorf("rule %q: prod needs two symbols, got %d", d.Result, len(d.Prod))
	}
	r := grammar.Rule{Left: d.Prod[0], Right: d.Prod[1], Result: d.Result}
	switch {
	case flagSet(d.Full):
		r.Agreement = grammar.AgreementFull
	case flagSet(d.Number):
		r.Agreement = grammar.AgreementNumber
	}
	return r, nil
}

// ParseJSON reads rule documents of the form
//
//	{"upos": "NP", "prod": ["ADJ", "NOUN"], "full_agr": true}
//
// either as a single JSON array or as a stream of objects (JSON lines).
func ParseJSON(filename string, r io.Reader) ([]grammar.Rule, error) {
	rules, _, err := ParseJSONLines(filename, r)
	return rules, err
}

// ParseJSONLines is ParseJSON that also returns the line each rule's
// document starts on.
func ParseJSONLines(filename string, r io.Reader) ([]grammar.Rule, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s: read", filename)
	}
	dec := json.NewDecoder(bytes.NewReader(data))

	var (
		docs    []ruleDoc
		offsets []int64
	)
	for n := 0; ; n++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, errors.Wrapf(err, "%s: document %d", filename, n)
		}
		start := dec.InputOffset() - int64(len(raw))
		if len(raw) > 0 && raw[0] == '[' {
			batch, at, err := decodeArray(raw)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "%s: document %d", filename, n)
			}
			docs = append(docs, batch...)
			for _, off := range at {
				offsets = append(offsets, start+off)
			}
			continue
		}
		var doc ruleDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, nil, errors.Wrapf(err, "%s: document %d", filename, n)
		}
		docs = append(docs, doc)
		offsets = append(offsets, start)
	}

	rules := make([]grammar.Rule, 0, len(docs))
	lines := make([]int, 0, len(docs))
	for i, d := range docs {
		rule, err := d.rule()
		if err != nil {
			line := lineAt(data, offsets[i])
			return nil, nil, &SyntaxError{Filename: filename, Line: line, Err: errors.Wrapf(err, "rule %d", i)}
		}
		rules = append(rules, rule)
		lines = append(lines, lineAt(data, offsets[i]))
	}
	return rules, lines, nil
}

// decodeArray splits a JSON array into rule documents and the offset of
// each element within raw.
func decodeArray(raw json.RawMessage) ([]ruleDoc, []int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	var (
		docs    []ruleDoc
		offsets []int64
	)
	for dec.More() {
		var elem json.RawMessage
		if err := dec.Decode(&elem); err != nil {
			return nil, nil, err
		}
		var doc ruleDoc
		if err := json.Unmarshal(elem, &doc); err != nil {
			return nil, nil, errors.Wrapf(err, "element %d", len(docs))
		}
		docs = append(docs, doc)
		offsets = append(offsets, dec.InputOffset()-int64(len(elem)))
	}
	return docs, offsets, nil
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + bytes.Count(data[:offset], []byte{'\n'})
}

type ruleDocOut struct {
	Result string    `json:"upos"`
	Prod   [2]string `json:"prod"`
	Full   bool      `json:"full_agr"`
	Number bool      `json:"num_agr"`
}

// EncodeJSON writes rules as an indented JSON array readable by ParseJSON.
func EncodeJSON(w io.Writer, rules []grammar.Rule) error {
	out := make([]ruleDocOut, len(rules))
	for i, r := range rules {
		out[i] = ruleDocOut{
			Result: r.Result,
			Prod:   [2]string{r.Left, r.Right},
			Full:   r.Agreement == grammar.AgreementFull,
			Number: r.Agreement == grammar.AgreementNumber,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
