// Package format renders parse results for people and programs.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/syntpump/syntext/cyk"
)

// Encoder writes one parse result.
type Encoder interface {
	encoding.TextMarshaler
	Encode(res *cyk.Result) error
}

// Names of the encoders accepted by New.
const (
	JSON  = "json"
	Tree  = "tree"
	Chart = "chart"
)

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case JSON, "":
		return NewJSONEncoder(w), nil
	case Tree:
		return NewTreeEncoder(w), nil
	case Chart:
		return NewChartEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want json, tree or chart)", name)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
