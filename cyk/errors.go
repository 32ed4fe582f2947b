package cyk

import (
	"errors"
	"fmt"
)

// ErrEmptySentence is returned when there is nothing to parse.
var ErrEmptySentence = errors.New("empty sentence")

// ErrInconsistentChart reports a derived constituent whose children cannot
// be resolved. Build never produces such a chart.
var ErrInconsistentChart = errors.New("inconsistent chart")

// UntaggedTokenError reports a token without a category.
type UntaggedTokenError struct {
	Index int
	Text  string
}

func (e *UntaggedTokenError) Error() string {
	return fmt.Sprintf("token %d (%q) is not tagged", e.Index, e.Text)
}

// IncompleteParseError reports that no constituent spans the whole
// sentence. Chart is kept so callers can inspect partial spans.
type IncompleteParseError struct {
	Chart *Chart
}

func (e *IncompleteParseError) Error() string {
	n := 0
	if e.Chart != nil {
		n = e.Chart.Len()
	}
	return fmt.Sprintf("no complete parse for %d tokens", n)
}
