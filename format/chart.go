package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/syntpump/syntext/cyk"
)

// ChartEncoder draws the chart of a result as two grids: the first
// constituent of every cell, then the first constituent that violates
// agreement.
type ChartEncoder struct {
	w   io.Writer
	res *cyk.Result
}

func NewChartEncoder(w io.Writer) *ChartEncoder {
	return &ChartEncoder{w: w}
}

func (e *ChartEncoder) Encode(res *cyk.Result) error {
	e.res = res
	return write(e.w, e)
}

func (e *ChartEncoder) MarshalText() ([]byte, error) {
	s, err := RenderChart(e.res.Chart, e.res.Violations)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// ChartTable returns the grid of cell [i][j] for rows i=0..n-1 and columns
// j=1..n. pick chooses the label of a cell; "." marks empty ones.
func ChartTable(c *cyk.Chart, pick func(cell []cyk.Constituent) string) pterm.TableData {
	n := c.Len()
	header := make([]string, n+1)
	for j := 1; j <= n; j++ {
		header[j] = strconv.Itoa(j)
	}
	data := pterm.TableData{header}
	for i := 0; i < n; i++ {
		row := make([]string, n+1)
		row[0] = strconv.Itoa(i)
		for j := 1; j <= n; j++ {
			label := pick(c.Cell(i, j))
			if label == "" {
				label = "."
			}
			row[j] = label
		}
		data = append(data, row)
	}
	return data
}

func firstCategory(cell []cyk.Constituent) string {
	if len(cell) == 0 {
		return ""
	}
	return cell[0].Category
}

func firstViolation(cell []cyk.Constituent) string {
	for i := range cell {
		if cell[i].Violation != 0 {
			return pterm.Red(cell[i].Category)
		}
	}
	return ""
}

// RenderChart returns both grids and the list of violations.
func RenderChart(c *cyk.Chart, violations []cyk.Violation) (string, error) {
	if c == nil {
		return "", fmt.Errorf("no chart")
	}
	var sb strings.Builder

	for _, grid := range []struct {
		title string
		pick  func([]cyk.Constituent) string
	}{
		{"NAGR", firstCategory},
		{"WAGR", firstViolation},
	} {
		data := ChartTable(c, grid.pick)
		data[0][0] = grid.title
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return "", fmt.Errorf("render %s: %w", grid.title, err)
		}
		sb.WriteString(table)
		sb.WriteString("\n\n")
	}

	tokens := c.Tokens()
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = fmt.Sprintf("%d:%s", i, t)
	}
	sb.WriteString(pterm.Gray(strings.Join(words, " ")))
	sb.WriteByte('\n')

	for _, v := range violations {
		sb.WriteString(pterm.Yellow("possible error: "))
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
