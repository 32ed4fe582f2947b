package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/syntpump/syntext/cyk"
)

// TreeEncoder writes the parse tree as an indented outline, one node per
// line, followed by any agreement violations.
type TreeEncoder struct {
	w   io.Writer
	res *cyk.Result
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(res *cyk.Result) error {
	e.res = res
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(TreeString(e.res.Tree))
	for _, v := range e.res.Violations {
		fmt.Fprintf(&sb, "! %s\n", v)
	}
	return []byte(sb.String()), nil
}

// TreeString renders nodes, as produced by cyk.Extract, starting at node 0:
//
//	S [0,3)
//	  NP [0,2) Gender=Masc|Number=Sing
//	    ADJ "великий" Gender=Masc|Number=Sing
func TreeString(nodes []cyk.ParseNode) string {
	if len(nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, nodes, 0, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, nodes []cyk.ParseNode, id, depth int) {
	if id < 0 || id >= len(nodes) {
		fmt.Fprintf(sb, "%s<missing %d>\n", strings.Repeat("  ", depth), id)
		return
	}
	n := nodes[id]
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Tag)
	if n.Word != nil {
		sb.WriteString(" " + strconv.Quote(*n.Word))
	} else {
		fmt.Fprintf(sb, " [%d,%d)", n.Start, n.End)
	}
	if len(n.Morphology) > 0 {
		sb.WriteString(" " + n.Morphology.String())
	}
	if n.Violation != 0 {
		sb.WriteString(" !" + n.Violation.String())
	}
	sb.WriteByte('\n')
	if n.Children != nil {
		writeNode(sb, nodes, n.Children[0], depth+1)
		writeNode(sb, nodes, n.Children[1], depth+1)
	}
}
