package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/extsql/internal/graph"
)

// Options controls document-level output.
type Options struct {
	// Header lines are emitted first, each as a "-- " comment, followed by
	// a blank line. Nil means no header.
	Header []string
}

// SQL renders the installation script for plan.
func SQL(plan *graph.Plan, opts Options) string {
	var b strings.Builder

	for _, line := range opts.Header {
		writeComment(&b, line)
	}
	if len(opts.Header) > 0 {
		b.WriteString("\n")
	}

	for _, n := range plan.Order {
		if n.IsAnchor() {
			continue
		}
		writeNode(&b, n)
	}
	return b.String()
}

// WriteSQL writes the script for plan to w.
func WriteSQL(w io.Writer, plan *graph.Plan, opts Options) error {
	_, err := io.WriteString(w, SQL(plan, opts))
	return err
}

// writeNode emits one descriptor:
//
//	-- FILE:LINE
//	-- bootstrap | -- finalize
//	-- creates:
//	--   Type(Foo)
//	-- requires:
//	--   target
//	SQL
//	(blank line)
func writeNode(b *strings.Builder, n *graph.Node) {
	d := n.Descriptor

	fmt.Fprintf(b, "-- %s:%d\n", d.File, d.Line)
	if d.Bootstrap {
		b.WriteString("-- bootstrap\n")
	}
	if d.Finalize {
		b.WriteString("-- finalize\n")
	}

	if len(d.Creates) > 0 {
		b.WriteString("-- creates:\n")
		for _, c := range d.Creates {
			fmt.Fprintf(b, "--   %s\n", c)
		}
	}

	if len(n.Requires) > 0 {
		b.WriteString("-- requires:\n")
		for _, r := range n.Requires {
			fmt.Fprintf(b, "--   %s\n", r)
		}
	}

	if d.SQL != "" {
		b.WriteString(d.SQL)
		if !strings.HasSuffix(d.SQL, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeComment(b *strings.Builder, line string) {
	if line == "" {
		b.WriteString("--\n")
		return
	}
	fmt.Fprintf(b, "-- %s\n", line)
}
