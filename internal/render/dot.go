package render

import (
	"fmt"
	"strings"

	"github.com/roach88/extsql/internal/graph"
)

// DOT renders the entity graph in graphviz format. Nodes appear in
// installation order and edges in plan order, so the output is stable.
func DOT(plan *graph.Plan) string {
	var b strings.Builder
	b.WriteString("digraph extsql {\n")
	for _, n := range plan.Order {
		if n.IsAnchor() {
			fmt.Fprintf(&b, "  %q [shape=diamond];\n", dotID(n))
			continue
		}
		fmt.Fprintf(&b, "  %q;\n", dotID(n))
	}
	for _, e := range plan.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", dotID(e.From), dotID(e.To))
	}
	b.WriteString("}\n")
	return b.String()
}

func dotID(n *graph.Node) string {
	if n.IsAnchor() {
		return n.Name()
	}
	return "sql " + n.Name()
}
