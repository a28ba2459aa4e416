package graph

import (
	"log/slog"
	"slices"

	"github.com/roach88/extsql/internal/entity"
)

const (
	bootstrapAnchor = 0
	finalizeAnchor  = 1
)

// Build resolves every reference in reg and computes the installation
// order. Any error is fatal and no plan is returned.
func Build(reg *entity.Registry) (*Plan, error) {
	p := &Plan{
		Nodes: []*Node{
			{Kind: NodeBootstrapAnchor, id: bootstrapAnchor},
			{Kind: NodeFinalizeAnchor, id: finalizeAnchor},
		},
	}
	nodeOf := make(map[string]int, reg.Len())
	for _, d := range reg.Descriptors() {
		n := &Node{Kind: NodeEntity, Descriptor: d, id: len(p.Nodes)}
		nodeOf[d.Name] = n.id
		p.Nodes = append(p.Nodes, n)
	}

	edges := make(map[[2]int]bool)
	addEdge := func(from, to int) {
		edges[[2]int{from, to}] = true
	}

	// Implicit anchor edges.
	for _, n := range p.Nodes[2:] {
		d := n.Descriptor
		if d.Bootstrap {
			addEdge(n.id, bootstrapAnchor)
		} else {
			addEdge(bootstrapAnchor, n.id)
		}
		if d.Finalize {
			addEdge(finalizeAnchor, n.id)
		} else {
			addEdge(n.id, finalizeAnchor)
		}
	}

	// Explicit edges from positioning references.
	resolver := NewResolver(reg)
	for _, n := range p.Nodes[2:] {
		for _, ref := range n.Descriptor.Requires {
			resolved, err := resolver.Resolve(n.Descriptor, ref)
			if err != nil {
				return nil, err
			}
			switch {
			case resolved.Via != ByAnchor:
				resolved.node = nodeOf[resolved.Target]
			case resolved.Target == entity.BootstrapToken:
				resolved.node = bootstrapAnchor
			default:
				resolved.node = finalizeAnchor
			}
			n.Requires = append(n.Requires, resolved)

			if resolved.Ref.Kind == entity.RefBefore {
				addEdge(n.id, resolved.node)
			} else {
				addEdge(resolved.node, n.id)
			}

			slog.Debug("reference resolved",
				"entity", n.Name(),
				"ref", ref.String(),
				"target", resolved.Target,
				"via", string(resolved.Via))
		}
	}

	p.link(edges)
	p.Index = resolver.index

	if cycle := p.findCycle(); cycle != nil {
		return nil, entity.NewCycleError(cycle)
	}

	p.Order = p.schedule()

	slog.Debug("installation order computed",
		"nodes", len(p.Order),
		"edges", len(p.Edges))

	return p, nil
}

// link builds the sorted node list, adjacency lists and edge list. Every
// traversal goes through these so results never depend on map order.
func (p *Plan) link(edges map[[2]int]bool) {
	p.byKey = make([]int, len(p.Nodes))
	for i := range p.Nodes {
		p.byKey[i] = i
	}
	slices.SortFunc(p.byKey, p.compare)

	rank := make([]int, len(p.Nodes))
	for r, id := range p.byKey {
		rank[id] = r
	}

	p.succ = make([][]int, len(p.Nodes))
	pairs := make([][2]int, 0, len(edges))
	for e := range edges {
		pairs = append(pairs, e)
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if rank[a[0]] != rank[b[0]] {
			return rank[a[0]] - rank[b[0]]
		}
		return rank[a[1]] - rank[b[1]]
	})

	p.Edges = make([]Edge, len(pairs))
	for i, e := range pairs {
		p.succ[e[0]] = append(p.succ[e[0]], e[1])
		p.Edges[i] = Edge{From: p.Nodes[e[0]], To: p.Nodes[e[1]]}
	}
}

func (p *Plan) compare(a, b int) int {
	switch {
	case p.Nodes[a].less(p.Nodes[b]):
		return -1
	case p.Nodes[b].less(p.Nodes[a]):
		return 1
	}
	return 0
}
