package graph

import (
	"github.com/roach88/extsql/internal/canon"
	"github.com/roach88/extsql/internal/entity"
)

// NodeKind distinguishes descriptor nodes from the two anchors.
type NodeKind int

const (
	NodeEntity NodeKind = iota
	NodeBootstrapAnchor
	NodeFinalizeAnchor
)

// Resolution records which lookup step resolved a reference.
type Resolution string

const (
	ByName   Resolution = "name"
	ByEntity Resolution = "entity"
	ByAnchor Resolution = "anchor"
)

// ResolvedRef is a positioning reference together with the node it
// resolved to.
type ResolvedRef struct {
	Ref    entity.PositioningRef
	Target string // descriptor name or anchor token
	Via    Resolution
	node   int
}

// String renders the resolved target the way script comments show it.
func (r ResolvedRef) String() string {
	return entity.PositioningRef{Kind: r.Ref.Kind, Target: r.Target}.String()
}

// Node is a vertex of the entity graph.
type Node struct {
	Kind       NodeKind
	Descriptor *entity.Descriptor // nil for anchors
	Requires   []ResolvedRef      // in declaration order

	id int
}

// Name returns the descriptor name, or the anchor token for anchors.
func (n *Node) Name() string {
	switch n.Kind {
	case NodeBootstrapAnchor:
		return entity.BootstrapToken
	case NodeFinalizeAnchor:
		return entity.FinalizeToken
	}
	return n.Descriptor.Name
}

// IsAnchor reports whether n is one of the two anchors.
func (n *Node) IsAnchor() bool {
	return n.Kind != NodeEntity
}

// less orders nodes by (file, line, name). Anchors have no provenance and
// sort ahead of descriptors, but edges always pin them in place.
func (n *Node) less(o *Node) bool {
	file, line := n.provenance()
	ofile, oline := o.provenance()
	if file != ofile {
		return file < ofile
	}
	if line != oline {
		return line < oline
	}
	if n.Name() != o.Name() {
		return n.Name() < o.Name()
	}
	return n.id < o.id
}

func (n *Node) provenance() (string, int) {
	if n.Descriptor == nil {
		return "", 0
	}
	return n.Descriptor.File, n.Descriptor.Line
}

// Edge orders From before To.
type Edge struct {
	From *Node
	To   *Node
}

// Plan is the resolved entity graph and its installation order.
type Plan struct {
	// Nodes holds the anchors followed by descriptors in registration order.
	Nodes []*Node

	// Edges is deduplicated and sorted by (from, to) node order.
	Edges []Edge

	// Order is the full installation order, anchors included.
	Order []*Node

	// Index answers spelling queries for sibling renderers.
	Index *canon.Index

	succ  [][]int
	byKey []int
}

// Entities returns Order without the anchors.
func (p *Plan) Entities() []*Node {
	out := make([]*Node, 0, len(p.Order))
	for _, n := range p.Order {
		if !n.IsAnchor() {
			out = append(out, n)
		}
	}
	return out
}

// Names returns the names of Entities.
func (p *Plan) Names() []string {
	entities := p.Entities()
	names := make([]string, len(entities))
	for i, n := range entities {
		names[i] = n.Name()
	}
	return names
}
