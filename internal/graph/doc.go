// Package graph turns a populated registry into an installation order.
//
// The graph has one node per descriptor plus two anchors. The bootstrap
// anchor precedes every non-bootstrap descriptor and the finalize anchor
// follows every non-finalize descriptor; the bootstrap and finalize
// descriptors themselves sit outside the anchors. Explicit edges come from
// each descriptor's positioning references.
//
// Build is a pure function of the registry:
//  1. Resolve every positioning reference into an edge (resolve.go)
//  2. Reject the graph if it has a cycle (cycle.go)
//  3. Topologically sort with a (file, line, name) tie-break (schedule.go)
//
// The tie-break is what makes rendered scripts byte-identical across runs.
// Do not replace it with map iteration or registration order.
package graph
