package graph

import "slices"

const (
	unvisited = iota
	inProgress
	done
)

// findCycle runs a depth-first search with visited/in-progress marking and
// returns the first cycle found as node names, the first name repeated at
// the end: ["a", "b", "a"]. Roots and successors are visited in
// (file, line, name) order so the reported cycle is stable.
//
// A DAG returns nil.
func (p *Plan) findCycle() []string {
	state := make([]int, len(p.Nodes))
	var stack []int
	var cycle []string

	var visit func(v int) bool
	visit = func(v int) bool {
		state[v] = inProgress
		stack = append(stack, v)

		for _, w := range p.succ[v] {
			switch state[w] {
			case inProgress:
				start := slices.Index(stack, w)
				for _, id := range stack[start:] {
					cycle = append(cycle, p.Nodes[id].Name())
				}
				cycle = append(cycle, p.Nodes[w].Name())
				return true
			case unvisited:
				if visit(w) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[v] = done
		return false
	}

	for _, v := range p.byKey {
		if state[v] == unvisited && visit(v) {
			return cycle
		}
	}
	return nil
}
