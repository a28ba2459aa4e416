package graph

import "container/heap"

// readyQueue is a min-heap of node ids ordered by (file, line, name).
type readyQueue struct {
	ids  []int
	plan *Plan
}

func (q *readyQueue) Len() int           { return len(q.ids) }
func (q *readyQueue) Less(i, j int) bool { return q.plan.compare(q.ids[i], q.ids[j]) < 0 }
func (q *readyQueue) Swap(i, j int)      { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }
func (q *readyQueue) Push(x any)         { q.ids = append(q.ids, x.(int)) }
func (q *readyQueue) Pop() any {
	last := q.ids[len(q.ids)-1]
	q.ids = q.ids[:len(q.ids)-1]
	return last
}

// schedule is Kahn's algorithm: among the nodes with no outstanding
// predecessor, the smallest by (file, line, name) is emitted next.
// The graph must be acyclic.
func (p *Plan) schedule() []*Node {
	indegree := make([]int, len(p.Nodes))
	for _, succ := range p.succ {
		for _, w := range succ {
			indegree[w]++
		}
	}

	q := &readyQueue{plan: p}
	for _, v := range p.byKey {
		if indegree[v] == 0 {
			q.ids = append(q.ids, v)
		}
	}
	heap.Init(q)

	order := make([]*Node, 0, len(p.Nodes))
	for q.Len() > 0 {
		v := heap.Pop(q).(int)
		order = append(order, p.Nodes[v])
		for _, w := range p.succ[v] {
			indegree[w]--
			if indegree[w] == 0 {
				heap.Push(q, w)
			}
		}
	}
	return order
}
