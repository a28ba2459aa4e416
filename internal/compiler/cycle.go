package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/extsql/internal/entity"
)

// CycleWarning describes one strongly connected group of descriptors.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // always "error": any cycle fails the build
}

// AnalyzeCycles reports every cycle among name-level references.
//
// The graph builder stops at the first cycle it finds. This pass lists all
// of them so one validate run shows everything that must be fixed:
//  1. Build descriptor -> descriptor edges from references that name
//     another descriptor directly (entity spellings and anchors are
//     skipped)
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one member
//
// Warnings are ordered by their first path element.
func AnalyzeCycles(m *Manifest) []CycleWarning {
	if len(m.Descriptors) == 0 {
		return []CycleWarning{}
	}

	graph, order := buildDependencyGraph(m.Descriptors)
	sccs := tarjanSCC(graph, order)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		warnings = append(warnings, CycleWarning{
			Path:    path,
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
			Level:   "error",
		})
	}

	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// dependencyGraph maps a descriptor name to the descriptors that must come
// after it.
type dependencyGraph map[string][]string

// buildDependencyGraph constructs edges in declaration order. Self
// references never resolve to the referencing descriptor, so they add no
// edge.
func buildDependencyGraph(descs []entity.Descriptor) (dependencyGraph, []string) {
	graph := make(dependencyGraph)
	order := make([]string, 0, len(descs))
	for _, d := range descs {
		if _, seen := graph[d.Name]; !seen {
			graph[d.Name] = nil
			order = append(order, d.Name)
		}
	}

	for _, d := range descs {
		for _, ref := range d.Requires {
			if ref.Target == d.Name {
				continue
			}
			if _, ok := graph[ref.Target]; !ok {
				continue
			}
			switch ref.Kind {
			case entity.RefBefore:
				graph[d.Name] = append(graph[d.Name], ref.Target)
			default:
				graph[ref.Target] = append(graph[ref.Target], d.Name)
			}
		}
	}
	return graph, order
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm,
// visiting roots in the given order.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath walks a cycle through an SCC, starting at its
// lexically smallest member so the path is stable.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := slices.Min(scc)
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
