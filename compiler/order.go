package compiler

import "github.com/Mi-Lis/MLCanvas/graph"

// Order produces a dependency order over the node set using Kahn's
// algorithm: for every edge (u -> v) with both endpoints present, u
// precedes v. Among the nodes that are ready at any step, the one
// inserted earliest is emitted first, so ties always resolve to node
// insertion order regardless of how the edges are listed.
//
// Edges whose target is unknown are skipped. An edge whose source is
// unknown still increments the target's in-degree; the target can then
// never become ready and is dropped from the output. When the returned
// sequence is shorter than the node count, the remaining nodes are
// involved in a cycle (or blocked behind an unresolved edge) and the
// caller reports the graph as uncompilable.
func Order(nodes []graph.Node, edges []graph.Edge) []string {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	inDegree := make([]int, len(nodes))
	adjacency := make([][]int, len(nodes))
	for _, e := range edges {
		target, ok := index[e.Target]
		if !ok {
			continue
		}
		inDegree[target]++
		if source, ok := index[e.Source]; ok {
			adjacency[source] = append(adjacency[source], target)
		}
	}

	ready := make([]int, 0, len(nodes))
	for i := range nodes {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		at := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[at] {
				at = i
			}
		}
		idx := ready[at]
		ready = append(ready[:at], ready[at+1:]...)
		order = append(order, nodes[idx].ID)
		for _, next := range adjacency[idx] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return order
}
