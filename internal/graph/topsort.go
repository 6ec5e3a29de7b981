package graph

import (
	"fmt"
	"sort"
)

// TopologicalSort performs a topological sort on a compressed graph using
// Kahn's algorithm. Returns nodes in dependency order (dependencies
// before dependents). Ties within a ready set are broken by name so the
// result is deterministic across runs. The compressed graph must be a
// DAG (cycles should be compressed first).
func TopologicalSort(cg *CompressedGraph) ([]*CompressedNode, error) {
	if cg == nil || cg.GetNodeCount() == 0 {
		return []*CompressedNode{}, nil
	}

	inDegree := make(map[string]int)
	for _, node := range cg.GetAllNodes() {
		inDegree[node.Name] = 0
	}

	for _, node := range cg.GetAllNodes() {
		edges := cg.GetEdgesFrom(node.Name)
		for _, edge := range edges {
			inDegree[edge.To]++
		}
	}

	ready := []string{}
	for nodeName, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, nodeName)
		}
	}
	sort.Strings(ready)

	sorted := []*CompressedNode{}
	for len(ready) > 0 {
		sort.Strings(ready)
		current := ready[0]
		ready = ready[1:]

		node, _ := cg.GetNode(current)
		sorted = append(sorted, node)

		edges := cg.GetEdgesFrom(current)
		newlyReady := []string{}
		for _, edge := range edges {
			inDegree[edge.To]--
			if inDegree[edge.To] == 0 {
				newlyReady = append(newlyReady, edge.To)
			}
		}
		sort.Strings(newlyReady)
		ready = append(ready, newlyReady...)
	}

	if len(sorted) != cg.GetNodeCount() {
		return nil, fmt.Errorf("cycle detected in compressed graph: sorted %d nodes but graph has %d nodes",
			len(sorted), cg.GetNodeCount())
	}

	// Reverse: edges point from dependent to dependency, so Kahn's gives
	// dependents first; callers want dependencies before dependents.
	reversed := make([]*CompressedNode, len(sorted))
	for i, node := range sorted {
		reversed[len(sorted)-1-i] = node
	}

	return reversed, nil
}

// TopologicalOrder computes a flat, dependency-first ordering of every
// workspace package name in g. If the graph contains one or more cycles,
// it returns the order computed over the SCC-compressed graph (members of
// a cyclic SCC appear together, sorted by name) along with the
// lexicographically-smallest cycle found, so callers can decide whether
// to proceed or refuse.
func TopologicalOrder(g *DependencyGraph) ([]string, *Cycle, error) {
	if g == nil || g.GetNodeCount() == 0 {
		return []string{}, nil, nil
	}

	FindStronglyConnectedComponents(g)
	hasCycles, cycles := DetectCycles(g)

	compressed := CompressGraph(g)
	sortedNodes, err := TopologicalSort(compressed)
	if err != nil {
		return nil, nil, err
	}

	order := []string{}
	for _, node := range sortedNodes {
		members := append([]string{}, node.Members...)
		sort.Strings(members)
		order = append(order, members...)
	}

	var blocking *Cycle
	if hasCycles {
		blocking = &cycles[0]
	}

	return order, blocking, nil
}
