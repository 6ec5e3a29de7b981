package graph

import "sort"

// Cycle is a set of package names that form a dependency cycle, ordered
// starting at its path walk and then rotated so the lexicographically
// smallest name leads — giving every caller a stable representation of
// the same cycle regardless of discovery order.
type Cycle struct {
	Path []string
}

// DetectCycles identifies cycles in the dependency graph using Tarjan's
// algorithm. A cycle is an SCC with more than one node, or a single node
// with a self-loop.
func DetectCycles(g *DependencyGraph) (bool, []Cycle) {
	if g == nil || g.GetNodeCount() == 0 {
		return false, []Cycle{}
	}

	sccs := FindStronglyConnectedComponents(g)

	cycles := []Cycle{}
	for _, scc := range sccs {
		if isCycle(g, scc) {
			cycles = append(cycles, Cycle{Path: canonicalizeCycle(scc)})
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cyclesKey(cycles[i]) < cyclesKey(cycles[j])
	})

	return len(cycles) > 0, cycles
}

func cyclesKey(c Cycle) string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

// canonicalizeCycle rotates a cycle's member list so the
// lexicographically smallest name comes first, making the same cycle
// compare equal regardless of which node Tarjan's DFS happened to visit
// first.
func canonicalizeCycle(scc []string) []string {
	members := append([]string{}, scc...)
	sort.Strings(members)
	if len(members) == 0 {
		return members
	}
	smallest := members[0]

	rotated := append([]string{}, scc...)
	idx := 0
	for i, name := range rotated {
		if name == smallest {
			idx = i
			break
		}
	}
	return append(rotated[idx:], rotated[:idx]...)
}

// isCycle determines if an SCC represents an actual cycle: either a
// multi-node SCC, or a single node with a self-edge.
func isCycle(g *DependencyGraph, scc []string) bool {
	if len(scc) > 1 {
		return true
	}

	if len(scc) == 1 {
		nodeName := scc[0]
		edges := g.GetEdgesFrom(nodeName)
		for _, edge := range edges {
			if edge.To == nodeName {
				return true
			}
		}
	}

	return false
}
