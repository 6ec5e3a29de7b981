package graph

import (
	"sort"

	"github.com/foundryhq/workbay/pkg/semver"
)

// DependenciesOf returns the direct dependency names declared by the
// named package.
func (g *DependencyGraph) DependenciesOf(name string) []string {
	edges := g.GetEdgesFrom(name)
	names := make([]string, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.To)
	}
	sort.Strings(names)
	return names
}

// reverseEdges builds, once, a map from a node name to the set of nodes
// that declare a direct edge into it.
func (g *DependencyGraph) reverseEdges() map[string][]string {
	rev := make(map[string][]string)
	for _, node := range g.GetAllNodes() {
		for _, e := range g.GetEdgesFrom(node.Name) {
			rev[e.To] = append(rev[e.To], node.Name)
		}
	}
	return rev
}

// DependentsOf returns every workspace package that transitively depends
// on name. If ignoreCycles is false and name or any of its dependents
// participates in a dependency cycle, it returns an empty slice instead
// of an unsound or infinite result.
func (g *DependencyGraph) DependentsOf(name string, ignoreCycles bool) []string {
	if _, exists := g.GetNode(name); !exists {
		return []string{}
	}

	if !ignoreCycles {
		FindStronglyConnectedComponents(g)
		if node, _ := g.GetNode(name); node != nil && g.sccHasCycle(node.SCC) {
			return []string{}
		}
	}

	rev := g.reverseEdges()
	visited := map[string]bool{name: true}
	queue := []string{name}
	result := []string{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dependent := range rev[current] {
			if !ignoreCycles {
				if node, _ := g.GetNode(dependent); node != nil && g.sccHasCycle(node.SCC) {
					return []string{}
				}
			}
			if !visited[dependent] {
				visited[dependent] = true
				result = append(result, dependent)
				queue = append(queue, dependent)
			}
		}
	}

	sort.Strings(result)
	return result
}

// sccHasCycle reports whether the strongly connected component sccID
// represents an actual cycle (multi-member, or a singleton self-loop).
func (g *DependencyGraph) sccHasCycle(sccID int) bool {
	if sccID == 0 {
		return false
	}
	members := []string{}
	for _, node := range g.GetAllNodes() {
		if node.SCC == sccID {
			members = append(members, node.Name)
		}
	}
	return isCycle(g, members)
}

// AffectedPackages returns the union of changed and every package that
// transitively depends on any member of changed.
func (g *DependencyGraph) AffectedPackages(changed []string, ignoreCycles bool) []string {
	affected := make(map[string]bool)
	for _, name := range changed {
		affected[name] = true
		for _, dependent := range g.DependentsOf(name, ignoreCycles) {
			affected[dependent] = true
		}
	}

	result := make([]string, 0, len(affected))
	for name := range affected {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// VersionConflict describes two or more incompatible requirements
// declared against the same external dependency name.
type VersionConflict struct {
	Name         string
	Requirements []string
}

// FindVersionConflicts inspects every external sink node and reports
// names for which at least two declared requirements do not intersect.
func (g *DependencyGraph) FindVersionConflicts() []VersionConflict {
	conflicts := []VersionConflict{}

	for _, node := range g.GetAllNodes() {
		if !node.External {
			continue
		}

		reqTexts := []string{}
		reqs := []*semver.Requirement{}
		for _, n := range g.GetAllNodes() {
			for _, e := range g.GetEdgesFrom(n.Name) {
				if e.To != node.Name || e.Requirement == "" {
					continue
				}
				parsed, err := semver.ParseRequirement(e.Requirement)
				if err != nil {
					continue
				}
				reqTexts = append(reqTexts, e.Requirement)
				reqs = append(reqs, parsed)
			}
		}

		conflict := false
		for i := 0; i < len(reqs) && !conflict; i++ {
			for j := i + 1; j < len(reqs); j++ {
				if !reqs[i].Intersects(reqs[j]) {
					conflict = true
					break
				}
			}
		}

		if conflict {
			sort.Strings(reqTexts)
			conflicts = append(conflicts, VersionConflict{Name: node.Name, Requirements: reqTexts})
		}
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Name < conflicts[j].Name })
	return conflicts
}

// Report is the aggregate result of validating a dependency graph.
type Report struct {
	Cycles           []Cycle
	VersionConflicts []VersionConflict
	ExternalNames    []string
}

// Valid reports whether the graph has no cycles and no version
// conflicts.
func (r *Report) Valid() bool {
	return len(r.Cycles) == 0 && len(r.VersionConflicts) == 0
}

// Validate runs every structural check against the graph and returns an
// aggregate report: cycles, unresolved-requirement conflicts, and the
// external dependency names the workspace is not responsible for.
func (g *DependencyGraph) Validate() *Report {
	_, cycles := DetectCycles(g)
	conflicts := g.FindVersionConflicts()

	external := []string{}
	for _, node := range g.GetAllNodes() {
		if node.External {
			external = append(external, node.Name)
		}
	}
	sort.Strings(external)

	return &Report{Cycles: cycles, VersionConflicts: conflicts, ExternalNames: external}
}
