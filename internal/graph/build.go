package graph

import (
	"fmt"

	"github.com/foundryhq/workbay/pkg/config"
)

// Build constructs a dependency graph from a project's declared packages.
// Dependency edges whose target name is not a declared package become
// edges into an external sink node rather than an error.
func Build(cfg *config.ProjectConfig) (*DependencyGraph, error) {
	return BuildFromPackages(cfg.GetPackages())
}

// BuildFromPackages builds a dependency graph directly from a package
// list, without requiring a full project config.
func BuildFromPackages(packages []config.Package) (*DependencyGraph, error) {
	g := NewGraph()

	for _, pkg := range packages {
		if err := g.AddNode(pkg); err != nil {
			return nil, fmt.Errorf("failed to add package node %s: %w", pkg.Name, err)
		}
	}

	for _, pkg := range packages {
		for _, dep := range pkg.Dependencies {
			kind := EdgeKind(dep.Kind)
			if kind == "" {
				kind = EdgeRuntime
			}

			if err := g.AddEdge(pkg.Name, dep.Name, kind, dep.Requirement); err != nil {
				return nil, fmt.Errorf("failed to add dependency edge from %s to %s: %w", pkg.Name, dep.Name, err)
			}
		}
	}

	return g, nil
}
