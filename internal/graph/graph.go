package graph

import (
	"fmt"
	"sort"

	"github.com/foundryhq/workbay/pkg/config"
)

// EdgeKind classifies a dependency edge the way the manifest declared it.
type EdgeKind string

const (
	EdgeRuntime     EdgeKind = "runtime"
	EdgeDevelopment EdgeKind = "development"
	EdgeOptional    EdgeKind = "optional"
	EdgePeer        EdgeKind = "peer"
)

// Node is a vertex in the package graph. External nodes (Package == nil)
// represent dependency names that resolve outside the workspace.
type Node struct {
	Name     string
	Package  *config.Package
	External bool
	SCC      int // strongly connected component ID, 0 until FindStronglyConnectedComponents runs
}

// Edge is a directed edge from a dependent package to one of its
// declared dependencies, carrying the edge kind and requirement text.
type Edge struct {
	From        string
	To          string
	Kind        EdgeKind
	Requirement string
}

// DependencyGraph is a directed graph over workspace packages and the
// external sink nodes their dependencies resolve to.
type DependencyGraph struct {
	nodes map[string]*Node
	edges map[string][]Edge
}

// NewGraph creates a new empty dependency graph.
func NewGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*Node),
		edges: make(map[string][]Edge),
	}
}

// AddNode adds a workspace package node. Returns an error if a node with
// the same name already exists.
func (g *DependencyGraph) AddNode(pkg config.Package) error {
	if _, exists := g.nodes[pkg.Name]; exists {
		return fmt.Errorf("node already exists: %s", pkg.Name)
	}

	p := pkg
	g.nodes[pkg.Name] = &Node{Name: pkg.Name, Package: &p}
	if g.edges[pkg.Name] == nil {
		g.edges[pkg.Name] = []Edge{}
	}
	return nil
}

// addExternalNode adds a sink node for a dependency name that does not
// resolve to a workspace package. Idempotent.
func (g *DependencyGraph) addExternalNode(name string) {
	if _, exists := g.nodes[name]; exists {
		return
	}
	g.nodes[name] = &Node{Name: name, External: true}
	if g.edges[name] == nil {
		g.edges[name] = []Edge{}
	}
}

// AddEdge adds a directed edge from a workspace package to another node.
// If the target name is not a known workspace package, an external sink
// node is created for it automatically. Returns an error if the source
// node does not exist.
func (g *DependencyGraph) AddEdge(from, to string, kind EdgeKind, requirement string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("source node not found: %s", from)
	}
	if _, exists := g.nodes[to]; !exists {
		g.addExternalNode(to)
	}

	g.edges[from] = append(g.edges[from], Edge{From: from, To: to, Kind: kind, Requirement: requirement})
	return nil
}

// GetNode returns the node with the given name, or false if not found.
func (g *DependencyGraph) GetNode(name string) (*Node, bool) {
	node, exists := g.nodes[name]
	return node, exists
}

// GetEdgesFrom returns all edges originating from the given node.
func (g *DependencyGraph) GetEdgesFrom(from string) []Edge {
	edges, exists := g.edges[from]
	if !exists {
		return []Edge{}
	}
	return edges
}

// GetAllNodes returns all nodes in the graph, sorted by name for
// deterministic iteration.
func (g *DependencyGraph) GetAllNodes() []*Node {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, g.nodes[name])
	}
	return nodes
}

// SetSCC sets the strongly connected component ID for a node.
func (g *DependencyGraph) SetSCC(name string, sccID int) error {
	node, exists := g.nodes[name]
	if !exists {
		return fmt.Errorf("node not found: %s", name)
	}
	node.SCC = sccID
	return nil
}

// GetNodeCount returns the number of nodes in the graph.
func (g *DependencyGraph) GetNodeCount() int {
	return len(g.nodes)
}

// GetEdgeCount returns the total number of edges in the graph.
func (g *DependencyGraph) GetEdgeCount() int {
	count := 0
	for _, edges := range g.edges {
		count += len(edges)
	}
	return count
}
