package graph

import (
	"fmt"
	"strings"
)

// DotOptions configures GraphViz DOT export.
type DotOptions struct {
	Title           string
	ShowExternal    bool
	HighlightCycles bool
}

// DefaultDotOptions mirrors the original tool's defaults.
func DefaultDotOptions() DotOptions {
	return DotOptions{Title: "Dependency Graph", ShowExternal: true, HighlightCycles: true}
}

const (
	styleNormal   = `[shape=box, style=filled, fillcolor=lightblue]`
	styleCycle    = `[shape=box, style=filled, fillcolor=lightcoral, penwidth=2]`
	styleExternal = `[shape=ellipse, style=filled, fillcolor=lightgrey]`
)

// GenerateDOT renders g as a GraphViz DOT digraph, highlighting nodes
// that participate in a cycle and optionally including external
// (unresolved) dependency nodes.
func GenerateDOT(g *DependencyGraph, opts DotOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", opts.Title)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\"];\n")
	b.WriteString("  graph [fontname=\"Helvetica\"];\n\n")

	inCycle := map[string]bool{}
	if opts.HighlightCycles {
		_, cycles := DetectCycles(g)
		for _, c := range cycles {
			for _, name := range c.Path {
				inCycle[name] = true
			}
		}
	}

	b.WriteString("  // Nodes\n")
	for _, node := range g.GetAllNodes() {
		if node.External {
			if !opts.ShowExternal {
				continue
			}
			fmt.Fprintf(&b, "  %q [label=%q] %s;\n", node.Name, node.Name, styleExternal)
			continue
		}
		style := styleNormal
		if inCycle[node.Name] {
			style = styleCycle
		}
		fmt.Fprintf(&b, "  %q %s;\n", node.Name, style)
	}

	b.WriteString("\n  // Edges\n")
	for _, node := range g.GetAllNodes() {
		for _, edge := range g.GetEdgesFrom(node.Name) {
			if !opts.ShowExternal {
				if target, ok := g.GetNode(edge.To); ok && target.External {
					continue
				}
			}
			fmt.Fprintf(&b, "  %q -> %q;\n", edge.From, edge.To)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// GenerateASCII renders a compact indented tree: each non-external
// package followed by its direct dependencies, for terminal display
// without a GraphViz renderer on hand.
func GenerateASCII(g *DependencyGraph) string {
	var b strings.Builder
	for _, node := range g.GetAllNodes() {
		if node.External {
			continue
		}
		b.WriteString(node.Name)
		b.WriteString("\n")
		for _, dep := range g.DependenciesOf(node.Name) {
			fmt.Fprintf(&b, "  └─ %s\n", dep)
		}
	}
	return b.String()
}
