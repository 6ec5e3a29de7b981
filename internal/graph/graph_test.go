package graph

import (
	"testing"

	"github.com/foundryhq/workbay/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.NotNil(t, g.edges)
	assert.Empty(t, g.nodes)
	assert.Empty(t, g.edges)
}

func TestAddNode(t *testing.T) {
	t.Run("add single node", func(t *testing.T) {
		g := NewGraph()
		pkg := config.Package{
			Name:      "core",
			Path:      "./core",
			Ecosystem: config.EcosystemGo,
		}

		err := g.AddNode(pkg)
		assert.NoError(t, err)

		node, exists := g.GetNode("core")
		assert.True(t, exists)
		assert.NotNil(t, node)
		assert.Equal(t, "core", node.Package.Name)
	})

	t.Run("add duplicate node returns error", func(t *testing.T) {
		g := NewGraph()
		pkg := config.Package{
			Name:      "core",
			Path:      "./core",
			Ecosystem: config.EcosystemGo,
		}

		err := g.AddNode(pkg)
		require.NoError(t, err)

		err = g.AddNode(pkg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name        string
		from        string
		to          string
		kind        EdgeKind
		requirement string
		wantErr     bool
	}{
		{
			name:        "add edge between existing nodes",
			from:        "api",
			to:          "core",
			kind:        EdgeRuntime,
			requirement: "",
			wantErr:     false,
		},
		{
			name:        "add edge from non-existent node",
			from:        "nonexistent",
			to:          "core",
			kind:        EdgeRuntime,
			requirement: "",
			wantErr:     true,
		},
		{
			name:        "add edge to unresolved node creates external sink",
			from:        "api",
			to:          "nonexistent",
			kind:        EdgeRuntime,
			requirement: "",
			wantErr:     false,
		},
		{
			name:        "add edge with version requirement",
			from:        "web",
			to:          "api",
			kind:        EdgeDevelopment,
			requirement: "^1.0.0",
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			_ = g.AddNode(config.Package{Name: "core"})
			_ = g.AddNode(config.Package{Name: "api"})
			_ = g.AddNode(config.Package{Name: "web"})

			err := g.AddEdge(tt.from, tt.to, tt.kind, tt.requirement)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)

				edges := g.GetEdgesFrom(tt.from)
				assert.NotEmpty(t, edges)
				found := false
				for _, edge := range edges {
					if edge.To == tt.to {
						found = true
						assert.Equal(t, tt.kind, edge.Kind)
						assert.Equal(t, tt.requirement, edge.Requirement)
					}
				}
				assert.True(t, found, "Edge not found in graph")
			}
		})
	}
}

func TestGetNode(t *testing.T) {
	g := NewGraph()
	pkg := config.Package{
		Name:      "core",
		Path:      "./core",
		Ecosystem: config.EcosystemGo,
	}
	err := g.AddNode(pkg)
	require.NoError(t, err)

	node, exists := g.GetNode("core")
	assert.True(t, exists)
	assert.NotNil(t, node)
	assert.Equal(t, "core", node.Package.Name)
	assert.Equal(t, 0, node.SCC)

	node, exists = g.GetNode("nonexistent")
	assert.False(t, exists)
	assert.Nil(t, node)
}

func TestGetEdgesFrom(t *testing.T) {
	g := NewGraph()

	_ = g.AddNode(config.Package{Name: "core"})
	_ = g.AddNode(config.Package{Name: "api"})
	_ = g.AddNode(config.Package{Name: "web"})

	_ = g.AddEdge("api", "core", EdgeRuntime, "")
	_ = g.AddEdge("web", "api", EdgeRuntime, "")

	edges := g.GetEdgesFrom("api")
	assert.Len(t, edges, 1)
	assert.Equal(t, "core", edges[0].To)

	edges = g.GetEdgesFrom("web")
	assert.Len(t, edges, 1)
	assert.Equal(t, "api", edges[0].To)

	edges = g.GetEdgesFrom("core")
	assert.Empty(t, edges)

	edges = g.GetEdgesFrom("nonexistent")
	assert.Empty(t, edges)
}

func TestGetAllNodes(t *testing.T) {
	g := NewGraph()

	packages := []config.Package{
		{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo},
		{Name: "api", Path: "./api", Ecosystem: config.EcosystemNPM},
		{Name: "web", Path: "./web", Ecosystem: config.EcosystemNPM},
	}

	for _, pkg := range packages {
		err := g.AddNode(pkg)
		require.NoError(t, err)
	}

	nodes := g.GetAllNodes()
	assert.Len(t, nodes, 3)

	nodeNames := make(map[string]bool)
	for _, node := range nodes {
		nodeNames[node.Package.Name] = true
	}
	assert.True(t, nodeNames["core"])
	assert.True(t, nodeNames["api"])
	assert.True(t, nodeNames["web"])
}

func TestComplexGraph(t *testing.T) {
	g := NewGraph()

	packages := []config.Package{
		{Name: "utils", Path: "./utils", Ecosystem: config.EcosystemGo},
		{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo},
		{Name: "api", Path: "./api", Ecosystem: config.EcosystemGo},
		{Name: "web", Path: "./web", Ecosystem: config.EcosystemNPM},
		{Name: "mobile", Path: "./mobile", Ecosystem: config.EcosystemNPM},
	}

	for _, pkg := range packages {
		err := g.AddNode(pkg)
		require.NoError(t, err)
	}

	// web -> api -> core -> utils
	// mobile -> api
	edges := []struct {
		from string
		to   string
		kind EdgeKind
	}{
		{"core", "utils", EdgeRuntime},
		{"api", "core", EdgeRuntime},
		{"web", "api", EdgeRuntime},
		{"mobile", "api", EdgeOptional},
	}

	for _, edge := range edges {
		err := g.AddEdge(edge.from, edge.to, edge.kind, "")
		require.NoError(t, err)
	}

	assert.Len(t, g.GetAllNodes(), 5)
	assert.Len(t, g.GetEdgesFrom("core"), 1)
	assert.Len(t, g.GetEdgesFrom("api"), 1)
	assert.Len(t, g.GetEdgesFrom("web"), 1)
	assert.Len(t, g.GetEdgesFrom("mobile"), 1)
	assert.Empty(t, g.GetEdgesFrom("utils"))
}

func TestAddEdgeCreatesExternalSink(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode(config.Package{Name: "api"})

	err := g.AddEdge("api", "github.com/example/lib", EdgeRuntime, "^1.0.0")
	require.NoError(t, err)

	node, exists := g.GetNode("github.com/example/lib")
	require.True(t, exists)
	assert.True(t, node.External)
	assert.Nil(t, node.Package)

	_ = g.AddNode(config.Package{Name: "web"})
	err = g.AddEdge("web", "github.com/example/lib", EdgeRuntime, "^1.1.0")
	require.NoError(t, err)
	assert.Equal(t, 3, g.GetNodeCount())
}
