package graph

import (
	"testing"

	"github.com/foundryhq/workbay/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monorepoConfig(packages ...config.Package) *config.ProjectConfig {
	return &config.ProjectConfig{Type: config.RepositoryTypeMonorepo, Repo: "example/repo", Packages: packages}
}

func TestGraphCache(t *testing.T) {
	t.Run("cache miss - builds and stores graph", func(t *testing.T) {
		cache := NewGraphCache()
		cfg := monorepoConfig(config.Package{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo})

		g, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)
		assert.NotNil(t, g)
		assert.Equal(t, 1, g.GetNodeCount())

		node, exists := g.GetNode("core")
		assert.True(t, exists)
		assert.Equal(t, "core", node.Package.Name)
	})

	t.Run("cache hit - returns cached graph", func(t *testing.T) {
		cache := NewGraphCache()
		cfg := monorepoConfig(config.Package{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo})

		g1, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		g2, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		assert.True(t, g1 == g2, "should return cached graph instance")
	})

	t.Run("different configs - separate cache entries", func(t *testing.T) {
		cache := NewGraphCache()
		cfg1 := monorepoConfig(config.Package{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo})
		cfg2 := monorepoConfig(config.Package{Name: "api", Path: "./api", Ecosystem: config.EcosystemGo})

		g1, err := cache.GetOrBuild(cfg1)
		require.NoError(t, err)

		g2, err := cache.GetOrBuild(cfg2)
		require.NoError(t, err)

		assert.False(t, g1 == g2)

		_, exists1 := g1.GetNode("core")
		assert.True(t, exists1)
		_, exists2 := g2.GetNode("api")
		assert.True(t, exists2)
	})

	t.Run("clear cache", func(t *testing.T) {
		cache := NewGraphCache()
		cfg := monorepoConfig(config.Package{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo})

		g1, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		cache.Clear()

		g2, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		assert.False(t, g1 == g2)
	})

	t.Run("invalidate specific config", func(t *testing.T) {
		cache := NewGraphCache()
		cfg1 := monorepoConfig(config.Package{Name: "core", Path: "./core", Ecosystem: config.EcosystemGo})
		cfg2 := monorepoConfig(config.Package{Name: "api", Path: "./api", Ecosystem: config.EcosystemGo})

		g1a, _ := cache.GetOrBuild(cfg1)
		g2a, _ := cache.GetOrBuild(cfg2)

		cache.Invalidate(cfg1)

		g1b, _ := cache.GetOrBuild(cfg1)
		g2b, _ := cache.GetOrBuild(cfg2)

		assert.False(t, g1a == g1b, "cfg1 should be rebuilt")
		assert.True(t, g2a == g2b, "cfg2 should be cached")
	})

	t.Run("cache preserves SCC information", func(t *testing.T) {
		cache := NewGraphCache()
		cfg := monorepoConfig(
			config.Package{Name: "a", Path: "./a", Ecosystem: config.EcosystemGo,
				Dependencies: []config.Dependency{{Name: "b", Kind: config.DependencyRuntime}}},
			config.Package{Name: "b", Path: "./b", Ecosystem: config.EcosystemGo,
				Dependencies: []config.Dependency{{Name: "a", Kind: config.DependencyRuntime}}},
		)

		g1, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		FindStronglyConnectedComponents(g1)

		nodeA1, _ := g1.GetNode("a")
		nodeB1, _ := g1.GetNode("b")
		sccID1 := nodeA1.SCC

		g2, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)

		nodeA2, _ := g2.GetNode("a")
		nodeB2, _ := g2.GetNode("b")

		assert.Equal(t, sccID1, nodeA2.SCC)
		assert.Equal(t, nodeB1.SCC, nodeB2.SCC)
	})

	t.Run("cache handles build errors", func(t *testing.T) {
		cache := NewGraphCache()
		// Duplicate package names is the one condition Build still rejects.
		cfg := &config.ProjectConfig{
			Type: config.RepositoryTypeMonorepo,
			Repo: "example/repo",
			Packages: []config.Package{
				{Name: "api", Path: "./api", Ecosystem: config.EcosystemGo},
				{Name: "api", Path: "./api2", Ecosystem: config.EcosystemGo},
			},
		}

		g, err := cache.GetOrBuild(cfg)
		assert.Error(t, err)
		assert.Nil(t, g)

		g2, err2 := cache.GetOrBuild(cfg)
		assert.Error(t, err2)
		assert.Nil(t, g2)
	})

	t.Run("nil config returns error", func(t *testing.T) {
		cache := NewGraphCache()

		g, err := cache.GetOrBuild(nil)
		assert.Error(t, err)
		assert.Nil(t, g)
	})

	t.Run("empty config caches empty graph", func(t *testing.T) {
		cache := NewGraphCache()
		cfg := monorepoConfig()

		g, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)
		assert.NotNil(t, g)
		assert.Equal(t, 0, g.GetNodeCount())

		g2, err := cache.GetOrBuild(cfg)
		require.NoError(t, err)
		assert.True(t, g == g2)
	})
}
