package graph

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/foundryhq/workbay/pkg/config"
)

// GraphCache provides caching for dependency graphs to avoid rebuilding
// on every operation. Thread-safe for concurrent access.
type GraphCache struct {
	mu    sync.RWMutex
	cache map[string]*DependencyGraph
}

// NewGraphCache creates a new graph cache.
func NewGraphCache() *GraphCache {
	return &GraphCache{
		cache: make(map[string]*DependencyGraph),
	}
}

// GetOrBuild returns a cached graph if available, otherwise builds and caches it.
// Errors are not cached - failed builds will retry on next call.
func (gc *GraphCache) GetOrBuild(cfg *config.ProjectConfig) (*DependencyGraph, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cannot build graph: config is nil")
	}

	key, err := gc.cacheKey(cfg)
	if err != nil {
		return Build(cfg)
	}

	gc.mu.RLock()
	if cached, ok := gc.cache[key]; ok {
		gc.mu.RUnlock()
		return cached, nil
	}
	gc.mu.RUnlock()

	g, err := Build(cfg)
	if err != nil {
		return nil, err
	}

	gc.mu.Lock()
	gc.cache[key] = g
	gc.mu.Unlock()

	return g, nil
}

// Clear removes all entries from the cache.
func (gc *GraphCache) Clear() {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	gc.cache = make(map[string]*DependencyGraph)
}

// Invalidate removes the cache entry for a specific config.
func (gc *GraphCache) Invalidate(cfg *config.ProjectConfig) {
	if cfg == nil {
		return
	}

	key, err := gc.cacheKey(cfg)
	if err != nil {
		return
	}

	gc.mu.Lock()
	defer gc.mu.Unlock()

	delete(gc.cache, key)
}

// cacheKey computes a deterministic cache key from a config.
// Uses SHA-256 hash of the JSON representation.
func (gc *GraphCache) cacheKey(cfg *config.ProjectConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config for cache key: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
