package daemon

import (
	"fmt"
	"sort"
	"sync"

	"github.com/foundryhq/workbay/internal/changeset"
)

// MemRegistry is the default Registry: an in-memory map of repositories
// the daemon has been told to track, reinitialised at every process
// start (the daemon holds no durable state of its own).
type MemRegistry struct {
	mu     sync.RWMutex
	repos  map[string]string // name -> path
	stores map[string]*changeset.Store
}

// NewMemRegistry builds an empty MemRegistry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{repos: make(map[string]string), stores: make(map[string]*changeset.Store)}
}

func (m *MemRegistry) Add(name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.repos[name]; exists {
		return fmt.Errorf("repository %q is already registered", name)
	}
	m.repos[name] = path
	return nil
}

func (m *MemRegistry) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.repos[name]; !exists {
		return fmt.Errorf("repository %q is not registered", name)
	}
	delete(m.repos, name)
	delete(m.stores, name)
	return nil
}

func (m *MemRegistry) List() []Repository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Repository, 0, len(m.repos))
	for name, path := range m.repos {
		out = append(out, Repository{Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithChangesetDir registers a changeset store for an already-added
// repository, so Changes can report its pending branches.
func (m *MemRegistry) WithChangesetDir(name, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.repos[name]; !exists {
		return fmt.Errorf("repository %q is not registered", name)
	}
	store, err := changeset.NewStore(dir)
	if err != nil {
		return err
	}
	m.stores[name] = store
	return nil
}

func (m *MemRegistry) Changes(name string) ([]string, error) {
	m.mu.RLock()
	store, ok := m.stores[name]
	m.mu.RUnlock()
	if !ok {
		if _, registered := m.repos[name]; !registered {
			return nil, fmt.Errorf("repository %q is not registered", name)
		}
		return nil, nil
	}
	all, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	branches := make([]string, 0, len(all))
	for _, cs := range all {
		branches = append(branches, cs.Branch)
	}
	sort.Strings(branches)
	return branches, nil
}
