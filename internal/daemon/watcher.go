// Package daemon implements the long-running workspace watch process
// (spec §4.H/§4.I): a recursive filesystem watcher that debounces bursts
// of change events into scoped batches, an in-process event bus that
// subscribers filter against, and a Unix-domain-socket IPC server that
// exposes both to out-of-process clients.
package daemon

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"github.com/foundryhq/workbay/pkg/config"
)

// Scope identifies which part of the workspace a batch of changes
// touched: a specific package, the repository root, or (when a change's
// path can't be mapped to either) the whole monorepo.
type Scope struct {
	Kind    ScopeKind
	Package string // set when Kind == ScopePackage
}

type ScopeKind string

const (
	ScopePackage  ScopeKind = "package"
	ScopeRoot     ScopeKind = "root"
	ScopeMonorepo ScopeKind = "monorepo"
)

// Batch is one debounced, scope-mapped group of filesystem events.
type Batch struct {
	Scope Scope
	Paths []string
	At    time.Time
}

// Watcher recursively watches a workspace's package roots and emits
// debounced, scope-mapped Batches to OnBatch.
type Watcher struct {
	root        string
	packages    []config.Package
	quietPeriod time.Duration
	maxBatch    int
	clock       clockwork.Clock
	fsWatcher   *fsnotify.Watcher
	OnBatch     func(Batch)

	pending   map[string]bool
	pendingMu chan struct{} // binary mutex via buffered channel, avoids importing sync just for this
}

// NewWatcher builds a Watcher rooted at root, watching every package
// path declared in packages. quietPeriod defaults to 500ms and maxBatch
// to 0 (unbounded) when zero.
func NewWatcher(root string, packages []config.Package, quietPeriod time.Duration, maxBatch int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if quietPeriod <= 0 {
		quietPeriod = 500 * time.Millisecond
	}

	w := &Watcher{
		root:        root,
		packages:    packages,
		quietPeriod: quietPeriod,
		maxBatch:    maxBatch,
		clock:       clockwork.NewRealClock(),
		fsWatcher:   fsw,
		pending:     make(map[string]bool),
		pendingMu:   make(chan struct{}, 1),
	}
	w.pendingMu <- struct{}{}
	return w, nil
}

// WithClock overrides the watcher's debounce clock, for deterministic
// tests via clockwork.NewFakeClock().
func (w *Watcher) WithClock(c clockwork.Clock) *Watcher {
	w.clock = c
	return w
}

// Start begins watching and runs the debounce loop until stop is closed.
func (w *Watcher) Start(stop <-chan struct{}) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	timer := w.clock.NewTimer(24 * time.Hour) // idle until the first event arms it
	timer.Stop()
	armed := false

	for {
		select {
		case <-stop:
			w.fsWatcher.Close()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.recordPending(event.Name)
			if !armed {
				timer.Reset(w.quietPeriod)
				armed = true
			} else {
				timer.Reset(w.quietPeriod)
			}

		case <-timer.Chan():
			armed = false
			w.flush()

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (w *Watcher) recordPending(path string) {
	<-w.pendingMu
	w.pending[path] = true
	w.pendingMu <- struct{}{}
}

// flush maps every pending path to its scope, groups paths by scope, and
// emits one Batch per scope (splitting further if maxBatch is set).
func (w *Watcher) flush() {
	<-w.pendingMu
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.pendingMu <- struct{}{}

	if len(paths) == 0 || w.OnBatch == nil {
		return
	}
	sort.Strings(paths)

	byScope := make(map[string][]string)
	scopes := make(map[string]Scope)
	for _, p := range paths {
		scope := w.scopeFor(p)
		key := scope.Kind.String() + "\x00" + scope.Package
		byScope[key] = append(byScope[key], p)
		scopes[key] = scope
	}

	now := w.clock.Now()
	for key, group := range byScope {
		scope := scopes[key]
		if w.maxBatch <= 0 || len(group) <= w.maxBatch {
			w.OnBatch(Batch{Scope: scope, Paths: group, At: now})
			continue
		}
		for i := 0; i < len(group); i += w.maxBatch {
			end := i + w.maxBatch
			if end > len(group) {
				end = len(group)
			}
			w.OnBatch(Batch{Scope: scope, Paths: group[i:end], At: now})
		}
	}
}

// scopeFor maps a changed path to the package whose root is its longest
// matching prefix, falling back to ScopeRoot for files directly at the
// workspace root and ScopeMonorepo for anything else (e.g. a shared
// config file no package claims).
func (w *Watcher) scopeFor(path string) Scope {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return Scope{Kind: ScopeMonorepo}
	}
	rel = filepath.ToSlash(rel)

	best := ""
	bestPkg := ""
	for _, pkg := range w.packages {
		pkgPath := filepath.ToSlash(pkg.Path)
		if rel == pkgPath || strings.HasPrefix(rel, pkgPath+"/") {
			if len(pkgPath) > len(best) {
				best = pkgPath
				bestPkg = pkg.Name
			}
		}
	}
	if bestPkg != "" {
		return Scope{Kind: ScopePackage, Package: bestPkg}
	}
	if !strings.Contains(rel, "/") {
		return Scope{Kind: ScopeRoot}
	}
	return Scope{Kind: ScopeMonorepo}
}

func (k ScopeKind) String() string { return string(k) }

var ignoredDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".changesets": true,
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable subtrees rather than aborting the whole watch
		}
		if !info.IsDir() {
			return nil
		}
		if ignoredDirs[filepath.Base(path)] {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}
