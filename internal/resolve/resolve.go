// Package resolve implements the version resolver (spec §4.E): given a
// set of pending changesets and the dependency graph, it computes a
// BumpPlan under either the Independent or Unified strategy, optionally
// renders ephemeral snapshot versions, and applies a plan's decisions to
// disk leaves-first through pkg/manifest.
package resolve

import (
	"fmt"
	"sort"

	"github.com/foundryhq/workbay/internal/changeset"
	werrors "github.com/foundryhq/workbay/internal/errors"
	"github.com/foundryhq/workbay/internal/graph"
	"github.com/foundryhq/workbay/pkg/config"
	"github.com/foundryhq/workbay/pkg/manifest"
	"github.com/foundryhq/workbay/pkg/semver"
	"github.com/foundryhq/workbay/pkg/types"
)

// Strategy selects how a bump on one package affects the rest of the
// workspace.
type Strategy string

const (
	// StrategyIndependent bumps only the packages a changeset names, then
	// cascades a dependency_update_bump to their dependents.
	StrategyIndependent Strategy = "independent"
	// StrategyUnified gives every workspace package the same version,
	// bumped by the highest-priority change type across all changesets.
	StrategyUnified Strategy = "unified"
)

// Decision records the resolved bump for a single package.
type Decision struct {
	Package  string
	Old      *semver.Version
	New      *semver.Version
	BumpKind types.ChangeType
	Reason   string // "direct" or "propagated from <package>"
}

// EdgeRewrite records a dependency requirement that must be rewritten to
// point at a bumped package's new version.
type EdgeRewrite struct {
	From           string
	To             string
	OldRequirement string
	NewRequirement string
}

// BumpPlan is the resolver's output: the set of version decisions and
// requirement rewrites needed to realize them, plus the changesets it
// consumes (empty for a snapshot plan).
type BumpPlan struct {
	Strategy           Strategy
	Decisions          []Decision
	EdgeRewrites       []EdgeRewrite
	ChangesetsConsumed []string
}

// CircularDependencyError is returned when a cycle in the dependency
// graph touches at least one package being bumped: the resolver has no
// sound leaves-first write order and refuses rather than guess.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency blocks version resolution: %v", e.Path)
}

// PropagationDepthExceededError is returned when cascading a bump would
// walk more hops than versioning.max_propagation_depth allows.
type PropagationDepthExceededError struct {
	MaxDepth int
	Package  string
}

func (e *PropagationDepthExceededError) Error() string {
	return fmt.Sprintf("propagation depth exceeded (max %d) while cascading to %s", e.MaxDepth, e.Package)
}

// Resolver computes bump plans over a dependency graph and a changeset
// store, following the workspace's versioning configuration.
type Resolver struct {
	Graph  *graph.DependencyGraph
	Config config.VersioningConfig
}

// NewResolver builds a Resolver bound to g and cfg.
func NewResolver(g *graph.DependencyGraph, cfg config.VersioningConfig) *Resolver {
	return &Resolver{Graph: g, Config: cfg}
}

// currentVersions resolves every workspace package's version up front via
// the manifest adapter, so the rest of resolution works in memory.
func (r *Resolver) currentVersions(packages []config.Package) (map[string]*semver.Version, error) {
	versions := make(map[string]*semver.Version, len(packages))
	for _, pkg := range packages {
		m, err := manifest.Read(&pkg)
		if err != nil {
			return nil, werrors.NewManifestError("failed to read current version", pkg.Path, err)
		}
		v, err := semver.Parse(m.Version)
		if err != nil {
			v = semver.Zero()
		}
		versions[pkg.Name] = v
	}
	return versions, nil
}

// Resolve computes a BumpPlan from the given pending changesets. It
// refuses (CircularDependencyError) if any cycle in the graph touches a
// package that would be bumped, either directly or by cascade.
func (r *Resolver) Resolve(packages []config.Package, pending []*changeset.Changeset) (*BumpPlan, error) {
	switch r.strategy() {
	case StrategyUnified:
		return r.resolveUnified(packages, pending)
	default:
		return r.resolveIndependent(packages, pending)
	}
}

func (r *Resolver) strategy() Strategy {
	if r.Config.Strategy == string(StrategyUnified) {
		return StrategyUnified
	}
	return StrategyIndependent
}

func (r *Resolver) maxDepth() int {
	if r.Config.MaxPropagationDepth > 0 {
		return r.Config.MaxPropagationDepth
	}
	return 5
}

func (r *Resolver) cascadeBump() types.ChangeType {
	if ct, err := types.ParseChangeType(r.Config.DependencyUpdateBump); err == nil {
		return ct
	}
	return types.ChangeTypePatch
}

// resolveIndependent implements spec §4.E's five-step algorithm: (1)
// aggregate direct bumps per package from changesets, (2) cascade to
// dependents up to max_propagation_depth, (3) refuse on a cycle touching
// a bumped package, (4) compute new versions, (5) rewrite satisfied
// requirement edges to point at the new versions.
func (r *Resolver) resolveIndependent(packages []config.Package, pending []*changeset.Changeset) (*BumpPlan, error) {
	versions, err := r.currentVersions(packages)
	if err != nil {
		return nil, err
	}

	direct := make(map[string]types.ChangeType)
	reasons := make(map[string]string)
	var consumed []string
	for _, cs := range pending {
		if cs.Bump == types.ChangeTypeNone {
			continue
		}
		consumed = append(consumed, cs.ID)
		for _, pkgName := range cs.Packages {
			if existing, ok := direct[pkgName]; !ok || cs.Bump.Priority() > existing.Priority() {
				direct[pkgName] = cs.Bump
				reasons[pkgName] = "direct"
			}
		}
	}

	bumped := make(map[string]types.ChangeType, len(direct))
	for name, ct := range direct {
		bumped[name] = ct
	}

	if err := r.refuseCycles(bumpedNames(bumped)); err != nil {
		return nil, err
	}

	// Cascade: BFS outward from every directly bumped package to its
	// dependents, applying the configured dependency_update_bump at each
	// hop, up to max_propagation_depth hops.
	depth := make(map[string]int)
	frontier := bumpedNames(bumped)
	for _, name := range frontier {
		depth[name] = 0
	}

	for hop := 1; hop <= r.maxDepth() && len(frontier) > 0; hop++ {
		next := []string{}
		for _, name := range frontier {
			for _, dependent := range r.Graph.DependentsOf(name, true) {
				if _, already := bumped[dependent]; already {
					continue
				}
				// Only direct dependents of *this* hop's frontier member
				// advance; DependentsOf returns the full transitive set,
				// so restrict to direct edges for correct hop counting.
				if !r.dependsDirectlyOn(dependent, name) {
					continue
				}
				bumped[dependent] = r.cascadeBump()
				reasons[dependent] = fmt.Sprintf("propagated from %s", name)
				depth[dependent] = hop
				next = append(next, dependent)
			}
		}
		frontier = next
	}
	if len(frontier) > 0 {
		return nil, &PropagationDepthExceededError{MaxDepth: r.maxDepth(), Package: frontier[0]}
	}

	if err := r.refuseCycles(bumpedNames(bumped)); err != nil {
		return nil, err
	}

	plan := &BumpPlan{Strategy: StrategyIndependent, ChangesetsConsumed: consumed}
	newVersions := make(map[string]*semver.Version, len(bumped))
	for _, name := range bumpedNames(bumped) {
		old := versions[name]
		if old == nil {
			old = semver.Zero()
		}
		nv := old.Bump(string(bumped[name]))
		newVersions[name] = nv
		plan.Decisions = append(plan.Decisions, Decision{
			Package: name, Old: old, New: nv, BumpKind: bumped[name], Reason: reasons[name],
		})
	}
	sort.Slice(plan.Decisions, func(i, j int) bool { return plan.Decisions[i].Package < plan.Decisions[j].Package })

	plan.EdgeRewrites = r.rewritesFor(newVersions)
	return plan, nil
}

// resolveUnified gives every workspace package the same new version,
// bumped once by the highest-priority change type across all pending
// changesets.
func (r *Resolver) resolveUnified(packages []config.Package, pending []*changeset.Changeset) (*BumpPlan, error) {
	versions, err := r.currentVersions(packages)
	if err != nil {
		return nil, err
	}

	highest := types.ChangeTypeNone
	var consumed []string
	for _, cs := range pending {
		if cs.Bump == types.ChangeTypeNone {
			continue
		}
		consumed = append(consumed, cs.ID)
		if cs.Bump.Priority() > highest.Priority() {
			highest = cs.Bump
		}
	}
	if highest == types.ChangeTypeNone {
		return &BumpPlan{Strategy: StrategyUnified}, nil
	}

	allNames := make([]string, 0, len(packages))
	for _, pkg := range packages {
		allNames = append(allNames, pkg.Name)
	}
	if err := r.refuseCycles(allNames); err != nil {
		return nil, err
	}

	// All packages move together, so the shared base is the current max
	// version across the workspace.
	base := semver.Zero()
	for _, v := range versions {
		if v.GreaterThan(base) {
			base = v
		}
	}
	newVersion := base.Bump(string(highest))

	plan := &BumpPlan{Strategy: StrategyUnified, ChangesetsConsumed: consumed}
	newVersions := make(map[string]*semver.Version, len(packages))
	for _, name := range allNames {
		newVersions[name] = newVersion
		plan.Decisions = append(plan.Decisions, Decision{
			Package: name, Old: versions[name], New: newVersion, BumpKind: highest, Reason: "unified",
		})
	}
	sort.Slice(plan.Decisions, func(i, j int) bool { return plan.Decisions[i].Package < plan.Decisions[j].Package })

	plan.EdgeRewrites = r.rewritesFor(newVersions)
	return plan, nil
}

// Snapshot renders an ephemeral snapshot version per spec.RenderSnapshot
// for every given package, consuming no changesets and writing nothing.
func (r *Resolver) Snapshot(packages []config.Package, format, branch, commit, timestamp string) (*BumpPlan, error) {
	versions, err := r.currentVersions(packages)
	if err != nil {
		return nil, err
	}

	plan := &BumpPlan{Strategy: "snapshot"}
	for _, pkg := range packages {
		base := versions[pkg.Name]
		rendered := semver.RenderSnapshot(format, base, branch, commit, timestamp)
		plan.Decisions = append(plan.Decisions, Decision{
			Package: pkg.Name, Old: base, New: &semver.Version{Prerelease: rendered}, Reason: "snapshot",
		})
	}
	return plan, nil
}

// dependsDirectlyOn reports whether `dependent` declares a direct edge to
// `name` (as opposed to merely being transitively affected by it).
func (r *Resolver) dependsDirectlyOn(dependent, name string) bool {
	for _, dep := range r.Graph.DependenciesOf(dependent) {
		if dep == name {
			return true
		}
	}
	return false
}

// refuseCycles returns a CircularDependencyError if any detected cycle
// shares a member with the bumped set.
func (r *Resolver) refuseCycles(bumped []string) error {
	has, cycles := graph.DetectCycles(r.Graph)
	if !has {
		return nil
	}
	bumpedSet := make(map[string]bool, len(bumped))
	for _, b := range bumped {
		bumpedSet[b] = true
	}
	for _, c := range cycles {
		for _, member := range c.Path {
			if bumpedSet[member] {
				return &CircularDependencyError{Path: c.Path}
			}
		}
	}
	return nil
}

// rewritesFor computes, for every declared edge whose target was bumped,
// a rewrite of the edge's requirement text to the new version,
// preserving operator shape via Requirement.Rewrite.
func (r *Resolver) rewritesFor(newVersions map[string]*semver.Version) []EdgeRewrite {
	var rewrites []EdgeRewrite
	for _, node := range r.Graph.GetAllNodes() {
		if node.External {
			continue
		}
		for _, edge := range r.Graph.GetEdgesFrom(node.Name) {
			newVersion, bumped := newVersions[edge.To]
			if !bumped || edge.Requirement == "" {
				continue
			}
			req, err := semver.ParseRequirement(edge.Requirement)
			if err != nil || req.Satisfies(newVersion) {
				continue
			}
			rewritten := req.Rewrite(newVersion)
			rewrites = append(rewrites, EdgeRewrite{
				From: node.Name, To: edge.To,
				OldRequirement: edge.Requirement, NewRequirement: rewritten.String(),
			})
		}
	}
	sort.Slice(rewrites, func(i, j int) bool {
		if rewrites[i].From != rewrites[j].From {
			return rewrites[i].From < rewrites[j].From
		}
		return rewrites[i].To < rewrites[j].To
	})
	return rewrites
}

func bumpedNames(bumped map[string]types.ChangeType) []string {
	names := make([]string, 0, len(bumped))
	for name := range bumped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply writes every decision in plan to disk leaves-first (dependencies
// before dependents, per the graph's topological order) through
// pkg/manifest, then applies every edge rewrite. It does not roll back on
// partial failure: it stops at the first error and reports which package
// it was writing, so the caller can inspect and resume.
func Apply(g *graph.DependencyGraph, packages []config.Package, plan *BumpPlan) error {
	byName := make(map[string]*config.Package, len(packages))
	for i := range packages {
		byName[packages[i].Name] = &packages[i]
	}

	decisionByPkg := make(map[string]Decision, len(plan.Decisions))
	for _, d := range plan.Decisions {
		decisionByPkg[d.Package] = d
	}

	order, _, err := graph.TopologicalOrder(g)
	if err != nil {
		return werrors.NewGraphError("failed to order packages for apply", "", err)
	}

	for _, name := range order {
		decision, ok := decisionByPkg[name]
		if !ok {
			continue
		}
		pkg, ok := byName[name]
		if !ok {
			continue
		}
		if err := manifest.WriteVersion(pkg, decision.New.String()); err != nil {
			return werrors.NewManifestError(fmt.Sprintf("apply stopped at package %s", name), pkg.Path, err)
		}
	}

	for _, rw := range plan.EdgeRewrites {
		pkg, ok := byName[rw.From]
		if !ok {
			continue
		}
		if err := manifest.WriteRequirement(pkg, rw.To, rw.NewRequirement); err != nil {
			return werrors.NewManifestError(fmt.Sprintf("apply stopped rewriting edge %s->%s", rw.From, rw.To), pkg.Path, err)
		}
	}

	return nil
}
