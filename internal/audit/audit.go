// Package audit implements the workspace health audit (spec §6 `audit`
// command, supplemented from the original implementation's audit
// command): it runs a selectable set of sections — upgrade availability,
// dependency graph health, version consistency, and breaking changes —
// and aggregates them into a 0-100 health score.
package audit

import (
	"context"
	"sort"

	"github.com/foundryhq/workbay/internal/graph"
	"github.com/foundryhq/workbay/internal/upgrade"
	"github.com/foundryhq/workbay/pkg/config"
	pkgmanifest "github.com/foundryhq/workbay/pkg/manifest"
	"github.com/foundryhq/workbay/pkg/semver"
)

// Severity classifies how serious an audit issue is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{SeverityInfo: 0, SeverityWarning: 1, SeverityCritical: 2}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// Issue is one finding surfaced by a section.
type Issue struct {
	Section  string
	Package  string
	Severity Severity
	Message  string
}

// Section identifies which part of the audit to run.
type Section string

const (
	SectionAll                Section = "all"
	SectionUpgrades           Section = "upgrades"
	SectionDependencies       Section = "deps"
	SectionVersionConsistency Section = "version-consistency"
	SectionBreaking           Section = "breaking"
)

// UpgradeResult summarizes the §4.F classification for the health score.
type UpgradeResult struct {
	Issues        []Issue
	MajorUpgrades int
}

// DependencyResult summarizes graph structural health.
type DependencyResult struct {
	Issues               []Issue
	CircularDependencies []graph.Cycle
	VersionConflicts     []graph.VersionConflict
}

// VersionConsistencyResult flags internal dependency requirements that the
// depended-on package's current manifest version does not satisfy.
type VersionConsistencyResult struct {
	Issues []Issue
}

// BreakingChangesResult is a stub: the original implementation never
// finished this section either (its `breaking_changes` field is
// documented there as "Not yet implemented"), so this always reports
// zero issues rather than fabricate a semantic-diff detector no example
// in the pack implements.
type BreakingChangesResult struct {
	Issues []Issue
}

// Results aggregates whichever sections were run.
type Results struct {
	Upgrades           *UpgradeResult
	Dependencies       *DependencyResult
	VersionConsistency *VersionConsistencyResult
	BreakingChanges    *BreakingChangesResult
}

// AllIssues flattens every issue across the sections that ran.
func (r *Results) AllIssues() []Issue {
	var out []Issue
	if r.Upgrades != nil {
		out = append(out, r.Upgrades.Issues...)
	}
	if r.Dependencies != nil {
		out = append(out, r.Dependencies.Issues...)
	}
	if r.VersionConsistency != nil {
		out = append(out, r.VersionConsistency.Issues...)
	}
	if r.BreakingChanges != nil {
		out = append(out, r.BreakingChanges.Issues...)
	}
	return out
}

func (r *Results) countBySeverity(sev Severity) int {
	n := 0
	for _, issue := range r.AllIssues() {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// HealthScore computes a 0-100 score, deducting for issues by severity
// and for specific high-signal metrics (major upgrades pending,
// circular dependencies, version conflicts), mirroring the point
// weights and caps of the original implementation's health-score
// formula.
func (r *Results) HealthScore() int {
	score := 100

	critical := min(r.countBySeverity(SeverityCritical), 6)
	warning := min(r.countBySeverity(SeverityWarning), 20)
	info := min(r.countBySeverity(SeverityInfo), 100)
	score -= critical*15 + warning*5 + info

	if r.Upgrades != nil {
		score -= min(r.Upgrades.MajorUpgrades, 50) * 2
	}
	if r.Dependencies != nil {
		score -= min(len(r.Dependencies.CircularDependencies), 10) * 10
		score -= min(len(r.Dependencies.VersionConflicts), 20) * 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Manager runs audit sections against a resolved workspace graph.
type Manager struct {
	Graph      *graph.DependencyGraph
	Packages   []config.Package
	Classifier *upgrade.Classifier
}

// NewManager builds a Manager over an already-built dependency graph.
func NewManager(g *graph.DependencyGraph, packages []config.Package, classifier *upgrade.Classifier) *Manager {
	return &Manager{Graph: g, Packages: packages, Classifier: classifier}
}

// Run executes every section in sections (SectionAll expands to every
// section) and returns the aggregated Results.
func (m *Manager) Run(ctx context.Context, sections []Section) (*Results, error) {
	run := make(map[Section]bool, len(sections))
	for _, s := range sections {
		run[s] = true
	}
	all := run[SectionAll] || len(sections) == 0

	results := &Results{}

	if all || run[SectionUpgrades] {
		res, err := m.auditUpgrades(ctx)
		if err != nil {
			return nil, err
		}
		results.Upgrades = res
	}
	if all || run[SectionDependencies] {
		results.Dependencies = m.auditDependencies()
	}
	if all || run[SectionVersionConsistency] {
		results.VersionConsistency = m.auditVersionConsistency()
	}
	if all || run[SectionBreaking] {
		results.BreakingChanges = &BreakingChangesResult{}
	}

	return results, nil
}

func (m *Manager) auditUpgrades(ctx context.Context) (*UpgradeResult, error) {
	if m.Classifier == nil {
		return &UpgradeResult{}, nil
	}
	plan, err := m.Classifier.Classify(ctx, m.Graph)
	if err != nil {
		return nil, err
	}

	result := &UpgradeResult{}
	for _, u := range plan.Upgrades {
		switch u.Status {
		case upgrade.StatusMajorAvailable:
			result.MajorUpgrades++
			result.Issues = append(result.Issues, Issue{
				Section: string(SectionUpgrades), Package: u.Package, Severity: SeverityWarning,
				Message: u.Dependency + " has a major upgrade available (" + u.CompatibleVersion + " -> " + u.LatestVersion + ")",
			})
		case upgrade.StatusConstrained:
			result.Issues = append(result.Issues, Issue{
				Section: string(SectionUpgrades), Package: u.Package, Severity: SeverityWarning,
				Message: u.Dependency + " requirement " + u.CurrentRequirement + " is constrained away from latest " + u.LatestVersion,
			})
		case upgrade.StatusCheckFailed:
			result.Issues = append(result.Issues, Issue{
				Section: string(SectionUpgrades), Package: u.Package, Severity: SeverityInfo,
				Message: "could not classify " + u.Dependency + ": " + errString(u.Err),
			})
		}
	}
	return result, nil
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func (m *Manager) auditDependencies() *DependencyResult {
	report := m.Graph.Validate()
	result := &DependencyResult{CircularDependencies: report.Cycles, VersionConflicts: report.VersionConflicts}

	for _, cycle := range report.Cycles {
		result.Issues = append(result.Issues, Issue{
			Section: string(SectionDependencies), Severity: SeverityCritical,
			Message: "circular dependency: " + joinPath(cycle.Path),
		})
	}
	for _, conflict := range report.VersionConflicts {
		result.Issues = append(result.Issues, Issue{
			Section: string(SectionDependencies), Package: conflict.Name, Severity: SeverityWarning,
			Message: "conflicting requirements on " + conflict.Name + ": " + joinPath(conflict.Requirements),
		})
	}
	return result
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}

// auditVersionConsistency flags any internal dependency requirement
// that no longer is satisfied by the actual current version of the
// package it points at — a drift FindVersionConflicts doesn't catch,
// since that check only compares declared requirements against each
// other, never against the manifest's ground truth.
func (m *Manager) auditVersionConsistency() *VersionConsistencyResult {
	result := &VersionConsistencyResult{}

	current := make(map[string]*semver.Version)
	for _, n := range m.Graph.GetAllNodes() {
		if n.External || n.Package == nil {
			continue
		}
		manifest, err := pkgmanifest.Read(n.Package)
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				Section: string(SectionVersionConsistency), Package: n.Name, Severity: SeverityInfo,
				Message: "could not read manifest: " + errString(err),
			})
			continue
		}
		v, err := semver.Parse(manifest.Version)
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				Section: string(SectionVersionConsistency), Package: n.Name, Severity: SeverityWarning,
				Message: "manifest version " + manifest.Version + " is not valid semver",
			})
			continue
		}
		current[n.Name] = v
	}

	for _, n := range m.Graph.GetAllNodes() {
		if n.External {
			continue
		}
		for _, edge := range m.Graph.GetEdgesFrom(n.Name) {
			target := current[edge.To]
			if target == nil || edge.Requirement == "" {
				continue
			}
			req, err := semver.ParseRequirement(edge.Requirement)
			if err != nil {
				continue
			}
			if !req.Satisfies(target) {
				result.Issues = append(result.Issues, Issue{
					Section: string(SectionVersionConsistency), Package: n.Name, Severity: SeverityCritical,
					Message: n.Name + " requires " + edge.To + " " + edge.Requirement + " but current version is " + target.String(),
				})
			}
		}
	}

	sort.Slice(result.Issues, func(i, j int) bool { return result.Issues[i].Message < result.Issues[j].Message })
	return result
}
