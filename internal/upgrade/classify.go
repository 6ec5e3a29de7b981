package upgrade

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	werrors "github.com/foundryhq/workbay/internal/errors"
	"github.com/foundryhq/workbay/internal/graph"
	"github.com/foundryhq/workbay/internal/registry"
	pkgsemver "github.com/foundryhq/workbay/pkg/semver"
)

// Status classifies how a declared dependency requirement compares
// against what its registry currently publishes.
type Status string

const (
	StatusUpToDate       Status = "up_to_date"
	StatusPatchAvailable Status = "patch_available"
	StatusMinorAvailable Status = "minor_available"
	StatusMajorAvailable Status = "major_available"
	StatusConstrained    Status = "constrained"
	StatusCheckFailed    Status = "check_failed"
)

// AvailableUpgrade is one edge's upgrade classification.
type AvailableUpgrade struct {
	Package              string
	Dependency           string
	CurrentRequirement   string
	CompatibleVersion    string // highest version satisfying the current requirement
	LatestVersion        string // highest version published, ignoring the requirement
	Status               Status
	Err                  error
}

// Plan is the full set of classified upgrades across the workspace.
type Plan struct {
	Upgrades []AvailableUpgrade
}

// Classifier classifies dependency edges against a map of per-dependency
// registry oracles.
type Classifier struct {
	Oracles map[string]registry.Oracle // dependency name -> oracle to consult
	Default registry.Oracle            // fallback oracle when no per-name override exists
}

// Classify inspects every external dependency edge in g and reports an
// AvailableUpgrade for each, using Masterminds/semver/v3 to evaluate the
// declared requirement against the registry's published versions (the
// ecosystem-accurate constraint language real package managers use,
// distinct from pkg/semver.Requirement which models the workspace's own
// internal edges).
func (c *Classifier) Classify(ctx context.Context, g *graph.DependencyGraph) (*Plan, error) {
	plan := &Plan{}

	for _, node := range g.GetAllNodes() {
		if node.External {
			continue
		}
		for _, edge := range g.GetEdgesFrom(node.Name) {
			target, ok := g.GetNode(edge.To)
			if !ok || !target.External || edge.Requirement == "" {
				continue
			}

			upgrade := c.classifyEdge(ctx, node.Name, edge.To, edge.Requirement)
			plan.Upgrades = append(plan.Upgrades, upgrade)
		}
	}

	sort.Slice(plan.Upgrades, func(i, j int) bool {
		if plan.Upgrades[i].Package != plan.Upgrades[j].Package {
			return plan.Upgrades[i].Package < plan.Upgrades[j].Package
		}
		return plan.Upgrades[i].Dependency < plan.Upgrades[j].Dependency
	})
	return plan, nil
}

func (c *Classifier) oracleFor(name string) registry.Oracle {
	if o, ok := c.Oracles[name]; ok {
		return o
	}
	return c.Default
}

func (c *Classifier) classifyEdge(ctx context.Context, pkg, dep, requirement string) AvailableUpgrade {
	result := AvailableUpgrade{Package: pkg, Dependency: dep, CurrentRequirement: requirement}

	oracle := c.oracleFor(dep)
	if oracle == nil {
		result.Status = StatusCheckFailed
		result.Err = werrors.NewRegistryError(dep, "no registry configured for dependency", false, nil)
		return result
	}

	versions, err := oracle.AllVersions(ctx, dep, false)
	if err != nil {
		result.Status = StatusCheckFailed
		result.Err = err
		return result
	}
	if len(versions) == 0 {
		result.Status = StatusCheckFailed
		result.Err = fmt.Errorf("no published versions for %s", dep)
		return result
	}

	constraint, err := semver.NewConstraint(toConstraintSyntax(requirement))
	if err != nil {
		result.Status = StatusCheckFailed
		result.Err = fmt.Errorf("invalid requirement %q for %s: %w", requirement, dep, err)
		return result
	}

	latest := versions[len(versions)-1]
	result.LatestVersion = latest.String()

	var compatible *pkgsemver.Version
	for i := len(versions) - 1; i >= 0; i-- {
		v, err := semver.NewVersion(versions[i].String())
		if err != nil {
			continue
		}
		if constraint.Check(v) {
			compatible = versions[i]
			break
		}
	}

	switch {
	case compatible == nil:
		result.Status = StatusConstrained
	case compatible.Equals(latest):
		result.CompatibleVersion = compatible.String()
		result.Status = StatusUpToDate
	default:
		result.CompatibleVersion = compatible.String()
		switch {
		case latest.Major > compatible.Major:
			result.Status = StatusMajorAvailable
		case latest.Minor > compatible.Minor:
			result.Status = StatusMinorAvailable
		default:
			result.Status = StatusPatchAvailable
		}
	}
	return result
}

// toConstraintSyntax adapts a workspace requirement string to the
// Masterminds/semver/v3 constraint grammar (it already understands
// "^1.2.3", "~1.2.3", ">=1.2.0 <2.0.0", "*" and a bare version, which it
// matches exactly; only an empty requirement is rewritten, to "*").
func toConstraintSyntax(requirement string) string {
	if requirement == "" {
		return "*"
	}
	return requirement
}

// Selection filters a Plan down to the upgrades a caller actually wants
// to act on, mirroring the CLI's `upgrade apply --status` filter.
type Selection struct {
	Statuses []Status
}

// Filter returns the subset of plan.Upgrades matching the selection. An
// empty Selection matches everything.
func (s Selection) Filter(plan *Plan) []AvailableUpgrade {
	if len(s.Statuses) == 0 {
		return plan.Upgrades
	}
	want := make(map[Status]bool, len(s.Statuses))
	for _, st := range s.Statuses {
		want[st] = true
	}
	var out []AvailableUpgrade
	for _, u := range plan.Upgrades {
		if want[u.Status] {
			out = append(out, u)
		}
	}
	return out
}
