package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/foundryhq/workbay/internal/graph"
	"github.com/foundryhq/workbay/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTwoPackageGraph(t *testing.T) *graph.DependencyGraph {
	t.Helper()
	g, err := graph.BuildFromPackages([]config.Package{
		{Name: "util", Path: "./util", Ecosystem: config.EcosystemGo},
		{
			Name: "core", Path: "./core", Ecosystem: config.EcosystemGo,
			Dependencies: []config.Dependency{{Name: "util", Kind: config.DependencyRuntime, Requirement: "^1.0.0"}},
		},
	})
	require.NoError(t, err)
	return g
}

func TestRunSucceedsInDependencyOrder(t *testing.T) {
	g := buildTwoPackageGraph(t)

	r := NewRunner(g, 2)
	defs := []Definition{{
		Name:     "build",
		Command:  []string{"/bin/sh", "-c", "true"},
		Priority: 0,
	}}
	report, err := r.Run(context.Background(), defs, nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, StateSuccess, res.State)
	}
	assert.False(t, report.Failed())
}

func TestRunSkipsDependentsOnFailure(t *testing.T) {
	g := buildTwoPackageGraph(t)
	r := NewRunner(g, 2)

	defs := []Definition{{
		Name:    "test",
		Command: []string{"/bin/sh", "-c", "exit 1"},
	}}
	report, err := r.Run(context.Background(), defs, nil)
	require.NoError(t, err)
	assert.True(t, report.Failed())

	byPkg := map[string]Result{}
	for _, res := range report.Results {
		byPkg[res.Package] = res
	}
	assert.Equal(t, StateFailed, byPkg["util"].State)
	assert.Equal(t, StateSkipped, byPkg["core"].State)
}

func TestRunContinueOnErrorStillRunsDependents(t *testing.T) {
	g := buildTwoPackageGraph(t)
	r := NewRunner(g, 2)

	defs := []Definition{{
		Name:            "lint",
		Command:         []string{"/bin/sh", "-c", "exit 1"},
		ContinueOnError: true,
	}}
	report, err := r.Run(context.Background(), defs, nil)
	require.NoError(t, err)

	byPkg := map[string]Result{}
	for _, res := range report.Results {
		byPkg[res.Package] = res
	}
	assert.Equal(t, StateFailed, byPkg["util"].State)
	assert.Equal(t, StateSuccess, byPkg["core"].State)
}

func TestRunRespectsAffectedFilter(t *testing.T) {
	g := buildTwoPackageGraph(t)
	r := NewRunner(g, 2)

	defs := []Definition{{Name: "build", Command: []string{"/bin/sh", "-c", "true"}}}
	report, err := r.Run(context.Background(), defs, []string{"util"})
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, "util", report.Results[0].Package)
}

func TestRunTimeoutMarksTimedOut(t *testing.T) {
	g := buildTwoPackageGraph(t)
	r := NewRunner(g, 2)
	r.GracePeriod = 50 * time.Millisecond

	defs := []Definition{{
		Name:    "slow",
		Command: []string{"/bin/sh", "-c", "sleep 5"},
		Timeout: Timeout{Kind: TimeoutFixed, Duration: 50 * time.Millisecond},
	}}
	report, err := r.Run(context.Background(), defs, []string{"util"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StateTimedOut, report.Results[0].State)
}
