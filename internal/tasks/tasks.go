// Package tasks implements the bounded, DAG-ordered task runner (spec
// §4.G): tasks execute once every dependency has reached a terminal
// state, run concurrently up to max_concurrent through an alitto/pond/v2
// worker pool, and are replicated once per affected package. Cancellation
// is cooperative: a cancelled run sends SIGTERM to every in-flight
// subprocess and escalates to SIGKILL after a grace period.
package tasks

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/foundryhq/workbay/internal/graph"
)

// State is a task instance's position in its execution state machine:
// Pending -> Ready -> Running -> {Success, Failed, Cancelled, TimedOut},
// with a Ready -> Skipped shortcut when a dependency failed.
type State string

const (
	StatePending   State = "pending"
	StateReady     State = "ready"
	StateRunning   State = "running"
	StateSuccess   State = "success"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
	StateTimedOut  State = "timed_out"
	StateSkipped   State = "skipped"
)

// TimeoutKind selects how a task's deadline is computed.
type TimeoutKind string

const (
	TimeoutNone       TimeoutKind = "none"
	TimeoutFixed      TimeoutKind = "fixed"
	TimeoutPerPackage TimeoutKind = "per_package"
)

// Timeout configures a task's execution deadline.
type Timeout struct {
	Kind     TimeoutKind
	Duration time.Duration
}

// Definition describes one task to run once per affected package.
type Definition struct {
	Name            string
	Command         []string // argv; Command[0] is the executable
	Priority        int      // higher runs first among otherwise-ready tasks
	Timeout         Timeout
	ContinueOnError bool
	// Condition, if set, is evaluated synchronously before scheduling a
	// package instance; returning false marks that instance Skipped
	// without ever becoming Running.
	Condition func(pkg string) (bool, error)
}

// instance is one (task, package) pair — the actual unit of scheduling.
type instance struct {
	def       Definition
	pkg       string
	depth     int // topological depth of pkg, for priority-queue tie-breaking
	state     State
	err       error
	startedAt time.Time
	endedAt   time.Time
	mu        sync.Mutex
}

func (i *instance) setState(s State, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = s
	i.err = err
}

func (i *instance) getState() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Result is the terminal record of one (task, package) instance.
type Result struct {
	Task     string
	Package  string
	State    State
	Err      error
	Duration time.Duration
}

// Report is the aggregate outcome of a Run.
type Report struct {
	Results []Result
}

// Failed reports whether any instance in the report ended Failed or
// TimedOut.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.State == StateFailed || res.State == StateTimedOut {
			return true
		}
	}
	return false
}

// Runner schedules and executes task instances across a dependency
// graph's packages, bounded by MaxConcurrent concurrent subprocesses.
type Runner struct {
	Graph         *graph.DependencyGraph
	MaxConcurrent int
	GracePeriod   time.Duration // SIGTERM -> SIGKILL grace period on cancellation
}

// NewRunner builds a Runner bounded to maxConcurrent concurrent tasks,
// defaulting GracePeriod to 5s per spec §4.G.
func NewRunner(g *graph.DependencyGraph, maxConcurrent int) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{Graph: g, MaxConcurrent: maxConcurrent, GracePeriod: 5 * time.Second}
}

// Run schedules every (task, package) instance implied by defs across
// every package affected, running each task's package instances in
// dependency order: a package's instance of a task only becomes Ready
// once every one of its direct dependencies has reached a terminal state
// for that same task.
func (r *Runner) Run(ctx context.Context, defs []Definition, affected []string) (*Report, error) {
	order, _, err := graph.TopologicalOrder(r.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to compute package order: %w", err)
	}
	depthOf := make(map[string]int, len(order))
	for i, name := range order {
		depthOf[name] = i
	}

	affectedSet := make(map[string]bool, len(affected))
	for _, name := range affected {
		affectedSet[name] = true
	}

	var instances []*instance
	byTaskPkg := make(map[string]*instance)
	for _, def := range defs {
		for _, pkgName := range order {
			if len(affectedSet) > 0 && !affectedSet[pkgName] {
				continue
			}
			inst := &instance{def: def, pkg: pkgName, depth: depthOf[pkgName], state: StatePending}
			instances = append(instances, inst)
			byTaskPkg[def.Name+"\x00"+pkgName] = inst
		}
	}

	pool := pond.NewPool(r.MaxConcurrent)
	defer pool.StopAndWait()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		pending = len(instances)
		wg      sync.WaitGroup
	)
	done := make(chan struct{})

	depsOf := func(inst *instance) []*instance {
		var deps []*instance
		for _, depName := range r.Graph.DependenciesOf(inst.pkg) {
			if dep, ok := byTaskPkg[inst.def.Name+"\x00"+depName]; ok {
				deps = append(deps, dep)
			}
		}
		return deps
	}

	isReady := func(inst *instance) (ready bool, skip bool) {
		for _, dep := range depsOf(inst) {
			switch dep.getState() {
			case StateSuccess:
				continue
			case StateSkipped:
				continue
			case StateFailed, StateCancelled, StateTimedOut:
				if !inst.def.ContinueOnError {
					return false, true
				}
			default:
				return false, false
			}
		}
		return true, false
	}

	var scheduleReady func()
	scheduleReady = func() {
		mu.Lock()
		var readyNow []*instance
		for _, inst := range instances {
			if inst.getState() != StatePending {
				continue
			}
			ready, skip := isReady(inst)
			if skip {
				inst.setState(StateSkipped, nil)
				pending--
				continue
			}
			if ready {
				inst.setState(StateReady, nil)
				readyNow = append(readyNow, inst)
			}
		}
		remaining := pending
		mu.Unlock()

		sort.Slice(readyNow, func(i, j int) bool {
			if readyNow[i].def.Priority != readyNow[j].def.Priority {
				return readyNow[i].def.Priority > readyNow[j].def.Priority
			}
			if readyNow[i].depth != readyNow[j].depth {
				return readyNow[i].depth < readyNow[j].depth
			}
			return readyNow[i].pkg < readyNow[j].pkg
		})

		for _, inst := range readyNow {
			inst := inst
			wg.Add(1)
			pool.Submit(func() {
				defer wg.Done()
				r.runInstance(runCtx, inst)
				mu.Lock()
				pending--
				left := pending
				mu.Unlock()
				if left == 0 {
					select {
					case <-done:
					default:
						close(done)
					}
					return
				}
				scheduleReady()
			})
		}

		if remaining == 0 {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	}

	scheduleReady()
	wg.Wait()

	report := &Report{}
	for _, inst := range instances {
		report.Results = append(report.Results, Result{
			Task: inst.def.Name, Package: inst.pkg, State: inst.getState(), Err: inst.err,
			Duration: inst.endedAt.Sub(inst.startedAt),
		})
	}
	sort.Slice(report.Results, func(i, j int) bool {
		if report.Results[i].Task != report.Results[j].Task {
			return report.Results[i].Task < report.Results[j].Task
		}
		return report.Results[i].Package < report.Results[j].Package
	})
	return report, nil
}

// runInstance evaluates the task's condition, then runs its command as a
// subprocess, honoring the configured timeout and cooperative
// cancellation with a SIGTERM-then-SIGKILL grace period.
func (r *Runner) runInstance(ctx context.Context, inst *instance) {
	if inst.def.Condition != nil {
		ok, err := inst.def.Condition(inst.pkg)
		if err != nil {
			inst.setState(StateFailed, err)
			return
		}
		if !ok {
			inst.setState(StateSkipped, nil)
			return
		}
	}

	inst.startedAt = time.Now()
	inst.setState(StateRunning, nil)
	defer func() { inst.endedAt = time.Now() }()

	if len(inst.def.Command) == 0 {
		inst.setState(StateSuccess, nil)
		return
	}

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if inst.def.Timeout.Kind != TimeoutNone && inst.def.Timeout.Duration > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, inst.def.Timeout.Duration)
		defer cancelTimeout()
	}

	cmd := exec.Command(inst.def.Command[0], inst.def.Command[1:]...)
	if err := cmd.Start(); err != nil {
		inst.setState(StateFailed, err)
		return
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		if err != nil {
			inst.setState(StateFailed, err)
			return
		}
		inst.setState(StateSuccess, nil)

	case <-runCtx.Done():
		r.terminate(cmd, waitErr)
		if ctx.Err() != nil {
			inst.setState(StateCancelled, ctx.Err())
		} else {
			inst.setState(StateTimedOut, runCtx.Err())
		}
	}
}

// terminate sends SIGTERM to the process group and escalates to SIGKILL
// if it hasn't exited within GracePeriod.
func (r *Runner) terminate(cmd *exec.Cmd, waitErr <-chan error) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(syscall.SIGTERM)

	grace := r.GracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}

	select {
	case <-waitErr:
		return
	case <-time.After(grace):
		_ = cmd.Process.Signal(syscall.SIGKILL)
	}
}
