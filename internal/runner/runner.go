// Package runner is the top-level orchestration (spec.md §4.5): it
// resolves which run directory to use, promotes eligible errored
// entries, shuffles and dispatches the unresolved set, runs a periodic
// reporter and a wall-clock cap, and persists final state on drain.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cklxx/scoutqueue/internal/async"
	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/command"
	"github.com/cklxx/scoutqueue/internal/logging"
	"github.com/cklxx/scoutqueue/internal/metrics"
	"github.com/cklxx/scoutqueue/internal/store"
	"github.com/cklxx/scoutqueue/internal/task"
	"github.com/cklxx/scoutqueue/internal/taskqueue"
	"github.com/cklxx/scoutqueue/internal/tracing"
)

// ErrNoWork is returned when the latest run is complete and the renew
// period has not yet elapsed; the caller should exit 0 having done
// nothing (spec.md §4.5 step 1c).
var ErrNoWork = errors.New("runner: latest run complete, renew period not elapsed")

// Config bundles everything the runner needs beyond the Command and
// transport, which are supplied separately.
type Config struct {
	DataDirectory        string
	RenewPeriodInDays    int
	MaxRunTimeInMinutes  int
	ReportPeriodInMs     int
	RateLimitStopPercent int
	Queue                taskqueue.Config
	// Metrics is optional; every method tolerates a nil receiver, so a
	// run with no --metrics-addr simply never populates this field.
	Metrics *metrics.Registry
}

// Runner drives one execution of a Command against the process-file
// store.
type Runner struct {
	cfg       Config
	cmd       command.Command
	transport any
	clock     clock.Clock
	ids       clock.IDGenerator
	logger    logging.Logger
}

// New builds a Runner. transport is handed through unexamined as
// task.Context.Transport.
func New(cfg Config, cmd command.Command, transport any, clk clock.Clock, ids clock.IDGenerator, logger logging.Logger) *Runner {
	return &Runner{cfg: cfg, cmd: cmd, transport: transport, clock: clk, ids: ids, logger: logger}
}

// Result is what Run returns on a completed (or aborted) attempt.
type Result struct {
	RunDir string
	State  *store.ProcessState
}

// Run executes spec.md §4.5 steps 1-7 and returns the final persisted
// state.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runDir, state, err := r.resolveRunDir(ctx)
	if err != nil {
		return nil, err
	}

	ctx, endSpan := tracing.StartRun(ctx, runDir)
	defer endSpan()

	r.promoteEligibleErrored(state)

	unresolvedSpecs := make([]*task.Spec, 0, len(state.Unresolved))
	for _, s := range state.Unresolved {
		unresolvedSpecs = append(unresolvedSpecs, s)
	}
	rand.Shuffle(len(unresolvedSpecs), func(i, j int) {
		unresolvedSpecs[i], unresolvedSpecs[j] = unresolvedSpecs[j], unresolvedSpecs[i]
	})

	tc := &task.Context{
		Transport:            r.transport,
		RateLimitStopPercent: r.cfg.RateLimitStopPercent,
		Logger:               r.logger,
		Output:               task.NewOutputBuffer(),
	}

	queueCtx, cancelQueue := context.WithCancel(ctx)
	defer cancelQueue()

	q := taskqueue.New(queueCtx, r.cfg.Queue, state, tc, r.clock, r.logger, r.cfg.Metrics)

	for _, spec := range unresolvedSpecs {
		t, err := r.cmd.CreateTask(tc, spec)
		if err != nil {
			return nil, fmt.Errorf("runner: creating task for spec %q: %w", spec.ID, err)
		}
		q.Add(t)
	}

	stopReporter := r.startReporter(q)
	defer stopReporter()

	if r.cfg.MaxRunTimeInMinutes > 0 {
		timer := time.AfterFunc(time.Duration(r.cfg.MaxRunTimeInMinutes)*time.Minute, func() {
			q.Abort(fmt.Errorf("runner: wall-clock cap of %dm exceeded", r.cfg.MaxRunTimeInMinutes))
		})
		defer timer.Stop()
	}

	finishErr := q.Finish(ctx)

	now := r.clock.Now()
	if len(state.Unresolved) == 0 {
		state.MarkComplete(now)
	}

	r.cfg.Metrics.SetBucketSize("unresolved", len(state.Unresolved))
	r.cfg.Metrics.SetBucketSize("resolved", len(state.Resolved))
	r.cfg.Metrics.SetBucketSize("errored", len(state.Errored))
	r.cfg.Metrics.SetBucketSize("archived", len(state.Archived))

	if err := store.WriteState(r.cfg.DataDirectory, runDir, state); err != nil {
		return nil, fmt.Errorf("runner: persisting state: %w", err)
	}

	timestamp := clock.RunDirTimestamp(now)
	records := tc.Output.Drain()
	if len(records) > 0 {
		outPath := store.OutputPath(r.cfg.DataDirectory, runDir, timestamp)
		if err := store.AppendOutput(outPath, records); err != nil {
			return nil, fmt.Errorf("runner: writing output: %w", err)
		}
	}

	result := &Result{RunDir: runDir, State: state}

	// finishErr is the queue's abort cause, if any: a task-triggered
	// hard rate-limit stop, the wall-clock cap, or ctx being cancelled
	// out from under Run (e.g. SIGINT/SIGTERM). The state above is
	// always fully drained and persisted regardless of which one it
	// was; callers still need to see that the run didn't reach a clean
	// finish, so the result is returned alongside the error rather than
	// swallowed.
	if finishErr != nil {
		return result, fmt.Errorf("runner: run did not finish cleanly: %w", finishErr)
	}
	return result, nil
}

// resolveRunDir implements spec.md §4.5 step 1's three cases.
func (r *Runner) resolveRunDir(ctx context.Context) (string, *store.ProcessState, error) {
	latest, found, err := store.LatestRunDir(r.cfg.DataDirectory)
	if err != nil {
		return "", nil, fmt.Errorf("runner: resolving latest run directory: %w", err)
	}

	now := r.clock.Now()

	if !found {
		return r.seedNewRun(ctx, now)
	}

	existing, err := store.ReadState(r.cfg.DataDirectory, latest)
	if err != nil {
		return "", nil, fmt.Errorf("runner: reading state for %q: %w", latest, err)
	}

	if !existing.IsComplete() {
		return latest, existing, nil
	}

	elapsedDays := now.Sub(*existing.CompletionDate).Hours() / 24
	if elapsedDays >= float64(r.cfg.RenewPeriodInDays) {
		return r.seedNewRun(ctx, now)
	}

	return "", nil, ErrNoWork
}

func (r *Runner) seedNewRun(ctx context.Context, now time.Time) (string, *store.ProcessState, error) {
	timestamp := clock.RunDirTimestamp(now)
	runDir, err := store.CreateRunDir(r.cfg.DataDirectory, timestamp)
	if err != nil {
		return "", nil, fmt.Errorf("runner: creating run directory: %w", err)
	}

	state := store.NewProcessState(now)
	seeds, err := r.cmd.CreateNewQueueItems(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("runner: seeding queue items: %w", err)
	}
	rand.Shuffle(len(seeds), func(i, j int) { seeds[i], seeds[j] = seeds[j], seeds[i] })
	for _, s := range seeds {
		state.Unresolved[s.ID] = s
	}

	if err := store.WriteState(r.cfg.DataDirectory, runDir, state); err != nil {
		return "", nil, fmt.Errorf("runner: persisting seeded state: %w", err)
	}
	return runDir, state, nil
}

// promoteEligibleErrored implements spec.md §4.5 step 2: raising
// retryCount between runs re-admits entries that no longer meet the
// exhausted threshold.
func (r *Runner) promoteEligibleErrored(state *store.ProcessState) {
	for id, entry := range state.Errored {
		if _, already := state.Unresolved[id]; already {
			continue
		}
		if len(entry.Errors) < r.cfg.Queue.RetryCount+1 {
			state.Unresolved[id] = entry.Spec
			delete(state.Errored, id)
		}
	}
}

// startReporter logs the dispatcher's state every ReportPeriodInMs,
// zero disables it. It returns a function that stops the reporter.
func (r *Runner) startReporter(q *taskqueue.Queue) func() {
	if r.cfg.ReportPeriodInMs <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	async.Go(r.logger, "runner-reporter", func() {
		ticker := time.NewTicker(time.Duration(r.cfg.ReportPeriodInMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s := q.GetState()
				r.logger.Info("queue state: size=%d pending=%d paused=%v", s.Size, s.Pending, s.Paused)
				r.cfg.Metrics.SetTasksInFlight(s.Pending)
			}
		}
	})
	return func() { close(done) }
}
