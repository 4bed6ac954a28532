// Package taskqueue is the scheduler core (spec.md §4.3): bounded
// concurrency, interval-capped admission, per-task timeouts, one
// process-wide cancellation signal, and the retry → narrow-down →
// archive recovery policy driving the four task buckets.
package taskqueue

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cklxx/scoutqueue/internal/async"
	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/logging"
	"github.com/cklxx/scoutqueue/internal/metrics"
	"github.com/cklxx/scoutqueue/internal/store"
	"github.com/cklxx/scoutqueue/internal/task"
)

// State is the dispatcher snapshot returned by GetState (spec.md
// §4.3): Size is work admitted but not yet started, Pending is work
// currently executing, Paused reports whether the queue has aborted.
type State struct {
	Size    int
	Pending int
	Paused  bool
}

// Queue is the scheduler. It owns a *store.ProcessState's bucket maps
// as the single source of truth and mutates them only from its
// dispatcher reaction path (spec.md §5).
type Queue struct {
	cfg     Config
	state   *store.ProcessState
	tc      *task.Context
	clock   clock.Clock
	logger  logging.Logger
	metrics *metrics.Registry

	mu       sync.Mutex
	stateMu  sync.Mutex
	aborted  bool
	abortErr error
	inFlight int

	pending *pendingQueue
	limiter *rate.Limiter
	group   errgroup.Group

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// New constructs a Queue and immediately starts its dispatcher
// goroutine. parent governs the queue's lifetime from the outside
// (cancelling it cancels every in-flight task); state is the run's mutable
// bucket document, mutated in place as tasks resolve. reg may be nil,
// in which case every outcome recorded by the dispatcher is a no-op.
func New(parent context.Context, cfg Config, state *store.ProcessState, tc *task.Context, clk clock.Clock, logger logging.Logger, reg *metrics.Registry) *Queue {
	ctx, cancel := context.WithCancelCause(parent)

	q := &Queue{
		cfg:     cfg,
		state:   state,
		tc:      tc,
		clock:   clk,
		logger:  logger,
		metrics: reg,
		pending: newPendingQueue(),
		limiter: rate.NewLimiter(rate.Every(cfg.Interval/time.Duration(maxInt(cfg.IntervalCap, 1))), maxInt(cfg.IntervalCap, 1)),
		ctx:     ctx,
		cancel:  cancel,
	}
	q.group.SetLimit(maxInt(cfg.Concurrency, 1))

	async.Go(logger, "taskqueue-dispatcher", q.dispatchLoop)
	return q
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Add is fire-and-forget (spec.md §4.3): the spec is recorded into
// unresolved synchronously; dispatch happens asynchronously unless the
// queue has already aborted, in which case the spec is recorded but
// never submitted.
func (q *Queue) Add(t task.Task) {
	q.stateMu.Lock()
	q.state.Unresolved[t.ID()] = t.Spec()
	q.stateMu.Unlock()

	q.mu.Lock()
	aborted := q.aborted
	q.mu.Unlock()
	if aborted {
		return
	}
	q.pending.push(t)
}

// Abort sets the process-wide cancellation signal, discards whatever
// is still waiting in the dispatcher's admission queue, and stops
// admitting further work. cause may be nil for a routine shutdown
// (e.g. a task's ShouldAbort reporting exhausted quota).
func (q *Queue) Abort(cause error) {
	q.mu.Lock()
	if q.aborted {
		q.mu.Unlock()
		return
	}
	q.aborted = true
	q.abortErr = cause
	q.mu.Unlock()

	q.pending.clear()
	q.pending.close()
	if cause == nil {
		cause = context.Canceled
	}
	q.cancel(cause)
}

// GetState reports the dispatcher snapshot without mutating anything.
func (q *Queue) GetState() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return State{
		Size:    q.pending.len(),
		Pending: q.inFlight,
		Paused:  q.aborted,
	}
}

// Finish blocks until the dispatcher is idle and unresolved is empty,
// or the queue has aborted. It rechecks after drainGraceWindow before
// trusting an apparently-idle dispatcher, since a task completing on
// one goroutine can still be in the middle of enqueueing a follow-up.
//
// ctx being cancelled does not short-circuit the drain: in-flight
// runOne calls still hold stateMu while mutating the bucket maps a
// caller is about to marshal, so Finish always closes pending and
// waits on the errgroup before returning, aborting the queue first so
// the dispatcher stops admitting new work.
func (q *Queue) Finish(ctx context.Context) error {
	for {
		if q.drained() {
			time.Sleep(drainGraceWindow)
			if q.drained() {
				break
			}
			continue
		}
		select {
		case <-ctx.Done():
			q.Abort(ctx.Err())
		case <-time.After(pollInterval):
		}
	}

	q.pending.close()
	_ = q.group.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.abortErr
}

func (q *Queue) drained() bool {
	q.mu.Lock()
	aborted := q.aborted
	pendingLen := q.pending.len()
	inFlight := q.inFlight
	q.mu.Unlock()

	if aborted {
		return true
	}
	if pendingLen != 0 || inFlight != 0 {
		return false
	}

	q.stateMu.Lock()
	defer q.stateMu.Unlock()
	return len(q.state.Unresolved) == 0
}

// dispatchLoop is the single-reader admission loop: it waits for the
// rate limiter's token before starting each task, then submits it to
// the bounded errgroup (which itself blocks here, not in Add, once
// Concurrency in-flight calls are outstanding).
func (q *Queue) dispatchLoop() {
	for {
		t, ok := q.pending.pop()
		if !ok {
			return
		}
		if q.ctx.Err() != nil {
			return
		}
		if err := q.limiter.Wait(q.ctx); err != nil {
			return
		}

		q.mu.Lock()
		q.inFlight++
		q.mu.Unlock()

		q.group.Go(func() error {
			defer func() {
				q.mu.Lock()
				q.inFlight--
				q.mu.Unlock()
			}()
			defer async.Recover(q.logger, "taskqueue-task")
			q.runOne(t)
			return nil
		})
	}
}
