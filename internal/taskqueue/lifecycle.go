package taskqueue

import (
	"context"

	cqerrors "github.com/cklxx/scoutqueue/internal/errors"
	"github.com/cklxx/scoutqueue/internal/store"
	"github.com/cklxx/scoutqueue/internal/task"
	"github.com/cklxx/scoutqueue/internal/tracing"
)

// runOne executes a single task and routes its outcome through the
// per-task lifecycle state machine (spec.md §4.3).
func (q *Queue) runOne(t task.Task) {
	if q.ctx.Err() != nil {
		return
	}

	taskCtx := q.ctx
	var cancelTimeout context.CancelFunc
	if q.cfg.PerTaskTimeout > 0 {
		taskCtx, cancelTimeout = context.WithTimeout(q.ctx, q.cfg.PerTaskTimeout)
		defer cancelTimeout()
	}

	taskCtx, endSpan := tracing.StartTask(taskCtx, t.ID())
	result, err := t.Execute(taskCtx, q.tc)
	endSpan(err)
	if err != nil {
		q.handleError(t, err)
		return
	}
	q.handleSuccess(t, result, nil)
}

// handleError implements spec.md §4.3 step 4.
func (q *Queue) handleError(t task.Task, err error) {
	if cqerrors.IsCancellation(err) || q.ctx.Err() != nil {
		// Spec stays in unresolved for a later run to retry; it is not
		// re-dispatched within this run.
		q.metrics.IncTaskOutcome("cancelled")
		return
	}

	if t.ShouldAbortAfterError(q.tc, err) {
		q.Abort(err)
		return
	}

	if t.ShouldRecordAsError(q.tc, err) {
		q.recordError(t, err)
		return
	}

	// Partial response: treat as success with a non-critical error.
	out, extractErr := t.ExtractOutputFromError(q.tc, err)
	if extractErr != nil {
		q.logger.Error("task %s: extractOutputFromError failed on a non-recorded error: %v", t.ID(), extractErr)
		return
	}
	msg, msgErr := t.GetErrorMessage(q.tc, err)
	if msgErr != nil {
		q.logger.Error("task %s: getErrorMessage failed on a partial-response error: %v", t.ID(), msgErr)
		return
	}
	q.handleSuccess(t, out, &msg)
}

// recordError appends to the task's error history and applies the
// retry → narrow-down → archive policy (spec.md §4.3 step 4b, true
// branch).
func (q *Queue) recordError(t task.Task, execErr error) {
	msg, err := t.GetErrorMessage(q.tc, execErr)
	if err != nil {
		q.logger.Error("task %s: getErrorMessage failed: %v", t.ID(), err)
		return
	}

	q.stateMu.Lock()
	entry, exists := q.state.Errored[t.ID()]
	if !exists {
		entry = &store.ErrorEntry{
			Spec:  t.Spec(),
			Debug: t.GetDebugInstructions(q.tc),
		}
		q.state.Errored[t.ID()] = entry
	}
	entry.Errors = append(entry.Errors, store.ErrorRecord{Message: msg, Date: q.clock.Now()})
	delete(q.state.Unresolved, t.ID())
	errorCount := len(entry.Errors)
	q.stateMu.Unlock()

	if errorCount < q.cfg.RetryCount+1 {
		q.metrics.IncTaskOutcome("retried")
		q.Add(t)
		return
	}

	children, narrowErr := t.NarrowedDownTasks(q.tc)
	if narrowErr != nil || len(children) == 0 {
		// Cannot narrow further: leave the entry in errored.
		return
	}

	q.metrics.IncTaskOutcome("narrowed")
	for _, child := range children {
		child.SetParentID(t.ID())
		q.Add(child)
	}

	q.stateMu.Lock()
	if archiving, ok := q.state.Errored[t.ID()]; ok {
		q.state.Archived[t.ID()] = archiving
		delete(q.state.Errored, t.ID())
	}
	q.stateMu.Unlock()
	q.metrics.IncTaskOutcome("archived")
}

// handleSuccess implements spec.md §4.3 step 5. nonCriticalErr is
// non-nil only on the partial-response path.
func (q *Queue) handleSuccess(t task.Task, result any, nonCriticalErr *string) {
	q.stateMu.Lock()
	delete(q.state.Unresolved, t.ID())
	delete(q.state.Errored, t.ID())

	entry := &store.ResolvedEntry{Spec: t.Spec()}
	if nonCriticalErr != nil {
		debug := t.GetDebugInstructions(q.tc)
		entry.NonCriticalError = nonCriticalErr
		entry.Debug = &debug
	}
	q.state.Resolved[t.ID()] = entry
	q.stateMu.Unlock()
	q.metrics.IncTaskOutcome("resolved")

	if err := t.SaveOutput(q.tc, result); err != nil {
		q.logger.Error("task %s: saveOutput failed: %v", t.ID(), err)
	}

	next, err := t.NextTask(q.tc, result)
	if err != nil {
		q.logger.Error("task %s: nextTask failed: %v", t.ID(), err)
	} else if next != nil {
		next.SetOriginatingTaskID(t.ID())
		q.Add(next)
	}

	if t.ShouldAbort(q.tc, result) {
		q.Abort(nil)
	}
}
