package task

import (
	"context"
	"errors"
	"fmt"

	cqerrors "github.com/cklxx/scoutqueue/internal/errors"
)

// Task is the capability interface a command implements per unit of
// work (spec.md §4.2). The queue only ever calls through this
// interface; it never knows what a concrete task actually does.
type Task interface {
	// ID returns the task's spec id.
	ID() string
	// Spec returns the persisted spec backing this task.
	Spec() *Spec

	// Execute performs the unit of work. It must honor ctx
	// cancellation: once ctx is done, Execute should return promptly
	// with ctx.Err() (or a wrapped form of it).
	Execute(ctx context.Context, tc *Context) (any, error)

	// ShouldAbort is consulted after a successful Execute. Returning
	// true stops the whole queue (e.g. the result reports the
	// server-side quota has dropped below the configured threshold).
	ShouldAbort(tc *Context, result any) bool

	// ShouldAbortAfterError is consulted after a failed Execute, before
	// ShouldRecordAsError. Returning true stops the whole queue (e.g.
	// a hard, unrecoverable rate limit).
	ShouldAbortAfterError(tc *Context, err error) bool

	// ShouldRecordAsError decides whether a failed Execute should count
	// toward the retry/narrow/archive policy. Returning false treats
	// the error as if Execute had partially succeeded (see
	// ExtractOutputFromError).
	ShouldRecordAsError(tc *Context, err error) bool

	// ExtractOutputFromError pulls whatever partial result is available
	// out of a "not really an error" Execute failure, so it can be
	// passed to SaveOutput/NextTask as if it had come from a successful
	// Execute.
	ExtractOutputFromError(tc *Context, err error) (any, error)

	// GetErrorMessage renders err for persistence into the errored
	// bucket.
	GetErrorMessage(tc *Context, err error) (string, error)

	// NextTask returns a follow-up task to enqueue after a successful
	// Execute (pagination), or (nil, nil) if there is none.
	NextTask(tc *Context, result any) (Task, error)

	// NarrowedDownTasks splits this task into smaller-scope siblings
	// after it has exhausted its retries, or returns (nil, nil) if it
	// cannot be narrowed further (the task then stays in errored).
	NarrowedDownTasks(tc *Context) ([]Task, error)

	// SaveOutput records zero or more result records from a successful
	// (or error-extracted) Execute into tc.Output.
	SaveOutput(tc *Context, result any) error

	// GetDebugInstructions returns a human-readable hint for
	// reproducing/investigating this task, persisted alongside errored
	// entries.
	GetDebugInstructions(tc *Context) string

	SetParentID(id string)
	SetOriginatingTaskID(id string)
}

// Base is an embeddable struct providing default implementations for
// every optional hook, so a minimal task only overrides what it needs
// to (SPEC_FULL.md §7). Embedders must set TaskSpec before the queue
// touches the task.
type Base struct {
	TaskSpec *Spec
}

// ID returns the backing spec's id.
func (b *Base) ID() string {
	return b.TaskSpec.ID
}

// Spec returns the backing spec.
func (b *Base) Spec() *Spec {
	return b.TaskSpec
}

// SetParentID records that this task was produced by narrowing down a
// parent task.
func (b *Base) SetParentID(id string) {
	b.TaskSpec.ParentID = &id
}

// SetOriginatingTaskID records that this task was produced by
// pagination or a requeue clone of an earlier task.
func (b *Base) SetOriginatingTaskID(id string) {
	b.TaskSpec.OriginatingTaskID = &id
}

// ShouldAbort defaults to true: a task that doesn't report remaining
// quota is treated as if the budget were already exhausted, the
// conservative reading of spec.md's rate-limit guidance. Commands that
// track quota should override this.
func (b *Base) ShouldAbort(tc *Context, result any) bool {
	return true
}

// ShouldAbortAfterError defaults to false: most errors are task-scoped,
// not queue-fatal. Override for hard rate limits and similar.
func (b *Base) ShouldAbortAfterError(tc *Context, err error) bool {
	return false
}

// ShouldRecordAsError defaults to true unless err carries partial
// response data, in which case the error is treated as a degenerate
// success instead.
func (b *Base) ShouldRecordAsError(tc *Context, err error) bool {
	return !cqerrors.IsPartialResponse(err)
}

// ExtractOutputFromError pulls the partial data out of a
// PartialResponseError. Called only when ShouldRecordAsError has
// returned false; any other error reaching here is a programmer error.
func (b *Base) ExtractOutputFromError(tc *Context, err error) (any, error) {
	var pr *cqerrors.PartialResponseError
	if errors.As(err, &pr) && pr.HasPartialData() {
		return pr.Data, nil
	}
	return nil, fmt.Errorf("extractOutputFromError called without partial response data: %w", err)
}

// GetErrorMessage renders err.Error(), refusing to run on a secondary
// rate limit error: the queue should have aborted before reaching here,
// and silently recording a rate-limit message as a plain task error
// would hide the real cause.
func (b *Base) GetErrorMessage(tc *Context, err error) (string, error) {
	if cqerrors.IsSecondaryRateLimit(err) {
		return "", fmt.Errorf("getErrorMessage invoked on secondary rate limit error, queue should have aborted: %w", err)
	}
	return err.Error(), nil
}

// NextTask defaults to no follow-up.
func (b *Base) NextTask(tc *Context, result any) (Task, error) {
	return nil, nil
}

// NarrowedDownTasks defaults to "cannot narrow further"; the task
// queue then leaves the entry in errored.
func (b *Base) NarrowedDownTasks(tc *Context) ([]Task, error) {
	return nil, nil
}

// SaveOutput is a no-op by default; commands that produce output
// records must override it.
func (b *Base) SaveOutput(tc *Context, result any) error {
	return nil
}

// GetDebugInstructions returns an empty string by default.
func (b *Base) GetDebugInstructions(tc *Context) string {
	return ""
}
