package taskqueue

import (
	"context"
	"sync"

	"github.com/cklxx/scoutqueue/internal/task"
)

// fakeTask is a scriptable task.Task used by the scenario tests. It
// embeds task.Base but overrides ShouldAbort's default (Base defaults
// to true, "stop after a call that doesn't report quota") with false,
// since every scenario below drives multiple successful calls and
// wants the one actually under test to own when abort fires.
type fakeTask struct {
	task.Base

	mu    sync.Mutex
	calls int

	executeFn                func(ctx context.Context, tc *task.Context, call int) (any, error)
	shouldAbortFn             func(tc *task.Context, result any) bool
	shouldAbortAfterErrorFn   func(tc *task.Context, err error) bool
	shouldRecordAsErrorFn     func(tc *task.Context, err error) bool
	extractOutputFromErrorFn  func(tc *task.Context, err error) (any, error)
	getErrorMessageFn         func(tc *task.Context, err error) (string, error)
	nextTaskFn                func(tc *task.Context, result any) (task.Task, error)
	narrowedDownTasksFn       func(tc *task.Context) ([]task.Task, error)
	saveOutputFn              func(tc *task.Context, result any) error
}

func newFakeTask(id string) *fakeTask {
	return &fakeTask{Base: task.Base{TaskSpec: task.NewSpec(id, nil)}}
}

func (f *fakeTask) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTask) Execute(ctx context.Context, tc *task.Context) (any, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.executeFn != nil {
		return f.executeFn(ctx, tc, call)
	}
	return map[string]any{"ok": true}, nil
}

func (f *fakeTask) ShouldAbort(tc *task.Context, result any) bool {
	if f.shouldAbortFn != nil {
		return f.shouldAbortFn(tc, result)
	}
	return false
}

func (f *fakeTask) ShouldAbortAfterError(tc *task.Context, err error) bool {
	if f.shouldAbortAfterErrorFn != nil {
		return f.shouldAbortAfterErrorFn(tc, err)
	}
	return f.Base.ShouldAbortAfterError(tc, err)
}

func (f *fakeTask) ShouldRecordAsError(tc *task.Context, err error) bool {
	if f.shouldRecordAsErrorFn != nil {
		return f.shouldRecordAsErrorFn(tc, err)
	}
	return f.Base.ShouldRecordAsError(tc, err)
}

func (f *fakeTask) ExtractOutputFromError(tc *task.Context, err error) (any, error) {
	if f.extractOutputFromErrorFn != nil {
		return f.extractOutputFromErrorFn(tc, err)
	}
	return f.Base.ExtractOutputFromError(tc, err)
}

func (f *fakeTask) GetErrorMessage(tc *task.Context, err error) (string, error) {
	if f.getErrorMessageFn != nil {
		return f.getErrorMessageFn(tc, err)
	}
	return f.Base.GetErrorMessage(tc, err)
}

func (f *fakeTask) NextTask(tc *task.Context, result any) (task.Task, error) {
	if f.nextTaskFn != nil {
		return f.nextTaskFn(tc, result)
	}
	return nil, nil
}

func (f *fakeTask) NarrowedDownTasks(tc *task.Context) ([]task.Task, error) {
	if f.narrowedDownTasksFn != nil {
		return f.narrowedDownTasksFn(tc)
	}
	return nil, nil
}

func (f *fakeTask) SaveOutput(tc *task.Context, result any) error {
	if f.saveOutputFn != nil {
		return f.saveOutputFn(tc, result)
	}
	if result == nil {
		return nil
	}
	tc.Output.Append(f.ID(), result)
	return nil
}

var _ task.Task = (*fakeTask)(nil)

type quietLogger struct{}

func (quietLogger) Debug(string, ...interface{}) {}
func (quietLogger) Info(string, ...interface{})  {}
func (quietLogger) Warn(string, ...interface{})  {}
func (quietLogger) Error(string, ...interface{}) {}
