package runner

import (
	"context"
	"fmt"

	"github.com/cklxx/scoutqueue/internal/task"
)

// sequentialIDs is a deterministic clock.IDGenerator for tests.
type sequentialIDs struct{ next int }

func (s *sequentialIDs) NewID() string {
	s.next++
	return fmt.Sprintf("id-%d", s.next)
}

// fakeTask always succeeds and never asks the queue to abort; Base's
// conservative ShouldAbort=true default would otherwise halt these
// tests after their very first task.
type fakeTask struct {
	task.Base
	executeFn func(ctx context.Context, tc *task.Context) (any, error)
}

func (f *fakeTask) Execute(ctx context.Context, tc *task.Context) (any, error) {
	if f.executeFn != nil {
		return f.executeFn(ctx, tc)
	}
	return map[string]any{"ok": true}, nil
}

func (f *fakeTask) ShouldAbort(tc *task.Context, result any) bool { return false }

var _ task.Task = (*fakeTask)(nil)

// fakeCommand seeds a fixed spec set and wraps every spec it is handed
// back in a fakeTask.
type fakeCommand struct {
	seeds     []*task.Spec
	seedErr   error
	executeFn func(ctx context.Context, tc *task.Context) (any, error)
}

func (c *fakeCommand) CreateNewQueueItems(ctx context.Context) ([]*task.Spec, error) {
	if c.seedErr != nil {
		return nil, c.seedErr
	}
	return c.seeds, nil
}

func (c *fakeCommand) CreateTask(tc *task.Context, spec *task.Spec) (task.Task, error) {
	return &fakeTask{Base: task.Base{TaskSpec: spec}, executeFn: c.executeFn}, nil
}

type quietLogger struct{}

func (quietLogger) Debug(string, ...interface{}) {}
func (quietLogger) Info(string, ...interface{})  {}
func (quietLogger) Warn(string, ...interface{})  {}
func (quietLogger) Error(string, ...interface{}) {}
