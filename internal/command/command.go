// Package command defines the external-collaborator shape a concrete
// search strategy implements (spec.md §4.4): seeding the initial task
// set, and turning any spec - fresh, resumed, paginated, narrowed, or
// requeued - into a task.Task.
package command

import (
	"context"

	"github.com/cklxx/scoutqueue/internal/task"
)

// Command is the user-supplied strategy the runner drives. The core
// never inspects what a Command actually searches for; it only calls
// these two operations.
type Command interface {
	// CreateNewQueueItems produces the seed spec set when a fresh run
	// directory is opened.
	CreateNewQueueItems(ctx context.Context) ([]*task.Spec, error)

	// CreateTask builds a task.Task from any spec, regardless of its
	// origin (seed, resumed-from-disk, pagination follow-up, narrowed
	// child, or requeue clone).
	CreateTask(tc *task.Context, spec *task.Spec) (task.Task, error)
}
