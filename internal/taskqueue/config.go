package taskqueue

import "time"

// Config bounds the scheduler's concurrency and pacing (spec.md §4.3).
type Config struct {
	// Concurrency is the maximum number of tasks with an in-flight
	// Execute call at any moment.
	Concurrency int
	// PerTaskTimeout fails a single Execute call (without aborting the
	// queue) if it runs longer than this.
	PerTaskTimeout time.Duration
	// IntervalCap is the maximum number of task starts admitted per
	// rolling Interval window.
	IntervalCap int
	Interval    time.Duration
	// RetryCount is the number of additional attempts after the first
	// failure before a task is narrowed down or left errored.
	RetryCount int
}

// drainGraceWindow is how long Finish waits before trusting an
// apparently-idle dispatcher, to catch a task that enqueues a
// follow-up in the same reaction path that reported idle (spec.md §9,
// open question; see DESIGN.md for the chosen value).
const drainGraceWindow = 50 * time.Millisecond

// pollInterval is how often Finish rechecks drain status while waiting.
const pollInterval = 5 * time.Millisecond
