package task

import "github.com/cklxx/scoutqueue/internal/logging"

// Context is the bag of collaborators the queue hands to every hook
// call: a command-specific transport handle, the configured rate-limit
// stop threshold, a logger, and the run's shared output buffer. It is
// not safe to retain across tasks; the queue owns its lifetime.
type Context struct {
	// Transport is the command's shared client (HTTP client, API
	// wrapper, DB handle, ...). Opaque to the core; a command type-
	// asserts it back to its concrete type.
	Transport any

	// RateLimitStopPercent is the configured threshold (spec.md §6,
	// --rate-limit-stop-percent) below which a command should treat
	// remaining quota as exhausted and signal ShouldAbort.
	RateLimitStopPercent int

	Logger logging.Logger
	Output *OutputBuffer
}
