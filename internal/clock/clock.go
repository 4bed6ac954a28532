// Package clock supplies the monotonic "now" and unique id generation
// the rest of the module treats as leaf dependencies, so tests can swap
// in deterministic fakes without touching the scheduler logic.
package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts wall-clock time so tests can control "now" without
// sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock, backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Frozen is a test Clock that always returns the same instant.
type Frozen struct {
	At time.Time
}

func (f Frozen) Now() time.Time { return f.At }

// IDGenerator mints opaque unique identifiers for task specs. Run
// directories are named by RunDirTimestamp instead.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator, backed by google/uuid.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// RunDirTimestamp formats t the way run directories are named:
// YYYY-MM-DD-HH-MM-SS, per spec.md §3.
func RunDirTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02-15-04-05")
}

// ParseRunDirTimestamp is the inverse of RunDirTimestamp.
func ParseRunDirTimestamp(name string) (time.Time, error) {
	return time.Parse("2006-01-02-15-04-05", name)
}
