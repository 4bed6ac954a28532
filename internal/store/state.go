// Package store implements the process-file layout (spec.md §4.1, §6):
// run directories named by timestamp, a single state.json per run
// holding the four task buckets, and append-only line-delimited output
// files.
package store

import (
	"time"

	"github.com/cklxx/scoutqueue/internal/task"
)

// ErrorRecord is one entry in an errored/archived task's history.
type ErrorRecord struct {
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// ResolvedEntry is the resolved bucket's value shape (spec.md §3). A
// non-nil NonCriticalError means the transport call errored but still
// returned a usable partial payload; Debug is only ever set alongside
// NonCriticalError.
type ResolvedEntry struct {
	Spec             *task.Spec `json:"task"`
	NonCriticalError *string    `json:"nonCriticalError,omitempty"`
	Debug            *string    `json:"debug,omitempty"`
}

// ErrorEntry is the errored/archived bucket's value shape: a spec, its
// debug instructions, and the ordered history of failures that have
// befallen it. Errors always has at least one entry once the entry
// exists.
type ErrorEntry struct {
	Spec   *task.Spec    `json:"task"`
	Debug  string        `json:"debug"`
	Errors []ErrorRecord `json:"errors"`
}

// ProcessState is the full per-run document persisted as state.json.
// The document is complete iff CompletionDate is non-nil.
type ProcessState struct {
	StartDate       time.Time  `json:"startDate"`
	CompletionDate  *time.Time `json:"completionDate"`
	CompletionError *string    `json:"completionError"`

	Unresolved map[string]*task.Spec     `json:"unresolved"`
	Resolved   map[string]*ResolvedEntry `json:"resolved"`
	Errored    map[string]*ErrorEntry    `json:"errored"`
	Archived   map[string]*ErrorEntry    `json:"archived"`
}

// NewProcessState builds an empty state document with the given start
// time and initialized (non-nil) bucket maps.
func NewProcessState(start time.Time) *ProcessState {
	return &ProcessState{
		StartDate:  start,
		Unresolved: map[string]*task.Spec{},
		Resolved:   map[string]*ResolvedEntry{},
		Errored:    map[string]*ErrorEntry{},
		Archived:   map[string]*ErrorEntry{},
	}
}

// IsComplete reports whether CompletionDate has been set.
func (s *ProcessState) IsComplete() bool {
	return s.CompletionDate != nil
}

// MarkComplete sets CompletionDate to at, and CompletionError to
// "Errored tasks" iff the errored bucket is non-empty (spec.md §4.5
// step 7), otherwise clears it.
func (s *ProcessState) MarkComplete(at time.Time) {
	completion := at
	s.CompletionDate = &completion
	if len(s.Errored) > 0 {
		msg := "Errored tasks"
		s.CompletionError = &msg
	} else {
		s.CompletionError = nil
	}
}

// TotalTaskCount sums the sizes of all four buckets, the quantity that
// abort must never shrink (spec.md §4.3 "Abort", §8 "Laws").
func (s *ProcessState) TotalTaskCount() int {
	return len(s.Unresolved) + len(s.Resolved) + len(s.Errored) + len(s.Archived)
}
