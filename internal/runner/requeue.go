package runner

import (
	"fmt"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/store"
)

// RequeueType selects which bucket the requeue operation (spec.md
// §4.6) draws its candidates from.
type RequeueType string

const (
	RequeueErrored            RequeueType = "errored"
	RequeueNonCriticalErrored RequeueType = "non-critical-errored"
)

// Requeue re-admits a past run's failures into unresolved without
// disturbing the originals, and clears completion so the next execute
// picks the run back up (spec.md §4.6).
func Requeue(dataDir, runDirName string, kind RequeueType, ids clock.IDGenerator) (*store.ProcessState, error) {
	state, err := store.ReadState(dataDir, runDirName)
	if err != nil {
		return nil, fmt.Errorf("runner: reading state for requeue: %w", err)
	}

	var promoted int
	switch kind {
	case RequeueErrored:
		promoted = requeueErrored(state, ids)
	case RequeueNonCriticalErrored:
		promoted = requeueNonCriticalErrored(state, ids)
	default:
		return nil, fmt.Errorf("runner: unknown requeue type %q", kind)
	}

	if promoted > 0 {
		state.CompletionDate = nil
		state.CompletionError = nil
	}

	if err := store.WriteState(dataDir, runDirName, state); err != nil {
		return nil, fmt.Errorf("runner: persisting requeued state: %w", err)
	}
	return state, nil
}

// requeueErrored clones every errored entry's spec under a fresh id,
// tagged with originatingTaskId pointing back at the original, and
// admits the clone into unresolved. The original errored entry is
// left untouched so its error history stays intact.
func requeueErrored(state *store.ProcessState, ids clock.IDGenerator) int {
	count := 0
	for originalID, entry := range state.Errored {
		clone := entry.Spec.Clone(ids.NewID())
		clone.OriginatingTaskID = &originalID
		state.Unresolved[clone.ID] = clone
		count++
	}
	return count
}

// requeueNonCriticalErrored clones every resolved entry that carried a
// non-critical error, admitting the clone into unresolved while
// leaving the original resolved entry in place.
func requeueNonCriticalErrored(state *store.ProcessState, ids clock.IDGenerator) int {
	count := 0
	for originalID, entry := range state.Resolved {
		if entry.NonCriticalError == nil {
			continue
		}
		clone := entry.Spec.Clone(ids.NewID())
		clone.OriginatingTaskID = &originalID
		state.Unresolved[clone.ID] = clone
		count++
	}
	return count
}
