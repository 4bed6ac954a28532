package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/store"
	"github.com/cklxx/scoutqueue/internal/task"
	"github.com/cklxx/scoutqueue/internal/taskqueue"
)

func testQueueConfig() taskqueue.Config {
	return taskqueue.Config{
		Concurrency:    4,
		PerTaskTimeout: time.Second,
		IntervalCap:    100,
		Interval:       time.Millisecond,
		RetryCount:     3,
	}
}

func TestRun_FreshRunSeedsAndResolves(t *testing.T) {
	dataDir := t.TempDir()
	now := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)
	clk := clock.Frozen{At: now}

	cmd := &fakeCommand{seeds: []*task.Spec{
		task.NewSpec("a", nil),
		task.NewSpec("b", nil),
	}}

	r := New(Config{
		DataDirectory:       dataDir,
		RenewPeriodInDays:   7,
		MaxRunTimeInMinutes: 0,
		ReportPeriodInMs:    0,
		Queue:               testQueueConfig(),
	}, cmd, nil, clk, &sequentialIDs{}, quietLogger{})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.State.Resolved, 2)
	assert.Empty(t, result.State.Unresolved)
	assert.True(t, result.State.IsComplete())

	persisted, err := store.ReadState(dataDir, result.RunDir)
	require.NoError(t, err)
	assert.Len(t, persisted.Resolved, 2)
}

func TestRun_NoWorkWhenRenewPeriodNotElapsed(t *testing.T) {
	dataDir := t.TempDir()
	start := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	runDirName := clock.RunDirTimestamp(start)
	_, err := store.CreateRunDir(dataDir, runDirName)
	require.NoError(t, err)

	state := store.NewProcessState(start)
	completion := start.Add(time.Hour)
	state.MarkComplete(completion)
	require.NoError(t, store.WriteState(dataDir, runDirName, state))

	now := completion.Add(24 * time.Hour) // 1 day later, renew period is 7
	r := New(Config{
		DataDirectory:     dataDir,
		RenewPeriodInDays: 7,
		Queue:             testQueueConfig(),
	}, &fakeCommand{}, nil, clock.Frozen{At: now}, &sequentialIDs{}, quietLogger{})

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoWork)
}

func TestRun_RenewsAfterPeriodElapses(t *testing.T) {
	dataDir := t.TempDir()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	runDirName := clock.RunDirTimestamp(start)
	_, err := store.CreateRunDir(dataDir, runDirName)
	require.NoError(t, err)

	state := store.NewProcessState(start)
	completion := start.Add(time.Hour)
	state.MarkComplete(completion)
	require.NoError(t, store.WriteState(dataDir, runDirName, state))

	now := completion.Add(8 * 24 * time.Hour) // past the 7-day renew period
	cmd := &fakeCommand{seeds: []*task.Spec{task.NewSpec("fresh", nil)}}

	r := New(Config{
		DataDirectory:     dataDir,
		RenewPeriodInDays: 7,
		Queue:             testQueueConfig(),
	}, cmd, nil, clock.Frozen{At: now}, &sequentialIDs{}, quietLogger{})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, runDirName, result.RunDir, "expected a new run directory")
	assert.Len(t, result.State.Resolved, 1)
}

func TestRun_ResumesIncompleteRun(t *testing.T) {
	dataDir := t.TempDir()
	start := time.Date(2026, 7, 28, 0, 0, 0, 0, time.UTC)
	runDirName := clock.RunDirTimestamp(start)
	_, err := store.CreateRunDir(dataDir, runDirName)
	require.NoError(t, err)

	state := store.NewProcessState(start)
	state.Unresolved["pending-1"] = task.NewSpec("pending-1", nil)
	require.NoError(t, store.WriteState(dataDir, runDirName, state))

	cmd := &fakeCommand{}
	r := New(Config{
		DataDirectory:     dataDir,
		RenewPeriodInDays: 7,
		Queue:             testQueueConfig(),
	}, cmd, nil, clock.Frozen{At: start.Add(time.Minute)}, &sequentialIDs{}, quietLogger{})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runDirName, result.RunDir, "expected to resume the existing run directory")
	_, ok := result.State.Resolved["pending-1"]
	assert.True(t, ok, "expected the resumed unresolved task to resolve")
}

func TestRun_PromotesErroredBelowRetryThreshold(t *testing.T) {
	dataDir := t.TempDir()
	start := time.Date(2026, 7, 28, 0, 0, 0, 0, time.UTC)
	runDirName := clock.RunDirTimestamp(start)
	_, err := store.CreateRunDir(dataDir, runDirName)
	require.NoError(t, err)

	state := store.NewProcessState(start)
	state.Errored["flaky"] = &store.ErrorEntry{
		Spec:   task.NewSpec("flaky", nil),
		Debug:  "",
		Errors: []store.ErrorRecord{{Message: "boom", Date: start}},
	}
	require.NoError(t, store.WriteState(dataDir, runDirName, state))

	// RetryCount raised to 3 means one prior failure (errors.length=1) is
	// now below the retryCount+1=4 exhaustion threshold, so it should be
	// promoted back to unresolved and re-attempted.
	cmd := &fakeCommand{}
	cfg := testQueueConfig()
	cfg.RetryCount = 3
	r := New(Config{
		DataDirectory:     dataDir,
		RenewPeriodInDays: 7,
		Queue:             cfg,
	}, cmd, nil, clock.Frozen{At: start.Add(time.Minute)}, &sequentialIDs{}, quietLogger{})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	_, stillErrored := result.State.Errored["flaky"]
	assert.False(t, stillErrored, "expected promoted entry to leave the errored bucket")
	_, resolved := result.State.Resolved["flaky"]
	assert.True(t, resolved, "expected promoted entry to resolve after retry")
}
