package genericsearch

import (
	"context"
	"fmt"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/period"
	"github.com/cklxx/scoutqueue/internal/task"
)

const dateLayout = "2006-01-02"

// SearchTask covers one date-range partition, optionally resuming at a
// pagination cursor. It implements task.Task on top of task.Base,
// overriding every hook the search/pagination/narrowing policy needs.
type SearchTask struct {
	task.Base

	fetcher     PageFetcher
	ids         clock.IDGenerator
	ratePercent int
}

// NewSearchTask wraps spec as a SearchTask. spec must carry "start",
// "end" (YYYY-MM-DD strings) and "cursor" (possibly empty) payload
// fields.
func NewSearchTask(spec *task.Spec, fetcher PageFetcher, ratePercent int, ids clock.IDGenerator) *SearchTask {
	return &SearchTask{
		Base:        task.Base{TaskSpec: spec},
		fetcher:     fetcher,
		ids:         ids,
		ratePercent: ratePercent,
	}
}

func (t *SearchTask) period() (period.Period, error) {
	start, _ := t.Spec().Payload["start"].(string)
	end, _ := t.Spec().Payload["end"].(string)
	return period.Parse(start, end)
}

func (t *SearchTask) cursor() string {
	cursor, _ := t.Spec().Payload["cursor"].(string)
	return cursor
}

// Execute fetches one page for this task's date-range partition,
// starting from its cursor.
func (t *SearchTask) Execute(ctx context.Context, tc *task.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := t.period()
	if err != nil {
		return nil, fmt.Errorf("genericsearch: invalid date range on task %s: %w", t.ID(), err)
	}

	return t.fetcher.FetchPage(ctx, SearchQuery{Start: p.Start, End: p.End, Cursor: t.cursor()})
}

// ShouldAbort stops the queue once remaining quota drops below the
// configured threshold, or is missing entirely.
func (t *SearchTask) ShouldAbort(tc *task.Context, result any) bool {
	pr, ok := result.(*PageResult)
	if !ok || pr == nil {
		return true
	}
	return pr.RateLimit.BelowThreshold(t.ratePercent)
}

// NextTask returns the next-page follow-up when the result reports
// more pages remain.
func (t *SearchTask) NextTask(tc *task.Context, result any) (task.Task, error) {
	pr, ok := result.(*PageResult)
	if !ok || pr == nil || !pr.HasNextPage {
		return nil, nil
	}

	next := t.Spec().Clone(t.ids.NewID())
	next.Payload["start"] = t.Spec().Payload["start"]
	next.Payload["end"] = t.Spec().Payload["end"]
	next.Payload["cursor"] = pr.NextCursor
	return NewSearchTask(next, t.fetcher, t.ratePercent, t.ids), nil
}

// NarrowedDownTasks splits this task's date range in half, restarting
// each half at an empty cursor. Returns (nil, nil) once the range is
// already a single day, so the queue leaves the task in errored.
func (t *SearchTask) NarrowedDownTasks(tc *task.Context) ([]task.Task, error) {
	p, err := t.period()
	if err != nil {
		return nil, err
	}
	if p.Days() <= 1 {
		return nil, nil
	}

	first, second, err := period.SplitIntoHalves(p)
	if err != nil {
		return nil, err
	}

	build := func(part period.Period) task.Task {
		s := t.Spec().Clone(t.ids.NewID())
		s.Payload["start"] = part.Start.Format(dateLayout)
		s.Payload["end"] = part.End.Format(dateLayout)
		s.Payload["cursor"] = ""
		return NewSearchTask(s, t.fetcher, t.ratePercent, t.ids)
	}

	return []task.Task{build(first), build(second)}, nil
}

// SaveOutput appends every record from a page fetch to the run's
// output buffer.
func (t *SearchTask) SaveOutput(tc *task.Context, result any) error {
	pr, ok := result.(*PageResult)
	if !ok || pr == nil {
		return nil
	}
	for _, rec := range pr.Records {
		tc.Output.Append(t.ID(), rec)
	}
	return nil
}

// GetDebugInstructions renders enough of the task's scope to
// reproduce the call by hand.
func (t *SearchTask) GetDebugInstructions(tc *task.Context) string {
	p, err := t.period()
	if err != nil {
		return fmt.Sprintf("task %s: invalid date range", t.ID())
	}
	return fmt.Sprintf("range %s..%s cursor=%q", p.Start.Format(dateLayout), p.End.Format(dateLayout), t.cursor())
}

var _ task.Task = (*SearchTask)(nil)
