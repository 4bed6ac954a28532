package genericsearch

import (
	"context"
	"fmt"

	"github.com/cklxx/scoutqueue/internal/clock"
	"github.com/cklxx/scoutqueue/internal/period"
	"github.com/cklxx/scoutqueue/internal/task"
)

// Config describes the overall crawl range and how finely to
// partition it into the initial task set.
type Config struct {
	// Start, End bound the whole crawl, YYYY-MM-DD.
	Start, End string
	// PartCount is the number of equal partitions the seed set is
	// split into; must be a positive power of two (period.SplitIntoParts).
	PartCount int
	// RateLimitStopPercent is the quota threshold below which a task
	// signals the queue to abort.
	RateLimitStopPercent int
}

// Command is the reference genericsearch Command implementation
// (spec.md §4.4).
type Command struct {
	cfg     Config
	fetcher PageFetcher
	ids     clock.IDGenerator
}

// New builds a Command from its config, transport, and id source.
func New(cfg Config, fetcher PageFetcher, ids clock.IDGenerator) *Command {
	return &Command{cfg: cfg, fetcher: fetcher, ids: ids}
}

// CreateNewQueueItems splits the configured [Start, End] range into
// PartCount equal partitions and returns one seed spec per partition.
func (c *Command) CreateNewQueueItems(ctx context.Context) ([]*task.Spec, error) {
	whole, err := period.Parse(c.cfg.Start, c.cfg.End)
	if err != nil {
		return nil, fmt.Errorf("genericsearch: invalid configured range: %w", err)
	}

	parts, err := period.SplitIntoParts(whole, c.cfg.PartCount)
	if err != nil {
		return nil, fmt.Errorf("genericsearch: partitioning configured range: %w", err)
	}

	specs := make([]*task.Spec, 0, len(parts))
	for _, part := range parts {
		specs = append(specs, task.NewSpec(c.ids.NewID(), map[string]any{
			"start":  part.Start.Format(dateLayout),
			"end":    part.End.Format(dateLayout),
			"cursor": "",
		}))
	}
	return specs, nil
}

// CreateTask builds a SearchTask from any spec, regardless of origin.
func (c *Command) CreateTask(tc *task.Context, spec *task.Spec) (task.Task, error) {
	return NewSearchTask(spec, c.fetcher, c.cfg.RateLimitStopPercent, c.ids), nil
}
