// Package genericsearch is a reference Command: a date-range,
// cursor-paginated search against a remote API, generalized over the
// actual query/response shapes via PageFetcher (spec.md §1's explicit
// non-goal: "the concrete query strings and response shapes of a
// specific remote API"). A deployment wires in a PageFetcher that
// speaks to its own transport (GraphQL, REST, ...).
package genericsearch

import (
	"context"
	"time"
)

// SearchQuery is one page request: the date-range partition this task
// owns, and the pagination cursor (empty for the first page).
type SearchQuery struct {
	Start  time.Time
	End    time.Time
	Cursor string
}

// RateLimitStatus is the remote's reported quota, generalized across
// any transport that reports a limit/remaining/reset triple (GitHub's
// GraphQL rate limit object included).
type RateLimitStatus struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// BelowThreshold reports whether remaining quota has dropped below
// pct percent of the limit, or whether quota information is missing
// entirely - both cases the task contract treats as "stop the queue"
// (spec.md §4.2, §9).
func (r RateLimitStatus) BelowThreshold(pct int) bool {
	if r.Limit <= 0 {
		return true
	}
	return r.Remaining < r.Limit*pct/100
}

// PageResult is one successful page fetch.
type PageResult struct {
	Records     []any
	HasNextPage bool
	NextCursor  string
	RateLimit   RateLimitStatus
}

// PageFetcher is the transport seam a deployment implements; it is the
// only piece of this package that ever talks to the network.
type PageFetcher interface {
	FetchPage(ctx context.Context, query SearchQuery) (*PageResult, error)
}
