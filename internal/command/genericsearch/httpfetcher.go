package genericsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cklxx/scoutqueue/internal/logging"
)

// HTTPFetcherConfig configures HTTPFetcher. Endpoint and AuthToken are
// the only deployment-specific pieces; the wire shape below is this
// repo's own generic contract, not any particular remote API's schema
// (spec.md §1 keeps that out of scope).
type HTTPFetcherConfig struct {
	Endpoint        string
	AuthToken       string
	RecordHTTPCalls bool
	Logger          logging.Logger
}

// httpPageRequest is the body HTTPFetcher POSTs for one page.
type httpPageRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Cursor string `json:"cursor"`
}

// httpPageResponse is the body HTTPFetcher expects back.
type httpPageResponse struct {
	Records     []any  `json:"records"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor"`
	RateLimit   struct {
		Limit     int       `json:"limit"`
		Remaining int       `json:"remaining"`
		ResetAt   time.Time `json:"resetAt"`
	} `json:"rateLimit"`
}

// HTTPFetcher is a transport-agnostic-in-spirit PageFetcher backed by
// plain JSON-over-HTTP: it carries no knowledge of any specific
// remote API's query language or response schema, only this repo's
// own generic page request/response shape.
type HTTPFetcher struct {
	cfg    HTTPFetcherConfig
	client *http.Client
}

// NewHTTPFetcher builds an HTTPFetcher against cfg.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	return &HTTPFetcher{cfg: cfg, client: &http.Client{}}
}

// FetchPage issues one page request and decodes the response.
func (f *HTTPFetcher) FetchPage(ctx context.Context, q SearchQuery) (*PageResult, error) {
	body, err := json.Marshal(httpPageRequest{
		Start:  q.Start.Format(dateLayout),
		End:    q.End.Format(dateLayout),
		Cursor: q.Cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("genericsearch: encoding page request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("genericsearch: building page request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.AuthToken)
	}

	if f.cfg.RecordHTTPCalls && f.cfg.Logger != nil {
		f.cfg.Logger.Debug("fetching page: start=%s end=%s cursor=%q", q.Start.Format(dateLayout), q.End.Format(dateLayout), q.Cursor)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genericsearch: page request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("genericsearch: reading page response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genericsearch: page request returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed httpPageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("genericsearch: decoding page response: %w", err)
	}

	return &PageResult{
		Records:     parsed.Records,
		HasNextPage: parsed.HasNextPage,
		NextCursor:  parsed.NextCursor,
		RateLimit: RateLimitStatus{
			Limit:     parsed.RateLimit.Limit,
			Remaining: parsed.RateLimit.Remaining,
			ResetAt:   parsed.RateLimit.ResetAt,
		},
	}, nil
}

var _ PageFetcher = (*HTTPFetcher)(nil)
