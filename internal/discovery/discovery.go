// Package discovery runs synthesized queries against the search capability.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/metrics"
	"github.com/jonathan/resource-curator/internal/search"
	"github.com/jonathan/resource-curator/internal/types"
)

// DefaultDelay is the minimum spacing between consecutive search calls.
const DefaultDelay = 500 * time.Millisecond

// Query outcome statuses
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// QueryError records a failed search for one query. It is logged and
// reported, never returned from Discover.
type QueryError struct {
	Index   int
	Query   string
	Message string
	Cause   error
}

func (e *QueryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("query %d (%q): %s: %v", e.Index, e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("query %d (%q): %s", e.Index, e.Query, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// QueryOutcome describes what happened to one query.
type QueryOutcome struct {
	Index   int
	Query   types.SearchQuery
	Status  string
	Results int
	Err     *QueryError
}

// Report summarizes a Discover run.
type Report struct {
	Candidates []types.CandidateResource
	Outcomes   []QueryOutcome
}

// Failed returns the number of queries that produced no candidates.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status != StatusOK {
			n++
		}
	}
	return n
}

// Discoverer executes queries one at a time with a minimum delay between calls.
type Discoverer struct {
	searcher search.Searcher
	log      *logger.Logger
	onQuery  func(QueryOutcome)
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Discoverer) { d.log = l }
}

// WithObserver registers a callback invoked after each query completes.
func WithObserver(fn func(QueryOutcome)) Option {
	return func(d *Discoverer) { d.onQuery = fn }
}

// New creates a Discoverer over searcher.
func New(searcher search.Searcher, opts ...Option) *Discoverer {
	d := &Discoverer{searcher: searcher, log: logger.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover searches every query and returns the candidates in query order.
// A failing query is isolated; if all fail the result is empty, not an error.
func (d *Discoverer) Discover(ctx context.Context, queries []types.SearchQuery, delay time.Duration) []types.CandidateResource {
	return d.Run(ctx, queries, delay).Candidates
}

// Run is Discover with per-query outcomes.
func (d *Discoverer) Run(ctx context.Context, queries []types.SearchQuery, delay time.Duration) Report {
	report := Report{
		Candidates: []types.CandidateResource{},
		Outcomes:   make([]QueryOutcome, 0, len(queries)),
	}

	// One limiter per run keeps pacing per request rather than process-wide.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	for i, q := range queries {
		outcome := QueryOutcome{Index: i, Query: q}

		if err := limiter.Wait(ctx); err != nil {
			outcome.Status = StatusError
			outcome.Err = &QueryError{Index: i, Query: q.Text, Message: "rate limiter wait failed", Cause: err}
		} else {
			candidates, qerr := d.searchOne(ctx, i, q)
			switch {
			case qerr != nil:
				outcome.Status = StatusError
				outcome.Err = qerr
			case len(candidates) == 0:
				outcome.Status = StatusEmpty
			default:
				outcome.Status = StatusOK
				outcome.Results = len(candidates)
				report.Candidates = append(report.Candidates, candidates...)
			}
		}

		metrics.RecordSearch(outcome.Status)
		if outcome.Err != nil {
			d.log.Warn("search query failed", "index", i, "query", q.Text, "error", outcome.Err.Error())
		} else if outcome.Status == StatusEmpty {
			d.log.Info("search query returned no results", "index", i, "query", q.Text)
		}
		report.Outcomes = append(report.Outcomes, outcome)
		if d.onQuery != nil {
			d.onQuery(outcome)
		}
	}

	return report
}

func (d *Discoverer) searchOne(ctx context.Context, index int, q types.SearchQuery) ([]types.CandidateResource, *QueryError) {
	if d.searcher == nil {
		return nil, &QueryError{Index: index, Query: q.Text, Message: "no search capability configured"}
	}

	results, err := d.searcher.Search(ctx, q.Text)
	if err != nil {
		return nil, &QueryError{Index: index, Query: q.Text, Message: "search failed", Cause: err}
	}

	candidates := make([]types.CandidateResource, 0, len(results))
	for _, r := range results {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			continue
		}
		candidates = append(candidates, types.CandidateResource{
			Title:       strings.TrimSpace(r.Title),
			URL:         url,
			Snippet:     strings.TrimSpace(r.Snippet),
			SourceQuery: q,
		})
	}
	return candidates, nil
}
