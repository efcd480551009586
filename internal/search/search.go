// Package search provides the web search capability used for resource discovery.
package search

import (
	"context"
	"fmt"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a single web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]Result, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}

// ProviderError is returned when the search provider fails.
type ProviderError struct {
	Query   string
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search provider error for %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("search provider error for %q: %s", e.Query, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
