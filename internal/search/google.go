package search

import (
	"context"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// MaxResultsPerQuery is the provider's upper bound for one request.
const MaxResultsPerQuery = 10

// GoogleSearcher searches with the Google Programmable Search JSON API.
type GoogleSearcher struct {
	svc *customsearch.Service
	cx  string
	num int64
}

// GoogleConfig configures a GoogleSearcher.
type GoogleConfig struct {
	APIKey          string
	EngineID        string
	ResultsPerQuery int
	// Endpoint overrides the API base URL.
	Endpoint string
}

// NewGoogleSearcher creates a GoogleSearcher.
func NewGoogleSearcher(ctx context.Context, cfg GoogleConfig) (*GoogleSearcher, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, &ProviderError{Message: "API key and search engine id are required"}
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, &ProviderError{Message: "failed to create customsearch service", Cause: err}
	}

	num := int64(cfg.ResultsPerQuery)
	if num <= 0 {
		num = 3
	}
	if num > MaxResultsPerQuery {
		num = MaxResultsPerQuery
	}

	return &GoogleSearcher{
		svc: svc,
		cx:  cfg.EngineID,
		num: num,
	}, nil
}

// Search runs one query and returns its hits with snippets flattened to text.
// Callers bound the call through ctx.
func (g *GoogleSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(g.num).Context(ctx).Do()
	if err != nil {
		return nil, &ProviderError{Query: query, Message: "search failed", Cause: err}
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		title := item.Title
		if title == "" {
			title = TextFromHTML(item.HtmlTitle)
		}
		snippet := item.Snippet
		if item.HtmlSnippet != "" {
			snippet = TextFromHTML(item.HtmlSnippet)
		}
		results = append(results, Result{
			Title:   cleanWhitespace(title),
			URL:     item.Link,
			Snippet: cleanWhitespace(snippet),
		})
	}
	return results, nil
}
