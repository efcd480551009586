package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleSearcher(t *testing.T, handler http.HandlerFunc, resultsPerQuery int) *GoogleSearcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogleSearcher(context.Background(), GoogleConfig{
		APIKey:          "test-key",
		EngineID:        "test-cx",
		ResultsPerQuery: resultsPerQuery,
		Endpoint:        srv.URL + "/",
	})
	require.NoError(t, err)
	return g
}

func TestGoogleSearcher_Search(t *testing.T) {
	var gotQuery, gotCx, gotNum string
	g := newTestGoogleSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCx = r.URL.Query().Get("cx")
		gotNum = r.URL.Query().Get("num")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"title": "DSA Full Course",
					"link": "https://www.youtube.com/watch?v=abc",
					"snippet": "plain snippet",
					"htmlSnippet": "Learn <b>DSA</b> &amp; algorithms"
				},
				{
					"htmlTitle": "<b>Two</b> Sum",
					"link": "https://leetcode.com/problems/two-sum/",
					"snippet": "Given an array of integers"
				}
			]
		}`))
	}, 3)

	results, err := g.Search(context.Background(), "DSA tutorial for beginners")
	require.NoError(t, err)

	assert.Equal(t, "DSA tutorial for beginners", gotQuery)
	assert.Equal(t, "test-cx", gotCx)
	assert.Equal(t, "3", gotNum)

	require.Len(t, results, 2)
	assert.Equal(t, Result{
		Title:   "DSA Full Course",
		URL:     "https://www.youtube.com/watch?v=abc",
		Snippet: "Learn DSA & algorithms",
	}, results[0])
	assert.Equal(t, "Two Sum", results[1].Title)
	assert.Equal(t, "Given an array of integers", results[1].Snippet)
}

func TestGoogleSearcher_NoItems(t *testing.T) {
	g := newTestGoogleSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}, 0)

	results, err := g.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogleSearcher_ProviderError(t *testing.T) {
	g := newTestGoogleSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "quota exceeded"}}`))
	}, 3)

	_, err := g.Search(context.Background(), "Google interview preparation")
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Google interview preparation", perr.Query)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewGoogleSearcher_Validation(t *testing.T) {
	_, err := NewGoogleSearcher(context.Background(), GoogleConfig{APIKey: "k"})
	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestNewGoogleSearcher_ClampsResults(t *testing.T) {
	g, err := NewGoogleSearcher(context.Background(), GoogleConfig{APIKey: "k", EngineID: "cx", ResultsPerQuery: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxResultsPerQuery), g.num)
}
