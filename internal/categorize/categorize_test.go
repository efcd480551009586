package categorize

import (
	"math"
	"testing"

	"github.com/jonathan/resource-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(url, title, snippet string, q types.SearchQuery) types.CandidateResource {
	return types.CandidateResource{Title: title, URL: url, Snippet: snippet, SourceQuery: q}
}

func TestOne_Classification(t *testing.T) {
	unset := types.SearchQuery{Text: "some query"}

	tests := []struct {
		name         string
		in           types.CandidateResource
		wantCategory types.CategoryTag
		wantType     types.ResourceType
	}{
		{
			name:         "provenance wins over domain",
			in:           candidate("https://www.youtube.com/watch?v=1", "DSA", "", types.SearchQuery{Text: "DSA tutorial", OriginCategory: types.CategoryWeakAreas}),
			wantCategory: types.CategoryWeakAreas,
			wantType:     types.ResourceVideo,
		},
		{
			name:         "general origin falls through to domain",
			in:           candidate("https://leetcode.com/problems/two-sum/", "Two Sum", "", types.SearchQuery{Text: "x", OriginCategory: types.CategoryGeneral}),
			wantCategory: types.CategoryPracticeProblems,
			wantType:     types.ResourcePractice,
		},
		{
			name:         "video domain",
			in:           candidate("https://youtu.be/abc", "Go in 100 seconds", "", unset),
			wantCategory: types.CategoryTechTutorials,
			wantType:     types.ResourceVideo,
		},
		{
			name:         "video subdomain",
			in:           candidate("https://m.youtube.com/watch?v=1", "Talk", "", unset),
			wantCategory: types.CategoryTechTutorials,
			wantType:     types.ResourceVideo,
		},
		{
			name:         "code hosting",
			in:           candidate("https://github.com/donnemartin/system-design-primer", "System Design Primer", "", unset),
			wantCategory: types.CategorySkillDevelopment,
			wantType:     types.ResourceRepository,
		},
		{
			name:         "course platform",
			in:           candidate("https://www.coursera.org/learn/algorithms-part1", "Algorithms, Part I", "", unset),
			wantCategory: types.CategorySkillDevelopment,
			wantType:     types.ResourceCourse,
		},
		{
			name:         "article domain uses keywords for category",
			in:           candidate("https://www.geeksforgeeks.org/google-interview-questions/", "Google Interview Questions", "", unset),
			wantCategory: types.CategoryInterviewPrep,
			wantType:     types.ResourceArticle,
		},
		{
			name:         "unknown domain interview keyword",
			in:           candidate("https://example.com/story", "How I passed my FAANG onsite", "", unset),
			wantCategory: types.CategoryInterviewPrep,
			wantType:     types.ResourceOther,
		},
		{
			name:         "unknown domain blog post",
			in:           candidate("https://example.com/story", "A blog post on tries", "", unset),
			wantCategory: types.CategoryGeneral,
			wantType:     types.ResourceArticle,
		},
		{
			name:         "unknown domain practice keyword",
			in:           candidate("https://example.org/x", "50 recursion exercises", "", unset),
			wantCategory: types.CategoryPracticeProblems,
			wantType:     types.ResourcePractice,
		},
		{
			name:         "unclassifiable",
			in:           candidate("https://example.net/page", "Untitled", "Lorem ipsum", unset),
			wantCategory: types.CategoryGeneral,
			wantType:     types.ResourceOther,
		},
		{
			name:         "invalid url",
			in:           candidate("::not a url", "", "", types.SearchQuery{}),
			wantCategory: types.CategoryGeneral,
			wantType:     types.ResourceOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := One(tt.in)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantType, got.Resource.ResourceType)
			assert.Equal(t, tt.in.URL, got.Resource.URL)
		})
	}
}

func TestCategorize_Idempotent(t *testing.T) {
	in := []types.CandidateResource{
		candidate("https://www.youtube.com/watch?v=1", "Intro to Graphs", "12 min", types.SearchQuery{Text: "graphs for beginners"}),
		candidate("https://example.com", "", "", types.SearchQuery{}),
		candidate("https://leetcode.com/problems/lru-cache/", "LRU Cache - Medium", "Design a data structure", types.SearchQuery{Text: "lru cache practice", OriginCategory: types.CategoryInterviewPrep}),
	}

	first := Categorize(in)
	second := Categorize(in)

	assert.Equal(t, first, second)
	for _, c := range in {
		assert.Equal(t, Categorize([]types.CandidateResource{c}), Categorize([]types.CandidateResource{c}))
	}
}

func TestCategorize_NeverDrops(t *testing.T) {
	in := []types.CandidateResource{
		candidate("", "", "", types.SearchQuery{}),
		candidate("https://unknown.example", "?", "?", types.SearchQuery{Text: "?"}),
		candidate("mailto:someone@example.com", "", "", types.SearchQuery{}),
	}

	out := Categorize(in)

	require.Len(t, out, len(in))
	for i, r := range out {
		assert.Equal(t, types.CategoryGeneral, r.Category)
		assert.Equal(t, in[i].URL, r.Resource.URL)
		assert.GreaterOrEqual(t, r.Resource.EstimatedTimeMinutes, 0)
		assert.NotNil(t, r.Resource.Tags)
	}
}

func TestCategorize_Empty(t *testing.T) {
	out := Categorize(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		title string
		want  types.Difficulty
	}{
		{"Dynamic Programming for Beginners", types.DifficultyBeginner},
		{"Advanced Go Concurrency Patterns", types.DifficultyAdvanced},
		{"Intermediate SQL", types.DifficultyIntermediate},
		{"Graphs", types.DifficultyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := One(candidate("https://example.com", tt.title, "", types.SearchQuery{}))
			assert.Equal(t, tt.want, got.Resource.Difficulty)
		})
	}
}

func TestEstimateMinutes(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		typ     types.ResourceType
		want    int
	}{
		{"minutes read", "A 12 min read on heaps", types.ResourceArticle, 12},
		{"hours", "Total length 1.5 hours", types.ResourceCourse, 90},
		{"hrs", "3 hrs of content", types.ResourceVideo, 180},
		{"video default", "no duration", types.ResourceVideo, 20},
		{"article default", "", types.ResourceArticle, 10},
		{"course default", "", types.ResourceCourse, 600},
		{"repository default", "", types.ResourceRepository, 60},
		{"practice default", "", types.ResourcePractice, 45},
		{"other default", "", types.ResourceOther, 15},
		{"unknown type", "", types.ResourceType("podcast"), 15},
		{"huge hours", "Total of 99999999999999999999 hours of content", types.ResourceVideo, 20},
		{"huge minutes", "a 3000000000 min read", types.ResourceArticle, 10},
		{"at bound", "2147483647 minutes", types.ResourceOther, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estimateMinutes(tt.snippet, tt.typ))
		})
	}
}

func TestOne_HugeDurationStaysNonNegative(t *testing.T) {
	got := One(types.CandidateResource{
		URL:     "https://example.com/course",
		Snippet: "Total of 99999999999999999999 hours of content",
	})
	assert.GreaterOrEqual(t, got.Resource.EstimatedTimeMinutes, 0)
}

func TestMissingTitleAndDescription(t *testing.T) {
	got := One(candidate("https://www.baeldung.com/java-streams", "", "", types.SearchQuery{Text: "java streams"}))

	assert.Equal(t, "java streams - baeldung.com", got.Resource.Title)
	assert.Equal(t, "Learning resource about java streams from baeldung.com", got.Resource.Description)
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"dsa", "tutorial"}, Tags("DSA tutorial for the"))
	assert.Equal(t, []string{"c++", "interview", "questions"}, Tags("C++ interview questions, interview"))
	assert.Equal(t, []string{}, Tags(""))
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "youtube.com", Domain("https://WWW.YouTube.com/watch?v=1"))
	assert.Equal(t, "dev.to", Domain("http://dev.to/a"))
	assert.Equal(t, "", Domain("not a url"))
}
