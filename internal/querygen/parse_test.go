package querygen

import (
	"testing"

	"github.com/jonathan/resource-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_Shapes(t *testing.T) {
	profile := types.NewLearningProfile()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"fenced json", "```json\n[\"a b\", \"c d\"]\n```", []string{"a b", "c d"}},
		{"preamble json", "Sure! Here you go: [\"a b\"]", []string{"a b"}},
		{"bulleted lines", "* first query\n• second query\n(3) third query", []string{"first query", "second query", "third query"}},
		{"quoted lines", "\"quoted query\"\n'single quoted'", []string{"quoted query", "single quoted"}},
		{"objects skip blank", `[{"query": "  "}, {"query": "real one"}]`, []string{"real one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := ParseResponse(tt.input, profile, 15)
			require.NoError(t, err)
			got := make([]string, len(queries))
			for i, q := range queries {
				got[i] = q.Text
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_DropsOnlyBadEntries(t *testing.T) {
	profile := types.NewLearningProfile()

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", `["DSA tutorial for beginners", "", "Google interview preparation"]`},
		{"number", `["DSA tutorial for beginners", 42, "Google interview preparation"]`},
		{"object without query", `["DSA tutorial for beginners", {"category": "general_learning"}, "Google interview preparation"]`},
		{"wrapped", `{"queries": ["DSA tutorial for beginners", null, {"query": "Google interview preparation"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries, err := ParseResponse(tt.input, profile, 15)
			require.NoError(t, err)
			require.Len(t, queries, 2)
			assert.Equal(t, "DSA tutorial for beginners", queries[0].Text)
			assert.Equal(t, "Google interview preparation", queries[1].Text)
		})
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	_, err := ParseResponse(`[42, true]`, types.NewLearningProfile(), 15)
	assert.ErrorIs(t, err, ErrNoQueries)

	_, err = ParseResponse(`{"results": ["x"]}`, types.NewLearningProfile(), 15)
	assert.Error(t, err)

	_, err = ParseResponse("", types.NewLearningProfile(), 15)
	assert.ErrorIs(t, err, ErrNoQueries)
}

func TestInferOrigin(t *testing.T) {
	p := types.NewLearningProfile()
	p.WeakAreas = []string{"System Design"}
	p.TargetCompanies = []string{"Google"}
	p.TechStack = []string{"Go", "C++"}
	p.Role = "SRE"

	tests := []struct {
		text string
		want types.CategoryTag
	}{
		{"system design primer", types.CategoryWeakAreas},
		{"Google interview preparation", types.CategoryInterviewPrep},
		{"modern C++ tutorial", types.CategoryTechTutorials},
		{"SRE career path", types.CategorySkillDevelopment},
		{"Go system design at Google", ""},
		{"how to learn cooking", ""},
		{"golang concurrency", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, InferOrigin(tt.text, p))
		})
	}
}

func TestContainsPhrase(t *testing.T) {
	tokens := tokenize("Learn System Design, fast")
	assert.True(t, containsPhrase(tokens, tokenize("system design")))
	assert.False(t, containsPhrase(tokens, tokenize("design system")))
	assert.False(t, containsPhrase(tokens, nil))
}
