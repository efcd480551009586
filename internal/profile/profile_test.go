package profile

import (
	"testing"

	"github.com/jonathan/resource-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FullAnswers(t *testing.T) {
	raw := map[string]any{
		"weak_areas":          "DSA, System Design ,",
		"target_companies":    []any{"Google", "Meta"},
		"tech_stack":          []string{"Go", "Python", "go"},
		"preferred_resources": "Video, Articles",
		"preferred_role":      "Backend Engineer",
		"target_timeline":     "3 months",
		"primary_language":    "Go",
		"familiar_topics":     "HTTP",
		"status":              "student",
		"education":           "BSc",
		"favorite_color":      "blue",
	}

	p := Normalize(raw)

	assert.Equal(t, []string{"DSA", "System Design"}, p.WeakAreas)
	assert.Equal(t, []string{"Google", "Meta"}, p.TargetCompanies)
	assert.Equal(t, []string{"Go", "Python"}, p.TechStack)
	assert.Equal(t, []string{"Video", "Articles"}, p.PreferredResourceTypes)
	assert.Equal(t, "Backend Engineer", p.Role)
	assert.Equal(t, "3 months", p.Timeline)
	assert.Equal(t, "Go", p.PrimaryLanguage)
	assert.Equal(t, []string{"HTTP"}, p.FamiliarTopics)
	assert.Equal(t, "student", p.Status)
	assert.Equal(t, "BSc", p.Education)
}

func TestNormalize_EmptyAndNil(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"nil map":   nil,
		"empty map": {},
		"unknown":   {"shoe_size": 42},
	} {
		t.Run(name, func(t *testing.T) {
			p := Normalize(raw)
			assert.True(t, p.IsEmpty())
			assert.NotNil(t, p.WeakAreas)
			assert.NotNil(t, p.TargetCompanies)
			assert.NotNil(t, p.TechStack)
			assert.NotNil(t, p.PreferredResourceTypes)
			assert.NotNil(t, p.FamiliarTopics)
		})
	}
}

func TestNormalize_MalformedValuesDegrade(t *testing.T) {
	raw := map[string]any{
		"weak_areas":       42,
		"target_companies": map[string]any{"a": "b"},
		"preferred_role":   map[string]any{"x": 1},
		"target_timeline":  nil,
		"primary_language": 3,
	}

	p := Normalize(raw)

	assert.Empty(t, p.WeakAreas)
	assert.NotNil(t, p.WeakAreas)
	assert.Empty(t, p.TargetCompanies)
	assert.Equal(t, "", p.Role)
	assert.Equal(t, "", p.Timeline)
	assert.Equal(t, "3", p.PrimaryLanguage)
}

func TestNormalize_LastSortedKeyWins(t *testing.T) {
	raw := map[string]any{
		"q2_weak_areas": "Graphs",
		"q1_weak_areas": "DSA",
	}

	p := Normalize(raw)
	assert.Equal(t, []string{"Graphs"}, p.WeakAreas)
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := map[string]any{
		"weak_areas":       "DSA",
		"weakness":         "Graphs",
		"tech_stack":       "Go",
		"stack_preference": "Rust",
	}

	first := Normalize(raw)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Normalize(raw))
	}
}

func TestFromAnswers(t *testing.T) {
	answers := []types.OnboardingAnswer{
		{QuestionID: "weak_areas", Answer: "DSA"},
		{QuestionID: "target_companies", Answer: "Google"},
		{QuestionID: "preferred_resources", Answer: "Video"},
		{QuestionID: "weak_areas", Answer: "Graphs, DP"},
		{QuestionID: "", Answer: "no id"},
	}

	p := FromAnswers(answers)

	require.Equal(t, []string{"Graphs", "DP"}, p.WeakAreas)
	assert.Equal(t, []string{"Google"}, p.TargetCompanies)
	assert.Equal(t, []string{"Video"}, p.PreferredResourceTypes)
	assert.Empty(t, p.TechStack)
}

func TestMatchField(t *testing.T) {
	tests := []struct {
		key   string
		want  field
		match bool
	}{
		{"weak_areas", fieldWeakAreas, true},
		{"Target_Companies", fieldTargetCompanies, true},
		{"primary_language", fieldPrimaryLanguage, true},
		{"preferred_role", fieldRole, true},
		{"preferred_resources", fieldPreferredTypes, true},
		{"name", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := matchField(tt.key)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalize_NestedAnswersList(t *testing.T) {
	raw := map[string]any{
		"role": "SRE",
		"answers": []any{
			map[string]any{"question_id": "onboarding_weak_areas", "answer": "Networking"},
			map[string]any{"question_id": "role", "answer": "overridden by the top-level key"},
			map[string]any{"answer": "missing id"},
			"not a record",
		},
	}

	p := Normalize(raw)

	assert.Equal(t, []string{"Networking"}, p.WeakAreas)
	assert.Equal(t, "SRE", p.Role)
}

func TestFromAnswers_LaterAnswerOverridesEarlier(t *testing.T) {
	tests := []struct {
		name    string
		answers []types.OnboardingAnswer
		check   func(t *testing.T, p types.LearningProfile)
	}{
		{
			name: "same question twice",
			answers: []types.OnboardingAnswer{
				{QuestionID: "onboarding_preferred_role", Answer: "Frontend"},
				{QuestionID: "onboarding_preferred_role", Answer: "Backend"},
			},
			check: func(t *testing.T, p types.LearningProfile) { assert.Equal(t, "Backend", p.Role) },
		},
		{
			name: "different questions for one field",
			answers: []types.OnboardingAnswer{
				{QuestionID: "z_weak_areas", Answer: "DSA"},
				{QuestionID: "a_weak_areas", Answer: "System Design"},
			},
			check: func(t *testing.T, p types.LearningProfile) {
				assert.Equal(t, []string{"System Design"}, p.WeakAreas)
			},
		},
		{
			name: "later empty answer clears the field",
			answers: []types.OnboardingAnswer{
				{QuestionID: "target_companies", Answer: "Google"},
				{QuestionID: "target_companies", Answer: ""},
			},
			check: func(t *testing.T, p types.LearningProfile) { assert.Empty(t, p.TargetCompanies) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, FromAnswers(tt.answers))
		})
	}
}
