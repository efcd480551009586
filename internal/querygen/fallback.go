package querygen

import (
	"strings"

	"github.com/jonathan/resource-curator/internal/types"
)

// GenericQuery is used when the profile has no facet to build queries from.
const GenericQuery = "beginner software engineering roadmap"

// Fallback instantiates the fixed query templates for every non-empty
// profile facet. It is deterministic and returns at least one query.
func Fallback(profile types.LearningProfile, maxQueries int) []types.SearchQuery {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}

	language := profile.PrimaryLanguage
	if language == "" && len(profile.TechStack) > 0 {
		language = profile.TechStack[0]
	}

	var items []rawQuery
	add := func(category types.CategoryTag, parts ...string) {
		items = append(items, rawQuery{Text: joinNonEmpty(parts...), Category: string(category)})
	}

	for _, area := range profile.WeakAreas {
		add(types.CategoryWeakAreas, area, "tutorial", language)
		add(types.CategoryPracticeProblems, area, "practice problems")
	}
	for _, company := range profile.TargetCompanies {
		add(types.CategoryInterviewPrep, company, profile.Role, "interview preparation")
	}
	for _, tech := range profile.TechStack {
		add(types.CategoryTechTutorials, tech, "best practices tutorial")
	}
	if profile.Role != "" {
		add(types.CategorySkillDevelopment, profile.Role, "skills roadmap")
	}

	queries := finalize(items, profile, maxQueries)
	if len(queries) == 0 {
		queries = []types.SearchQuery{{Text: GenericQuery, OriginCategory: types.CategoryGeneral}}
	}
	return queries
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
