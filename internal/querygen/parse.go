package querygen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/resource-curator/internal/llm"
	"github.com/jonathan/resource-curator/internal/schemas"
	"github.com/jonathan/resource-curator/internal/types"
)

// ErrNoQueries is returned when a response contains no usable query.
var ErrNoQueries = errors.New("response contained no usable queries")

// listMarker matches leading bullets and numbering such as "1.", "2)", "-", "*".
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)]|\(\d+\))\s*`)

type rawQuery struct {
	Text     string
	Category string
}

// ParseResponse extracts queries from a language model response. JSON
// responses must match the query response envelope; anything else is read one
// query per line. Entries that are empty, duplicated or of an unknown shape are
// dropped individually and the result is truncated to maxQueries.
func ParseResponse(text string, profile types.LearningProfile, maxQueries int) ([]types.SearchQuery, error) {
	var items []rawQuery

	cleaned := llm.CleanJSONBlock(text)
	if json.Valid([]byte(cleaned)) {
		if err := schemas.Validate(schemas.QueryResponseSchema, cleaned); err != nil {
			return nil, err
		}
		parsed, err := decodeJSON(cleaned)
		if err != nil {
			return nil, err
		}
		items = parsed
	} else {
		items = parseLines(llm.StripCodeFence(text))
	}

	queries := finalize(items, profile, maxQueries)
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	return queries, nil
}

func decodeJSON(content string) ([]rawQuery, error) {
	var list []json.RawMessage
	if strings.HasPrefix(strings.TrimSpace(content), "{") {
		var wrapper struct {
			Queries []json.RawMessage `json:"queries"`
		}
		if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
			return nil, err
		}
		list = wrapper.Queries
	} else if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, err
	}

	items := make([]rawQuery, 0, len(list))
	for _, entry := range list {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			items = append(items, rawQuery{Text: s})
			continue
		}
		var obj struct {
			Query    string `json:"query"`
			Category string `json:"category"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil {
			items = append(items, rawQuery{Text: obj.Query, Category: obj.Category})
		}
	}
	return items, nil
}

func parseLines(text string) []rawQuery {
	var items []rawQuery
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		// Skip preamble lines such as "Here are your queries:"
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		items = append(items, rawQuery{Text: line})
	}
	return items
}

func finalize(items []rawQuery, profile types.LearningProfile, maxQueries int) []types.SearchQuery {
	out := make([]types.SearchQuery, 0, min(len(items), maxQueries))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if len(out) >= maxQueries {
			break
		}
		text := strings.Join(strings.Fields(item.Text), " ")
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true

		origin, ok := types.ParseCategoryTag(strings.ToLower(strings.TrimSpace(item.Category)))
		if !ok {
			origin = InferOrigin(text, profile)
		}
		out = append(out, types.SearchQuery{Text: text, OriginCategory: origin})
	}
	return out
}

// InferOrigin returns the single category whose profile facet the query
// mentions. It returns "" when no facet or facets of several categories match.
func InferOrigin(text string, profile types.LearningProfile) types.CategoryTag {
	tokens := tokenize(text)

	matched := make(map[types.CategoryTag]bool)
	check := func(category types.CategoryTag, facets ...string) {
		for _, facet := range facets {
			if containsPhrase(tokens, tokenize(facet)) {
				matched[category] = true
				return
			}
		}
	}
	check(types.CategoryWeakAreas, profile.WeakAreas...)
	check(types.CategoryInterviewPrep, profile.TargetCompanies...)
	check(types.CategoryTechTutorials, profile.TechStack...)
	check(types.CategorySkillDevelopment, profile.Role)

	if len(matched) != 1 {
		return ""
	}
	for category := range matched {
		return category
	}
	return ""
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// containsPhrase reports whether phrase occurs as a contiguous token run in tokens.
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
