// Package profile turns raw onboarding answers into a normalized learning profile.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resource-curator/internal/types"
)

type field int

const (
	fieldWeakAreas field = iota
	fieldTargetCompanies
	fieldTechStack
	fieldPreferredTypes
	fieldFamiliarTopics
	fieldTimeline
	fieldRole
	fieldPrimaryLanguage
	fieldStatus
	fieldEducation
)

// keyRules maps answer keys to profile fields. A key matches the first rule
// with a marker contained in the lowercased key.
var keyRules = []struct {
	field   field
	markers []string
}{
	{fieldWeakAreas, []string{"weak_area", "weakness", "struggle"}},
	{fieldTargetCompanies, []string{"target_compan", "companies", "company"}},
	{fieldTechStack, []string{"tech_stack", "technologies", "stack"}},
	{fieldPreferredTypes, []string{"preferred_resource", "resource_type", "resources"}},
	{fieldFamiliarTopics, []string{"familiar_topic", "known_topic"}},
	{fieldTimeline, []string{"timeline", "deadline"}},
	{fieldPrimaryLanguage, []string{"primary_language", "language"}},
	{fieldRole, []string{"preferred_role", "target_role", "role"}},
	{fieldStatus, []string{"status"}},
	{fieldEducation, []string{"education", "degree"}},
}

func matchField(key string) (field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, rule := range keyRules {
		for _, marker := range rule.markers {
			if strings.Contains(key, marker) {
				return rule.field, true
			}
		}
	}
	return 0, false
}

// Normalize builds a LearningProfile from raw answers keyed by question id.
// It never fails: unknown keys are ignored and malformed values become empty.
// When several answers map to one field the last one applied wins; see
// orderedAnswers for the order.
func Normalize(raw map[string]any) types.LearningProfile {
	p := types.NewLearningProfile()

	for _, a := range orderedAnswers(raw) {
		f, ok := matchField(a.key)
		if !ok {
			continue
		}

		switch f {
		case fieldWeakAreas:
			p.WeakAreas = toList(a.value)
		case fieldTargetCompanies:
			p.TargetCompanies = toList(a.value)
		case fieldTechStack:
			p.TechStack = toList(a.value)
		case fieldPreferredTypes:
			p.PreferredResourceTypes = toList(a.value)
		case fieldFamiliarTopics:
			p.FamiliarTopics = toList(a.value)
		case fieldTimeline:
			p.Timeline = toScalar(a.value)
		case fieldRole:
			p.Role = toScalar(a.value)
		case fieldPrimaryLanguage:
			p.PrimaryLanguage = toScalar(a.value)
		case fieldStatus:
			p.Status = toScalar(a.value)
		case fieldEducation:
			p.Education = toScalar(a.value)
		}
	}

	return p
}

// FromAnswers normalizes a stored answer submission, applying answers in
// submission order.
func FromAnswers(answers []types.OnboardingAnswer) types.LearningProfile {
	return Normalize(map[string]any{"answers": answers})
}

type answer struct {
	key   string
	value any
}

// orderedAnswers lists the records of an "answers" list of
// {question_id, answer} in list order, followed by the remaining top-level
// keys in sorted order. Top-level keys therefore override nested records.
func orderedAnswers(raw map[string]any) []answer {
	var out []answer

	switch list := raw["answers"].(type) {
	case []types.OnboardingAnswer:
		for _, a := range list {
			if a.QuestionID != "" {
				out = append(out, answer{key: a.QuestionID, value: a.Answer})
			}
		}
	case []any:
		for _, item := range list {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if id, _ := record["question_id"].(string); id != "" {
				out = append(out, answer{key: id, value: record["answer"]})
			}
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		if k != "answers" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, answer{key: k, value: raw[k]})
	}
	return out
}

// toList splits comma-separated strings and flattens slices. Entries are
// trimmed and deduplicated case-insensitively, keeping first-seen order.
func toList(value any) []string {
	var items []string
	switch v := value.(type) {
	case string:
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []any:
		for _, item := range v {
			if s := toScalar(item); s != "" {
				items = append(items, s)
			}
		}
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func toScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(toList(v), ", ")
	case []any:
		return strings.Join(toList(v), ", ")
	case map[string]any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
