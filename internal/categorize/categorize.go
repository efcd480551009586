// Package categorize assigns discovered candidates to exactly one category
// and normalizes them into canonical resource records.
package categorize

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/jonathan/resource-curator/internal/types"
)

// durationPattern matches durations such as "12 min read" or "1.5 hours".
var durationPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?)\b`)

// maxParsedMinutes bounds durations read from snippets; larger values use the type default.
const maxParsedMinutes = math.MaxInt32

// Categorize tags and normalizes every candidate, preserving order. It is a
// pure function: nothing is dropped and equal input gives equal output.
func Categorize(candidates []types.CandidateResource) []types.TaggedResource {
	out := make([]types.TaggedResource, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, One(c))
	}
	return out
}

// One categorizes a single candidate.
func One(c types.CandidateResource) types.TaggedResource {
	domain := Domain(c.URL)
	text := tokenize(c.Title + " " + c.Snippet)
	rule, hasDomainRule := matchDomain(domain)

	resourceType := types.ResourceOther
	if hasDomainRule {
		resourceType = rule.Type
	} else if t, ok := keywordType(text); ok {
		resourceType = t
	}

	return types.TaggedResource{
		Category: category(c.SourceQuery, rule, hasDomainRule, text),
		Resource: types.CategorizedResource{
			Title:                title(c, domain),
			URL:                  c.URL,
			Description:          description(c, domain),
			ResourceType:         resourceType,
			Difficulty:           difficulty(text),
			EstimatedTimeMinutes: estimateMinutes(c.Snippet, resourceType),
			Tags:                 Tags(c.SourceQuery.Text),
		},
	}
}

// category applies provenance, then the domain table, then keywords, then the default.
func category(q types.SearchQuery, rule domainRule, hasDomainRule bool, text []string) types.CategoryTag {
	if q.OriginCategory.IsSpecific() {
		return q.OriginCategory
	}
	if hasDomainRule && rule.Category != "" {
		return rule.Category
	}
	for _, kr := range keywordRules {
		if kr.Category != "" && containsAny(text, kr.Keywords) {
			return kr.Category
		}
	}
	return types.CategoryGeneral
}

func keywordType(text []string) (types.ResourceType, bool) {
	for _, kr := range keywordRules {
		if kr.Type != "" && containsAny(text, kr.Keywords) {
			return kr.Type, true
		}
	}
	return "", false
}

func difficulty(text []string) types.Difficulty {
	for _, dr := range difficultyRules {
		if containsAny(text, dr.Keywords) {
			return dr.Difficulty
		}
	}
	return types.DifficultyUnknown
}

func matchDomain(domain string) (domainRule, bool) {
	if domain == "" {
		return domainRule{}, false
	}
	for _, rule := range domainRules {
		for _, d := range rule.Domains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return rule, true
			}
		}
	}
	return domainRule{}, false
}

// estimateMinutes parses a duration from the snippet, else uses the type default.
func estimateMinutes(snippet string, t types.ResourceType) int {
	if m := durationPattern.FindStringSubmatch(snippet); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil && value > 0 {
			unit := strings.ToLower(m[2])
			if strings.HasPrefix(unit, "h") {
				value *= 60
			}
			if rounded := math.Round(value); rounded <= maxParsedMinutes {
				return int(rounded)
			}
		}
	}
	if minutes, ok := defaultMinutes[t]; ok {
		return minutes
	}
	return defaultMinutes[types.ResourceOther]
}

func title(c types.CandidateResource, domain string) string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return subject(c) + " - " + orUnknown(domain)
}

func description(c types.CandidateResource, domain string) string {
	if s := strings.TrimSpace(c.Snippet); s != "" {
		return s
	}
	return "Learning resource about " + subject(c) + " from " + orUnknown(domain)
}

func subject(c types.CandidateResource) string {
	if q := strings.TrimSpace(c.SourceQuery.Text); q != "" {
		return q
	}
	return "software engineering"
}

func orUnknown(domain string) string {
	if domain == "" {
		return "unknown source"
	}
	return domain
}

// Domain returns the lowercased host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Tags returns the distinct lowercase non-stopword tokens of a query, sorted.
func Tags(query string) []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, tok := range tokenize(query) {
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tags = append(tags, tok)
	}
	sort.Strings(tags)
	return tags
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// containsAny reports whether any keyword occurs as a whole-word phrase in tokens.
func containsAny(tokens []string, keywords []string) bool {
	for _, kw := range keywords {
		phrase := tokenize(kw)
		if len(phrase) == 0 || len(phrase) > len(tokens) {
			continue
		}
		for i := 0; i+len(phrase) <= len(tokens); i++ {
			match := true
			for j := range phrase {
				if tokens[i+j] != phrase[j] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}
