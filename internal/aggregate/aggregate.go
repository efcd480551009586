// Package aggregate deduplicates categorized resources and assembles bundles.
package aggregate

import (
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/resource-curator/internal/types"
)

// Aggregate builds a bundle from tagged resources. The first occurrence of a
// URL wins across all categories, order within a category is preserved, and
// each category is capped after deduplication. A non-positive cap disables
// capping. All six category keys are always present.
func Aggregate(tagged []types.TaggedResource, perCategoryCap int) *types.ResourceBundle {
	bundle := types.NewResourceBundle()

	seen := make(map[string]bool, len(tagged))
	for _, tr := range tagged {
		key := DedupKey(tr.Resource.URL)
		if seen[key] {
			continue
		}
		seen[key] = true

		category := tr.Category
		if _, ok := types.ParseCategoryTag(string(category)); !ok {
			category = types.CategoryGeneral
		}
		bundle.Resources[category] = append(bundle.Resources[category], tr.Resource)
	}

	if perCategoryCap > 0 {
		for category, list := range bundle.Resources {
			if len(list) > perCategoryCap {
				bundle.Resources[category] = list[:perCategoryCap]
			}
		}
	}

	bundle.TotalResources = bundle.CountResources()
	bundle.GeneratedAt = time.Now().UTC()
	return bundle
}

// DedupKey normalizes a URL for identity comparison: scheme and host are
// lowercased, the fragment is dropped and a trailing slash is trimmed.
// Unparseable URLs compare by their trimmed text.
func DedupKey(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(trimmed, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimSuffix(u.String(), "/")
}
