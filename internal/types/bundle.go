package types

import "time"

// ResourceBundle is the complete categorized resource set persisted for one user.
// It is built fresh per pipeline run and replaces any earlier bundle for the user.
type ResourceBundle struct {
	ID             string                                `json:"id"`
	UserID         string                                `json:"user_id"`
	UserProfile    LearningProfile                       `json:"user_profile"`
	SearchQueries  []string                              `json:"search_queries"`
	TotalResources int                                   `json:"total_resources"`
	Resources      map[CategoryTag][]CategorizedResource `json:"resources"`
	GeneratedAt    time.Time                             `json:"generated_at"`
}

// NewResourceBundle returns a bundle with all six category keys present.
func NewResourceBundle() *ResourceBundle {
	resources := make(map[CategoryTag][]CategorizedResource, len(AllCategories()))
	for _, c := range AllCategories() {
		resources[c] = []CategorizedResource{}
	}
	return &ResourceBundle{
		SearchQueries: []string{},
		Resources:     resources,
	}
}

// CountResources sums the per-category list lengths.
func (b *ResourceBundle) CountResources() int {
	total := 0
	for _, list := range b.Resources {
		total += len(list)
	}
	return total
}

// BundleSummary is the short response returned after a generation run.
type BundleSummary struct {
	BundleID       string         `json:"bundle_id"`
	UserID         string         `json:"user_id"`
	TotalResources int            `json:"total_resources"`
	Categories     []CategoryTag  `json:"categories"`
	PerCategory    map[string]int `json:"per_category"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Email          string         `json:"email,omitempty"`
}

// Summarize builds a BundleSummary for b.
func (b *ResourceBundle) Summarize() BundleSummary {
	perCategory := make(map[string]int, len(b.Resources))
	for c, list := range b.Resources {
		perCategory[string(c)] = len(list)
	}
	return BundleSummary{
		BundleID:       b.ID,
		UserID:         b.UserID,
		TotalResources: b.TotalResources,
		Categories:     AllCategories(),
		PerCategory:    perCategory,
		GeneratedAt:    b.GeneratedAt,
	}
}
