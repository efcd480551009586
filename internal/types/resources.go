package types

// CategoryTag is the closed set of bundle categories. Every resource carries exactly one.
type CategoryTag string

// Category constants, in bundle order
const (
	CategoryWeakAreas        CategoryTag = "weak_areas_improvement"
	CategoryInterviewPrep    CategoryTag = "interview_preparation"
	CategorySkillDevelopment CategoryTag = "skill_development"
	CategoryPracticeProblems CategoryTag = "practice_problems"
	CategoryTechTutorials    CategoryTag = "technology_tutorials"
	CategoryGeneral          CategoryTag = "general_learning"
)

// AllCategories returns the six category tags in bundle order.
func AllCategories() []CategoryTag {
	return []CategoryTag{
		CategoryWeakAreas,
		CategoryInterviewPrep,
		CategorySkillDevelopment,
		CategoryPracticeProblems,
		CategoryTechTutorials,
		CategoryGeneral,
	}
}

// ParseCategoryTag returns the tag named by s, or false if s is not one of the six.
func ParseCategoryTag(s string) (CategoryTag, bool) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// IsSpecific reports whether the tag is set and narrower than general_learning.
func (c CategoryTag) IsSpecific() bool {
	_, ok := ParseCategoryTag(string(c))
	return ok && c != CategoryGeneral
}

// ResourceType classifies the medium of a resource.
type ResourceType string

// Resource types
const (
	ResourceVideo      ResourceType = "video"
	ResourceArticle    ResourceType = "article"
	ResourceCourse     ResourceType = "course"
	ResourceRepository ResourceType = "repository"
	ResourcePractice   ResourceType = "practice"
	ResourceOther      ResourceType = "other"
)

// Difficulty is the inferred level of a resource.
type Difficulty string

// Difficulty levels
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyUnknown      Difficulty = "unknown"
)

// SearchQuery is one synthesized search. OriginCategory records the profile
// facet that produced it; empty means unset.
type SearchQuery struct {
	Text           string      `json:"text"`
	OriginCategory CategoryTag `json:"origin_category,omitempty"`
}

// CandidateResource is a raw discovery result. It is never persisted directly.
type CandidateResource struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Snippet     string      `json:"snippet"`
	SourceQuery SearchQuery `json:"source_query"`
}

// CategorizedResource is the canonical persisted unit of a bundle.
type CategorizedResource struct {
	Title                string       `json:"title"`
	URL                  string       `json:"url"`
	Description          string       `json:"description"`
	ResourceType         ResourceType `json:"resource_type"`
	Difficulty           Difficulty   `json:"difficulty"`
	EstimatedTimeMinutes int          `json:"estimated_time_minutes"`
	Tags                 []string     `json:"tags"`
}

// TaggedResource pairs a categorized resource with its single category.
type TaggedResource struct {
	Category CategoryTag         `json:"category"`
	Resource CategorizedResource `json:"resource"`
}
