// Package types provides type definitions for structured data used throughout the resource-curator system.
package types

// LearningProfile is the normalized view of a user's onboarding answers.
// Every field defaults to empty, never nil, so downstream stages only ever
// branch on emptiness.
type LearningProfile struct {
	WeakAreas              []string `json:"weak_areas"`
	TargetCompanies        []string `json:"target_companies"`
	TechStack              []string `json:"tech_stack"` // ordered as answered
	PreferredResourceTypes []string `json:"preferred_resource_types"`
	Timeline               string   `json:"timeline"`
	Role                   string   `json:"role"`

	PrimaryLanguage string   `json:"primary_language"`
	FamiliarTopics  []string `json:"familiar_topics"`
	Status          string   `json:"status"`
	Education       string   `json:"education"`
}

// NewLearningProfile returns a profile with every list field initialized.
func NewLearningProfile() LearningProfile {
	return LearningProfile{
		WeakAreas:              []string{},
		TargetCompanies:        []string{},
		TechStack:              []string{},
		PreferredResourceTypes: []string{},
		FamiliarTopics:         []string{},
	}
}

// IsEmpty reports whether no facet that drives query generation is populated.
func (p LearningProfile) IsEmpty() bool {
	return len(p.WeakAreas) == 0 &&
		len(p.TargetCompanies) == 0 &&
		len(p.TechStack) == 0 &&
		len(p.PreferredResourceTypes) == 0 &&
		len(p.FamiliarTopics) == 0 &&
		p.Timeline == "" &&
		p.Role == "" &&
		p.PrimaryLanguage == ""
}
