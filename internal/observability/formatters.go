// Package observability provides formatted output utilities for verbose CLI mode
// and the OpenTelemetry tracer setup.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resource-curator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to limit items under a heading.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintProfile outputs a human-readable summary of the normalized learning profile.
func (p *Printer) PrintProfile(profile *types.LearningProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	if profile.Role != "" {
		sb.WriteString(fmt.Sprintf("Role:      %s\n", profile.Role))
	}
	if profile.Timeline != "" {
		sb.WriteString(fmt.Sprintf("Timeline:  %s\n", profile.Timeline))
	}
	if profile.PrimaryLanguage != "" {
		sb.WriteString(fmt.Sprintf("Language:  %s\n", profile.PrimaryLanguage))
	}
	writeList(&sb, "Weak areas", profile.WeakAreas, maxItemsToShow)
	writeList(&sb, "Target companies", profile.TargetCompanies, maxItemsToShow)
	writeList(&sb, "Tech stack", profile.TechStack, maxItemsToShow)
	writeList(&sb, "Preferred types", profile.PreferredResourceTypes, 3)

	content := strings.TrimSuffix(sb.String(), "\n")
	if content == "" {
		content = "(empty profile)"
	}
	p.printBox("LEARNING PROFILE", content)
}

// PrintQueries outputs the synthesized search queries with their origin category.
func (p *Printer) PrintQueries(queries []types.SearchQuery) {
	if len(queries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total queries: %d\n\n", len(queries)))
	for i, q := range queries {
		origin := string(q.OriginCategory)
		if origin == "" {
			origin = "-"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, q.Text))
		sb.WriteString(fmt.Sprintf("    Origin: %s\n", origin))
	}

	p.printBox("SEARCH QUERIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBundle outputs the per-category counts and top resources of a bundle.
func (p *Printer) PrintBundle(bundle *types.ResourceBundle) {
	if bundle == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Bundle:    %s\n", bundle.ID))
	sb.WriteString(fmt.Sprintf("Resources: %d\n", bundle.TotalResources))
	if !bundle.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n", bundle.GeneratedAt.Format("2006-01-02 15:04:05")))
	}

	for _, category := range types.AllCategories() {
		list := bundle.Resources[category]
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", category, len(list)))
		count := min(len(list), 3)
		for i := 0; i < count; i++ {
			r := list[i]
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", r.ResourceType, r.Title))
		}
		if len(list) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(list)-3))
		}
	}

	p.printBox("RESOURCE BUNDLE", strings.TrimSuffix(sb.String(), "\n"))
}
