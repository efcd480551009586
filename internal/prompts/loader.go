// Package prompts holds the language model prompt templates. Each embedded
// JSON file maps a key to a text/template body.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt identifies one template inside an embedded file.
type Prompt struct {
	File string
	Key  string
}

func (p Prompt) String() string { return p.File + "/" + p.Key }

// SynthesizeQueries asks the model for categorized search queries.
var SynthesizeQueries = Prompt{File: "queries.json", Key: "synthesize-queries"}

var (
	mu        sync.Mutex
	files     = map[string]map[string]string{}
	templates = map[Prompt]*template.Template{}
)

// Render executes the prompt with data. Referencing a missing map key is an error.
func Render(p Prompt, data any) (string, error) {
	tmpl, err := lookup(p)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", p, err)
	}
	return sb.String(), nil
}

// Keys lists the prompt keys of an embedded file in sorted order.
func Keys(file string) ([]string, error) {
	mu.Lock()
	defer mu.Unlock()
	entries, err := loadFileLocked(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func lookup(p Prompt) (*template.Template, error) {
	mu.Lock()
	defer mu.Unlock()

	if tmpl, ok := templates[p]; ok {
		return tmpl, nil
	}
	entries, err := loadFileLocked(p.File)
	if err != nil {
		return nil, err
	}
	body, ok := entries[p.Key]
	if !ok {
		return nil, fmt.Errorf("prompt key %q not found in %s", p.Key, p.File)
	}
	tmpl, err := template.New(p.String()).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt %s: %w", p, err)
	}
	templates[p] = tmpl
	return tmpl, nil
}

func loadFileLocked(file string) (map[string]string, error) {
	if entries, ok := files[file]; ok {
		return entries, nil
	}
	data, err := promptFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	files[file] = entries
	return entries, nil
}
