// Package manifest loads the work listing and applies the selection
// allow-list.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Item is one work listed in the manifest.
type Item struct {
	// File references the source text, relative to the sources directory.
	File string `yaml:"file"`
	// Title is the display title (optional, falls back to the file name).
	Title string `yaml:"title,omitempty"`
}

// Manifest enumerates the works to generate.
type Manifest struct {
	Works []Item `yaml:"works"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	for i, item := range m.Works {
		if item.File == "" {
			return nil, fmt.Errorf("manifest entry %d has no file", i)
		}
	}

	return &m, nil
}

// Select filters items by the allow-list. An entry matches when its title,
// file reference, or file base name equals one of the listed names. An empty
// allow-list selects everything; a non-empty one that matches nothing is an
// error.
func Select(items []Item, only []string) ([]Item, error) {
	if len(only) == 0 {
		return items, nil
	}

	allowed := make(map[string]struct{}, len(only))
	for _, name := range only {
		allowed[name] = struct{}{}
	}

	var selected []Item
	for _, item := range items {
		if matches(item, allowed) {
			selected = append(selected, item)
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no manifest entries match selection %v", only)
	}
	return selected, nil
}

func matches(item Item, allowed map[string]struct{}) bool {
	if _, ok := allowed[item.File]; ok {
		return true
	}
	if _, ok := allowed[filepath.Base(item.File)]; ok {
		return true
	}
	if item.Title != "" {
		if _, ok := allowed[item.Title]; ok {
			return true
		}
	}
	return false
}
