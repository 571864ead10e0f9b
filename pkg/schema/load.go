// Package schema models the component metadata of the pipeline tool:
// sources, transforms, and sinks, each described by a YAML descriptor
// declaring its configuration options and emitted event fields.
//
// Descriptors are loaded once per build, validated eagerly, and never
// mutated afterwards. A malformed descriptor fails the build.
package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Set holds all loaded components, indexed by name within each kind.
type Set struct {
	Sources    map[string]*Component
	Transforms map[string]*Component
	Sinks      map[string]*Component
}

// LoadDir loads every component descriptor beneath root. Descriptors
// live under `<root>/sources`, `<root>/transforms`, and `<root>/sinks`;
// the directory determines the component kind.
func LoadDir(root string, logger *slog.Logger) (*Set, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("metadata root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("metadata root %s is not a directory", root)
	}

	set := &Set{
		Sources:    make(map[string]*Component),
		Transforms: make(map[string]*Component),
		Sinks:      make(map[string]*Component),
	}

	for _, kind := range Kinds {
		pattern := filepath.Join(root, kind.Plural(), "**", "*.yml")
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}

		for _, path := range matches {
			c, err := loadFile(path, kind)
			if err != nil {
				return nil, err
			}

			byName := set.byKind(kind)
			if _, exists := byName[c.Name]; exists {
				return nil, fmt.Errorf("%s: duplicate %s %q", path, kind, c.Name)
			}
			byName[c.Name] = c

			if logger != nil {
				logger.Debug("loaded component", "id", c.ID(), "path", path)
			}
		}
	}

	return set, nil
}

// loadFile decodes and validates a single descriptor.
func loadFile(path string, kind Kind) (*Component, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var c Component
	dec := yaml.NewDecoder(f)
	// Unknown keys are typos until proven otherwise.
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Kind = kind
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.finalize()
	return &c, nil
}

func (s *Set) byKind(kind Kind) map[string]*Component {
	switch kind {
	case KindSource:
		return s.Sources
	case KindTransform:
		return s.Transforms
	case KindSink:
		return s.Sinks
	}
	return nil
}

// All returns every component ordered by kind, then name.
func (s *Set) All() []*Component {
	var all []*Component
	for _, kind := range Kinds {
		byName := s.byKind(kind)
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			all = append(all, byName[name])
		}
	}
	return all
}

// Names returns the set of component names across all kinds. Commit
// scopes are validated against this set.
func (s *Set) Names() map[string]bool {
	names := make(map[string]bool)
	for _, c := range s.All() {
		names[c.Name] = true
	}
	return names
}

// Len returns the total number of loaded components.
func (s *Set) Len() int {
	return len(s.Sources) + len(s.Transforms) + len(s.Sinks)
}
