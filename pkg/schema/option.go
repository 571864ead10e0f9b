package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// nameRe constrains option names. The `*` wildcard is allowed because
// free-form tables (e.g. `request_headers.*`) document their keys that way.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_.*-]+$`)

// EnumEntry is one admissible value of an enumerated option, with its
// human description. Entries are ordered as declared.
type EnumEntry struct {
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

// Display hints for table-typed options.
const (
	DisplayInline = "inline"
	DisplayBlock  = "block"
)

// Option is one configuration option of a component.
//
// Table-typed options nest via Children; everything else is a leaf that
// renders as a single `key = value` line in example configs.
type Option struct {
	Name         string        `yaml:"name"`
	Type         Type          `yaml:"type"`
	Description  string        `yaml:"description"`
	Required     bool          `yaml:"required"`
	Category     string        `yaml:"category"`
	Default      interface{}   `yaml:"default"`
	Enum         []EnumEntry   `yaml:"enum"`
	Examples     []interface{} `yaml:"examples"`
	RelevantWhen string        `yaml:"relevant_when"`
	Unit         string        `yaml:"unit"`
	Display      string        `yaml:"display"`
	Children     []*Option     `yaml:"options"`
}

// Validate checks the option subtree rooted here. The path argument is
// the dotted location used in error messages (e.g. "fingerprint.strategy").
func (o *Option) Validate(path string) error {
	at := o.Name
	if path != "" {
		at = path + "." + o.Name
	}

	if o.Name == "" {
		return fmt.Errorf("option at %q: name is required", path)
	}
	if !nameRe.MatchString(o.Name) {
		return fmt.Errorf("option %q: invalid name", at)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("option %q: unknown type %q", at, o.Type)
	}
	if o.Description == "" {
		return fmt.Errorf("option %q: description is required", at)
	}
	if o.Required && o.Default != nil {
		return fmt.Errorf("option %q: required options cannot declare a default", at)
	}

	if o.Type.IsTable() {
		if err := o.validateTable(at); err != nil {
			return err
		}
	} else {
		if err := o.validateLeaf(at); err != nil {
			return err
		}
	}

	// Required leaves must yield at least one example value.
	if o.Required && !o.Type.IsTable() && len(o.ExampleValues()) == 0 {
		return fmt.Errorf("option %q: required option has no examples, enum, or default to derive an example from", at)
	}

	for _, c := range o.Children {
		if err := c.Validate(at); err != nil {
			return err
		}
	}
	return validateSiblings(o.Children, at)
}

func (o *Option) validateTable(at string) error {
	if len(o.Children) == 0 && len(o.Examples) == 0 {
		return fmt.Errorf("option %q: table options need child options or explicit examples", at)
	}
	if len(o.Enum) > 0 {
		return fmt.Errorf("option %q: enum is not allowed on table options", at)
	}
	if o.Display != "" && o.Display != DisplayInline && o.Display != DisplayBlock {
		return fmt.Errorf("option %q: display must be %q or %q, got %q", at, DisplayInline, DisplayBlock, o.Display)
	}
	if o.Default != nil {
		return fmt.Errorf("option %q: table options cannot declare a default", at)
	}
	return nil
}

func (o *Option) validateLeaf(at string) error {
	if len(o.Children) > 0 {
		return fmt.Errorf("option %q: only table options may have child options", at)
	}
	if o.Display != "" {
		return fmt.Errorf("option %q: display only applies to table options", at)
	}
	if len(o.Enum) > 0 {
		// Enum values are scalar strings, so an array-typed option cannot
		// carry one: the derived example would be a bare string where an
		// array is declared.
		if o.Type != TypeString {
			return fmt.Errorf("option %q: enum requires a string type, got %q", at, o.Type)
		}
		seen := make(map[string]bool, len(o.Enum))
		for _, e := range o.Enum {
			if e.Value == "" {
				return fmt.Errorf("option %q: enum entries need a value", at)
			}
			if seen[e.Value] {
				return fmt.Errorf("option %q: duplicate enum value %q", at, e.Value)
			}
			seen[e.Value] = true
		}
		if o.Default != nil {
			if s, ok := o.Default.(string); !ok || !seen[s] {
				return fmt.Errorf("option %q: default %v is not an enum value", at, o.Default)
			}
		}
	}
	if o.Default != nil && !valueMatches(o.Type, o.Default) {
		return fmt.Errorf("option %q: default %v (%s) does not match type %q", at, o.Default, typeName(o.Default), o.Type)
	}
	for i, ex := range o.Examples {
		if !valueMatches(o.Type, ex) {
			return fmt.Errorf("option %q: example %d (%v) does not match type %q", at, i, ex, o.Type)
		}
	}
	return nil
}

// validateSiblings checks cross-option constraints within one level:
// name uniqueness and relevant_when references.
func validateSiblings(opts []*Option, at string) error {
	names := make(map[string]bool, len(opts))
	for _, c := range opts {
		if names[c.Name] {
			return fmt.Errorf("option %q: duplicate child option %q", at, c.Name)
		}
		names[c.Name] = true
	}
	for _, c := range opts {
		if c.RelevantWhen == "" {
			continue
		}
		ref, _, err := parseRelevantWhen(c.RelevantWhen)
		if err != nil {
			return fmt.Errorf("option %q.%s: %w", at, c.Name, err)
		}
		if !names[ref] {
			return fmt.Errorf("option %q.%s: relevant_when references unknown sibling %q", at, c.Name, ref)
		}
	}
	return nil
}

// parseRelevantWhen splits a `name = value` condition.
func parseRelevantWhen(expr string) (name, value string, err error) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("relevant_when must be of the form `name = value`, got %q", expr)
	}
	name = strings.TrimSpace(parts[0])
	value = strings.Trim(strings.TrimSpace(parts[1]), `"`)
	if name == "" || value == "" {
		return "", "", fmt.Errorf("relevant_when must be of the form `name = value`, got %q", expr)
	}
	return name, value, nil
}

// ExampleValues derives the effective example values for the option:
// explicit examples win, then enum values, then the declared default.
func (o *Option) ExampleValues() []interface{} {
	if len(o.Examples) > 0 {
		return o.Examples
	}
	if len(o.Enum) > 0 {
		vals := make([]interface{}, 0, len(o.Enum))
		for _, e := range o.Enum {
			vals = append(vals, e.Value)
		}
		return vals
	}
	if o.Default != nil {
		return []interface{}{o.Default}
	}
	return nil
}

// less is the canonical option ordering: category, then required before
// optional, then name.
func less(a, b *Option) bool {
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.Required != b.Required {
		return a.Required
	}
	return a.Name < b.Name
}

// SortOptions sorts the slice (and every Children slice beneath it) into
// the canonical order.
func SortOptions(opts []*Option) {
	sort.SliceStable(opts, func(i, j int) bool { return less(opts[i], opts[j]) })
	for _, o := range opts {
		SortOptions(o.Children)
	}
}

// OptionsSorted reports whether the slice is already in canonical order.
// The config writer asserts this once at construction instead of
// re-sorting on every render.
func OptionsSorted(opts []*Option) bool {
	for i := 1; i < len(opts); i++ {
		if less(opts[i], opts[i-1]) {
			return false
		}
	}
	for _, o := range opts {
		if !OptionsSorted(o.Children) {
			return false
		}
	}
	return true
}
