package schema

import "fmt"

// Field describes one field of the events a component emits.
//
// Fields share the Option value types but carry none of the
// configuration-only attributes (defaults, enums, display hints).
type Field struct {
	Name        string        `yaml:"name"`
	Type        Type          `yaml:"type"`
	Description string        `yaml:"description"`
	Optional    bool          `yaml:"optional"`
	Examples    []interface{} `yaml:"examples"`
	Children    []*Field      `yaml:"fields"`
}

// Validate checks the field subtree rooted here.
func (f *Field) Validate(path string) error {
	at := f.Name
	if path != "" {
		at = path + "." + f.Name
	}

	if f.Name == "" {
		return fmt.Errorf("field at %q: name is required", path)
	}
	if !nameRe.MatchString(f.Name) {
		return fmt.Errorf("field %q: invalid name", at)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("field %q: unknown type %q", at, f.Type)
	}
	if f.Description == "" {
		return fmt.Errorf("field %q: description is required", at)
	}
	if f.Type.IsTable() {
		if len(f.Children) == 0 {
			return fmt.Errorf("field %q: table fields need child fields", at)
		}
	} else if len(f.Children) > 0 {
		return fmt.Errorf("field %q: only table fields may have child fields", at)
	}
	for i, ex := range f.Examples {
		if !valueMatches(f.Type, ex) {
			return fmt.Errorf("field %q: example %d (%v) does not match type %q", at, i, ex, f.Type)
		}
	}

	seen := make(map[string]bool, len(f.Children))
	for _, c := range f.Children {
		if seen[c.Name] {
			return fmt.Errorf("field %q: duplicate child field %q", at, c.Name)
		}
		seen[c.Name] = true
		if err := c.Validate(at); err != nil {
			return err
		}
	}
	return nil
}
