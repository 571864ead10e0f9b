package schema

import (
	"fmt"
	"regexp"
)

var componentNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Component is one source, transform, or sink descriptor.
type Component struct {
	Name              string    `yaml:"name"`
	Kind              Kind      `yaml:"-"` // inferred from the descriptor's directory
	Path              string    `yaml:"-"` // descriptor file path, for error context and caching
	Title             string    `yaml:"title"`
	Description       string    `yaml:"description"`
	Status            Status    `yaml:"status"`
	DeliveryGuarantee Delivery  `yaml:"delivery_guarantee"`
	FunctionCategory  string    `yaml:"function_category"`
	MinVersion        string    `yaml:"min_version"`
	Options           []*Option `yaml:"options"`
	Fields            []*Field  `yaml:"fields"`
}

// ID returns the canonical identifier, e.g. "sources/file".
func (c *Component) ID() string {
	return c.Kind.Plural() + "/" + c.Name
}

// Validate checks the descriptor's own attributes and every option and
// field beneath it. Failures are fatal to the build.
func (c *Component) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("component: name is required")
	}
	if !componentNameRe.MatchString(c.Name) {
		return fmt.Errorf("component %q: invalid name (want snake_case)", c.Name)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("component %q: unknown kind %q", c.Name, c.Kind)
	}
	if c.Title == "" {
		return fmt.Errorf("component %q: title is required", c.Name)
	}
	if c.Description == "" {
		return fmt.Errorf("component %q: description is required", c.Name)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("component %q: unknown status %q", c.Name, c.Status)
	}
	if c.FunctionCategory == "" {
		return fmt.Errorf("component %q: function_category is required", c.Name)
	}
	// Transforms are in-process and carry no delivery guarantee of their own.
	if c.Kind == KindTransform {
		if c.DeliveryGuarantee != "" {
			return fmt.Errorf("component %q: transforms cannot declare a delivery guarantee", c.Name)
		}
	} else if !c.DeliveryGuarantee.Valid() {
		return fmt.Errorf("component %q: unknown delivery guarantee %q", c.Name, c.DeliveryGuarantee)
	}

	if len(c.Options) == 0 {
		return fmt.Errorf("component %q: at least one option is required", c.Name)
	}
	for _, o := range c.Options {
		if err := o.Validate(""); err != nil {
			return fmt.Errorf("component %q: %w", c.Name, err)
		}
	}
	if err := validateSiblings(c.Options, c.Name); err != nil {
		return err
	}
	for _, f := range c.Fields {
		if err := f.Validate(""); err != nil {
			return fmt.Errorf("component %q: %w", c.Name, err)
		}
	}
	return nil
}

// finalize injects the options every component shares and settles the
// canonical option order. Called once at load time.
func (c *Component) finalize() {
	common := []*Option{
		{
			Name:        "type",
			Type:        TypeString,
			Description: "The component type. This is a required field and tells the pipeline which component to use.",
			Required:    true,
			Enum: []EnumEntry{
				{Value: c.Name, Description: "The type of this component."},
			},
		},
	}

	if c.Kind == KindTransform || c.Kind == KindSink {
		common = append(common, &Option{
			Name:        "inputs",
			Type:        "[string]",
			Description: "A list of upstream component IDs. Wildcards (`*`) are supported.",
			Required:    true,
			Examples:    []interface{}{[]interface{}{"my-source-or-transform-id"}},
		})
	}

	c.Options = append(common, c.Options...)
	SortOptions(c.Options)
}
