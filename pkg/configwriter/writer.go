// Package configwriter renders example TOML configuration snippets from
// a component's option schema.
//
// The writer is a recursive descent over the sorted option tree: leaves
// emit `key = value` lines using the first of {explicit override,
// declared default, first derived example}, and table options recurse
// into child writers rendered as inline tables, `[path]` tables, or
// `[[path]]` arrays of tables depending on their display hint and type.
package configwriter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vellum-docs/vellum/pkg/schema"
)

// ErrUnsorted is returned by New when the options are not in canonical
// schema order. Ordering is settled at load time and only asserted here.
var ErrUnsorted = errors.New("options are not in canonical schema order")

// Writer renders one TOML table worth of options.
type Writer struct {
	opts         []*schema.Option
	tablePath    []string
	requiredOnly bool
	overrides    map[string]interface{}
	categories   bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithTablePath sets the dotted path of the table being rendered,
// e.g. ("sources", "my_file_source").
func WithTablePath(segments ...string) Option {
	return func(w *Writer) {
		w.tablePath = segments
	}
}

// WithRequiredOnly restricts output to required options (and the tables
// that contain them). Overridden options are always included.
func WithRequiredOnly(on bool) Option {
	return func(w *Writer) {
		w.requiredOnly = on
	}
}

// WithOverrides supplies explicit values by dotted option path,
// relative to the writer's root (e.g. "fingerprint.strategy").
func WithOverrides(values map[string]interface{}) Option {
	return func(w *Writer) {
		w.overrides = values
	}
}

// WithCategoryComments emits a `# Category` comment line whenever the
// category of the emitted options changes.
func WithCategoryComments(on bool) Option {
	return func(w *Writer) {
		w.categories = on
	}
}

// New creates a Writer over a sorted option slice.
func New(opts []*schema.Option, wopts ...Option) (*Writer, error) {
	if !schema.OptionsSorted(opts) {
		return nil, ErrUnsorted
	}
	w := &Writer{opts: opts}
	for _, o := range wopts {
		o(w)
	}
	return w, nil
}

// Render produces the TOML snippet.
func (w *Writer) Render() (string, error) {
	var b strings.Builder
	if err := w.render(&b); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func (w *Writer) render(b *strings.Builder) error {
	leaves, tables := w.split()

	if len(w.tablePath) > 0 && (len(leaves) > 0 || len(tables) == 0) {
		fmt.Fprintf(b, "[%s]\n", joinPath(w.tablePath))
	}
	return w.renderBody(b, leaves, tables)
}

// renderBody emits leaves first and block tables after, each in schema
// order. TOML requires every key/value of a table before its subtables.
func (w *Writer) renderBody(b *strings.Builder, leaves, tables []*schema.Option) error {
	category := ""
	for _, o := range leaves {
		if w.categories && o.Category != "" && o.Category != category {
			fmt.Fprintf(b, "# %s\n", o.Category)
		}
		if o.Category != "" {
			category = o.Category
		}
		if err := w.renderLeaf(b, o); err != nil {
			return err
		}
	}

	for _, o := range tables {
		if err := w.renderTable(b, o); err != nil {
			return err
		}
	}
	return nil
}

// split partitions options into leaf-rendered and table-rendered sets,
// applying the required-only filter.
func (w *Writer) split() (leaves, tables []*schema.Option) {
	for _, o := range w.opts {
		if w.requiredOnly && !w.overridden(o.Name) && !hasRequired(o) {
			continue
		}
		if o.Type.IsTable() && len(o.Examples) == 0 && o.Display != schema.DisplayInline {
			tables = append(tables, o)
		} else {
			leaves = append(leaves, o)
		}
	}
	return leaves, tables
}

// renderLeaf emits one `key = value` line, or nothing when an optional
// leaf has no derivable value.
func (w *Writer) renderLeaf(b *strings.Builder, o *schema.Option) error {
	if o.Type.IsTable() && len(o.Examples) == 0 {
		// Inline display table: render children as an inline table.
		s, err := w.renderInline(o)
		if err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		fmt.Fprintf(b, "%s = %s\n", formatKey(o.Name), s)
		return nil
	}

	v, ok, err := w.valueFor(o, o.Name)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s, err := formatValue(v, o.Type)
	if err != nil {
		return fmt.Errorf("option %q: %w", o.Name, err)
	}
	fmt.Fprintf(b, "%s = %s\n", formatKey(o.Name), s)
	return nil
}

// renderInline renders a table option as `{ a = 1, b = "x" }`.
func (w *Writer) renderInline(o *schema.Option) (string, error) {
	var pairs []string
	for _, c := range o.Children {
		if c.Type.IsTable() {
			return "", fmt.Errorf("option %q: inline tables cannot nest table options", o.Name)
		}
		v, ok, err := w.valueFor(c, o.Name+"."+c.Name)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		s, err := formatValue(v, c.Type)
		if err != nil {
			return "", fmt.Errorf("option %q.%s: %w", o.Name, c.Name, err)
		}
		pairs = append(pairs, formatKey(c.Name)+" = "+s)
	}
	if len(pairs) == 0 {
		return "", nil
	}
	return "{" + strings.Join(pairs, ", ") + "}", nil
}

// renderTable emits a `[path]` or `[[path]]` section for a table option
// by recursing into a child writer.
func (w *Writer) renderTable(b *strings.Builder, o *schema.Option) error {
	childPath := append(append([]string{}, w.tablePath...), o.Name)

	header := "[%s]\n"
	if o.Type.IsArray() {
		header = "[[%s]]\n"
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, header, joinPath(childPath))

	child := &Writer{
		opts:         o.Children,
		requiredOnly: w.requiredOnly,
		overrides:    subOverrides(w.overrides, o.Name),
		categories:   w.categories,
		tablePath:    childPath,
	}

	leaves, tables := child.split()
	if err := child.renderBody(b, leaves, tables); err != nil {
		return fmt.Errorf("table %q: %w", o.Name, err)
	}
	return nil
}

// valueFor resolves the emitted value for a leaf: override, then
// default, then first derived example.
func (w *Writer) valueFor(o *schema.Option, path string) (interface{}, bool, error) {
	if v, ok := w.overrides[path]; ok {
		return v, true, nil
	}
	if o.Default != nil {
		return o.Default, true, nil
	}
	if ex := o.ExampleValues(); len(ex) > 0 {
		return ex[0], true, nil
	}
	if o.Required {
		return nil, false, fmt.Errorf("option %q: no value derivable for required option", path)
	}
	return nil, false, nil
}

// overridden reports whether an override targets the option itself or
// anything nested beneath it. An overridden subtree always renders,
// even under the required-only filter.
func (w *Writer) overridden(name string) bool {
	if _, ok := w.overrides[name]; ok {
		return true
	}
	for k := range w.overrides {
		if strings.HasPrefix(k, name+".") {
			return true
		}
	}
	return false
}

// hasRequired reports whether the option or any descendant is required.
func hasRequired(o *schema.Option) bool {
	if o.Required {
		return true
	}
	for _, c := range o.Children {
		if hasRequired(c) {
			return true
		}
	}
	return false
}

// subOverrides strips one path segment off the override keys.
func subOverrides(overrides map[string]interface{}, name string) map[string]interface{} {
	if len(overrides) == 0 {
		return nil
	}
	sub := make(map[string]interface{})
	for k, v := range overrides {
		if rest, ok := strings.CutPrefix(k, name+"."); ok {
			sub[rest] = v
		}
	}
	return sub
}

func joinPath(segments []string) string {
	keys := make([]string, 0, len(segments))
	for _, s := range segments {
		keys = append(keys, formatKey(s))
	}
	return strings.Join(keys, ".")
}

// Verify round-trips a rendered snippet through a TOML parser, catching
// writer bugs before a broken example lands in the docs.
func Verify(snippet string) error {
	var v map[string]interface{}
	if _, err := toml.Decode(snippet, &v); err != nil {
		return fmt.Errorf("generated snippet is not valid TOML: %w", err)
	}
	return nil
}
