// Package frontmatter splits Markdown documents into a YAML front
// matter block and a body, and decodes the metadata onto typed structs.
//
// The block is delimited by `---` fences, each on a line of its own.
// pkg/content builds its typed documents (posts, guides, highlights)
// on top of this package.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// fence delimits the front matter block.
const fence = "---"

// Metadata is the decoded front matter map.
type Metadata map[string]interface{}

// Document is a Markdown file split into front matter and body.
type Document struct {
	Metadata Metadata
	Body     string
}

// ErrUnclosedFence is returned when a front matter block opens but its
// closing fence never appears.
var ErrUnclosedFence = errors.New("front matter started but no closing delimiter found")

// Parse splits a Markdown stream into front matter and body.
//
// A document carries front matter only when its first line is a fence.
// The closing fence must also sit on a line of its own, so a `---`
// embedded in a YAML value does not end the block early. An opened
// block without a closing fence is an error; treating it as body would
// silently swallow metadata.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	d := &Document{Metadata: make(Metadata)}

	lines := strings.SplitAfter(string(data), "\n")
	if !isFence(lines[0]) || !strings.HasSuffix(lines[0], "\n") {
		d.Body = string(data)
		return d, nil
	}

	for i := 1; i < len(lines); i++ {
		if !isFence(lines[i]) {
			continue
		}
		meta := strings.Join(lines[1:i], "")
		if err := yaml.Unmarshal([]byte(meta), &d.Metadata); err != nil {
			return nil, fmt.Errorf("parsing front matter: %w", err)
		}
		d.Body = strings.Join(lines[i+1:], "")
		return d, nil
	}

	return nil, ErrUnclosedFence
}

// isFence reports whether the line is exactly a fence, ignoring the
// line ending.
func isFence(line string) bool {
	return strings.TrimRight(line, "\r\n") == fence
}

// Decode maps the front matter onto a typed struct. Keys without a
// matching field are rejected: a typo in metadata fails the build
// instead of silently dropping data.
func (d *Document) Decode(out interface{}) error {
	raw, err := yaml.Marshal(d.Metadata)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("unexpected front matter: %w", err)
	}
	return nil
}

// String serializes the document back to Markdown with front matter.
func (d *Document) String() (string, error) {
	var buf bytes.Buffer

	if len(d.Metadata) > 0 {
		buf.WriteString(fence + "\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(d.Metadata); err != nil {
			return "", err
		}
		encoder.Close()
		buf.WriteString(fence + "\n")
	}

	buf.WriteString(d.Body)
	return buf.String(), nil
}
