package frontmatter

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBody string
		wantKey  string
		wantVal  string
		wantErr  bool
	}{
		{
			name: "Basic Front Matter",
			input: `---
title: File Source
---
# Content Here`,
			wantBody: "# Content Here",
			wantKey:  "title",
			wantVal:  "File Source",
			wantErr:  false,
		},
		{
			name:     "No Front Matter",
			input:    `# Just Markdown`,
			wantBody: "# Just Markdown",
			wantErr:  false,
		},
		{
			name:     "Empty File",
			input:    ``,
			wantBody: "",
			wantErr:  false,
		},
		{
			name: "Invalid YAML",
			input: `---
key: : value
---
Content`,
			wantErr: true,
		},
		{
			name: "Unclosed Front Matter",
			input: `---
title: Unclosed
Content`,
			wantErr: true,
		},
		{
			name: "Fence Inside Value",
			input: `---
title: "a --- b"
---
Content`,
			wantBody: "Content",
			wantKey:  "title",
			wantVal:  "a --- b",
			wantErr:  false,
		},
		{
			name: "Mid-Line Delimiter Does Not Close",
			input: `---
title: x
foo --- bar
Content`,
			wantErr: true,
		},
		{
			name: "Multiline Body",
			input: `---
release: 0.9.0
---
Line 1
Line 2`,
			wantBody: "Line 1\nLine 2",
			wantKey:  "release",
			wantVal:  "0.9.0",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.input)
			got, err := Parse(r)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if got.Body != tt.wantBody {
				t.Errorf("Parse() body = %q, want %q", got.Body, tt.wantBody)
			}

			if tt.wantKey != "" {
				val, ok := got.Metadata[tt.wantKey]
				if !ok {
					t.Errorf("Missing metadata key %q", tt.wantKey)
				} else if val != tt.wantVal {
					t.Errorf("Metadata[%q] = %v, want %v", tt.wantKey, val, tt.wantVal)
				}
			}
		})
	}
}

func TestDecode(t *testing.T) {
	type meta struct {
		Title  string `yaml:"title"`
		Weight int    `yaml:"weight"`
	}

	d := &Document{Metadata: Metadata{"title": "Guide", "weight": 2}}
	var m meta
	if err := d.Decode(&m); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if m.Title != "Guide" || m.Weight != 2 {
		t.Errorf("Decode() = %+v", m)
	}

	bad := &Document{Metadata: Metadata{"titel": "typo"}}
	err := bad.Decode(&m)
	if err == nil || !strings.Contains(err.Error(), "unexpected front matter") {
		t.Errorf("Decode() error = %v, want unknown-key rejection", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	d := &Document{
		Metadata: Metadata{"title": "Upgrade Guide"},
		Body:     "Rename `fingerprinting` to `fingerprint`.\n",
	}

	out, err := d.String()
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}

	parsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Body != d.Body {
		t.Errorf("round trip body = %q, want %q", parsed.Body, d.Body)
	}
	if parsed.Metadata["title"] != "Upgrade Guide" {
		t.Errorf("round trip metadata = %v", parsed.Metadata)
	}
}
