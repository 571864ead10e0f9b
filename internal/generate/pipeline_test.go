package generate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-docs/vellum/pkg/configwriter"
)

const fileSourceYAML = `name: file
title: File
description: Tails one or more files and emits one event per line.
status: beta
delivery_guarantee: at_least_once
function_category: collect
options:
  - name: include
    type: "[string]"
    description: Glob patterns of files to tail.
    required: true
    examples:
      - ["/var/log/**/*.log"]
  - name: data_dir
    type: string
    description: Where checkpoint state is stored.
    default: /var/lib/pipeline
fields:
  - name: message
    type: string
    description: The raw line.
    examples:
      - "error something went wrong"
`

const jsonTransformYAML = `name: json_parser
title: JSON Parser
description: Parses the message field as JSON.
status: stable
function_category: parse
options:
  - name: drop_invalid
    type: bool
    description: Drop events that fail to parse.
    required: true
    examples:
      - true
`

const releaseYAML = `version: "0.9.0"
date: 2026-03-01
commits:
  - "a1b2c3d4e5|Ana|2026-02-20T10:00:00Z|feat(file)!: rename fingerprinting to fingerprint|4|80|40"
  - "b2c3d4e5f6|Bo|2026-02-22T10:00:00Z|fix(core): flush buffers on shutdown|2|30|4"
`

const breakingHighlightMD = `---
title: Fingerprint renamed
release: "0.9.0"
breaking: true
---
Rename the fingerprinting table to fingerprint in your config.
`

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

// metadataRoot builds a small but complete metadata tree.
func metadataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "components/sources/file.yml", fileSourceYAML)
	write(t, root, "components/transforms/json_parser.yml", jsonTransformYAML)
	write(t, root, "releases/0.9.0.yml", releaseYAML)
	write(t, root, "highlights/fingerprint.md", breakingHighlightMD)
	return root
}

func TestGenerate(t *testing.T) {
	root := metadataRoot(t)
	out := filepath.Join(root, "generated")

	p := NewPipeline(root, out, nil)
	require.NoError(t, p.Generate(context.Background()))

	for _, rel := range []string{
		"components/sources/file/example.toml",
		"components/sources/file/example_required.toml",
		"components/transforms/json_parser/example.toml",
		"components/transforms/json_parser/example_required.toml",
		"components.json",
		"changelog/0.9.0.md",
		"CHANGELOG.md",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}

	full, err := os.ReadFile(filepath.Join(out, "components/sources/file/example.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(full), "[sources.my_source_id]")
	assert.Contains(t, string(full), `type = "file"`)
	assert.NoError(t, configwriter.Verify(string(full)))

	required, err := os.ReadFile(filepath.Join(out, "components/sources/file/example_required.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(required), "data_dir")

	var summaries []componentSummary
	data, err := os.ReadFile(filepath.Join(out, "components.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summaries))
	require.Len(t, summaries, 2)

	changelog, err := os.ReadFile(filepath.Join(out, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(changelog), "### Breaking changes")
	assert.Contains(t, string(changelog), "See the upgrade guide: Fingerprint renamed")
}

func TestGenerateSkipsUnchanged(t *testing.T) {
	root := metadataRoot(t)
	out := filepath.Join(root, "generated")

	p := NewPipeline(root, out, nil)
	require.NoError(t, p.Generate(context.Background()))

	// A second run must not rewrite unchanged component snippets.
	target := filepath.Join(out, "components/sources/file/example.toml")
	before, err := os.Stat(target)
	require.NoError(t, err)

	p2 := NewPipeline(root, out, nil)
	require.NoError(t, p2.Generate(context.Background()))

	after, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	// Force ignores the cache.
	p3 := NewPipeline(root, out, nil)
	p3.Force = true
	require.NoError(t, p3.Generate(context.Background()))
}

func TestGenerateBreakingWithoutGuideFails(t *testing.T) {
	root := metadataRoot(t)
	require.NoError(t, os.Remove(filepath.Join(root, "highlights/fingerprint.md")))

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	err := p.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upgrade guide")
}

func TestLoadCommitsLog(t *testing.T) {
	root := metadataRoot(t)
	write(t, root, "commits.log", `# pending for the next release
d4e5f6a7b8|Ana|2026-03-20T10:00:00Z|feat(file): cache glob matches|2|40|0
`)

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	b, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Unreleased, 1)
	assert.Equal(t, "file", b.Unreleased[0].Scope)
}

func TestLoadCommitsLogUnknownScope(t *testing.T) {
	root := metadataRoot(t)
	write(t, root, "commits.log", "d4e5f6a7b8|Ana|2026-03-20T10:00:00Z|feat(filez): cache glob matches|2|40|0\n")

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filez")

	p2 := NewPipeline(root, filepath.Join(root, "generated"), nil)
	p2.Strict = false
	_, err = p2.Load(context.Background())
	assert.NoError(t, err)
}

func TestLoadCommitsLogRejectsReleasedCommit(t *testing.T) {
	root := metadataRoot(t)
	// Same sha as a commit in the 0.9.0 release descriptor.
	write(t, root, "commits.log", "b2c3d4e5f6|Bo|2026-02-22T10:00:00Z|fix(core): flush buffers on shutdown|2|30|4\n")

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in release 0.9.0")
}

func TestGenerateUnknownScope(t *testing.T) {
	root := metadataRoot(t)
	write(t, root, "releases/0.9.0.yml", `version: "0.9.0"
date: 2026-03-01
commits:
  - "b2c3d4e5f6|Bo|2026-02-22T10:00:00Z|fix(filez): flush buffers on shutdown|2|30|4"
`)

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	err := p.Generate(context.Background())
	require.Error(t, err, "unknown scopes fail in strict mode")
	assert.Contains(t, err.Error(), "filez")

	// Non-strict builds warn instead.
	p2 := NewPipeline(root, filepath.Join(root, "generated"), nil)
	p2.Strict = false
	assert.NoError(t, p2.Generate(context.Background()))
}

func TestGenerateUnknownGuideComponent(t *testing.T) {
	root := metadataRoot(t)
	write(t, root, "guides/tailing.md", `---
title: Tailing files
description: Using the file source.
weight: 1
component: filez
---
Body.
`)

	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	err := p.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown component "filez"`)
}

func TestCheck(t *testing.T) {
	root := metadataRoot(t)
	out := filepath.Join(root, "generated")
	p := NewPipeline(root, out, nil)

	// Nothing generated yet: every artifact is reported missing.
	stale, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, stale)

	require.NoError(t, p.Generate(context.Background()))

	stale, err = p.Check(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Corrupt one output and check again.
	target := filepath.Join(out, "components/sources/file/example.toml")
	require.NoError(t, os.WriteFile(target, []byte("# edited by hand\n"), 0644))

	stale, err = p.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, filepath.Join("components", "sources", "file", "example.toml"), stale[0].Path)
	assert.NotEmpty(t, stale[0].Diff)
}

func TestRenderComponentRequiredOnly(t *testing.T) {
	root := metadataRoot(t)
	p := NewPipeline(root, filepath.Join(root, "generated"), nil)
	b, err := p.Load(context.Background())
	require.NoError(t, err)

	tr := b.Components.Transforms["json_parser"]
	require.NotNil(t, tr)

	full, required, err := RenderComponent(tr)
	require.NoError(t, err)

	// Transforms carry the injected inputs option in both variants.
	assert.Contains(t, full, "[transforms.my_transform_id]")
	assert.Contains(t, required, "inputs = [")
	assert.NoError(t, configwriter.Verify(required))
}
