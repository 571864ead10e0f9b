package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
  - name: fingerprint
    type: table
    description: How files are identified across renames.
    options:
      - name: strategy
        type: string
        description: The identification strategy.
        default: checksum
        enum:
          - value: checksum
            description: Checksum the first lines of the file.
          - value: device_and_inode
            description: Use the device and inode numbers.
fields:
  - name: message
    type: string
    description: The raw line.
    examples:
      - "2026-01-02 error something went wrong"
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

func writeDescriptor(t *testing.T, root, kindDir, name, body string) {
	t.Helper()
	dir := filepath.Join(root, kindDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "sources", "file.yml", fileSourceYAML)
	writeDescriptor(t, root, "transforms", "json_parser.yml", jsonTransformYAML)

	set, err := LoadDir(root, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())

	src, ok := set.Sources["file"]
	require.True(t, ok, "file source should be loaded")
	assert.Equal(t, KindSource, src.Kind)
	assert.Equal(t, "sources/file", src.ID())

	// The common `type` option is injected and the slice is in
	// canonical order.
	assert.True(t, OptionsSorted(src.Options))
	typ := findOption(t, src.Options, "type")
	assert.True(t, typ.Required)
	require.Len(t, typ.Enum, 1)
	assert.Equal(t, "file", typ.Enum[0].Value)

	// Transforms additionally get `inputs`.
	tr := set.Transforms["json_parser"]
	require.NotNil(t, tr)
	inputs := findOption(t, tr.Options, "inputs")
	assert.True(t, inputs.Required)

	// Sources do not.
	for _, o := range src.Options {
		assert.NotEqual(t, "inputs", o.Name)
	}
}

func findOption(t *testing.T, opts []*Option, name string) *Option {
	t.Helper()
	for _, o := range opts {
		if o.Name == name {
			return o
		}
	}
	t.Fatalf("option %q not found", name)
	return nil
}

func TestLoadDirDuplicate(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "sources", "file.yml", fileSourceYAML)
	writeDescriptor(t, root, filepath.Join("sources", "nested"), "file2.yml", fileSourceYAML)

	_, err := LoadDir(root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source")
}

func TestLoadDirUnknownKey(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "sinks", "bad.yml", `name: bad
title: Bad
description: d
status: beta
delivery_guarantee: best_effort
function_category: transmit
colour: green
options:
  - name: x
    type: bool
    description: d
`)

	_, err := LoadDir(root, nil)
	require.Error(t, err, "unknown descriptor keys are typos and must fail")
}

func TestLoadDirValidationErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, root, "sources", "broken.yml", `name: broken
title: Broken
description: d
status: beta
delivery_guarantee: at_least_once
function_category: collect
options:
  - name: level
    type: string
    description: d
    required: true
`)

	_, err := LoadDir(root, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")
	assert.Contains(t, err.Error(), "no examples, enum, or default")
}

func TestLoadDirMissingRoot(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestComponentValidateTransformGuarantee(t *testing.T) {
	c := &Component{
		Name:              "sampler",
		Kind:              KindTransform,
		Title:             "Sampler",
		Description:       "d",
		Status:            StatusBeta,
		FunctionCategory:  "filter",
		DeliveryGuarantee: DeliveryBestEffort,
		Options: []*Option{
			{Name: "rate", Type: TypeInt, Description: "d", Default: 10},
		},
	}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transforms cannot declare a delivery guarantee")
}
