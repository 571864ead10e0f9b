package vellum_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	vellum "github.com/vellum-docs/vellum"
)

func Example() {
	root, err := os.MkdirTemp("", "vellum-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(root)

	descriptor := []byte(`name: stdin
title: Stdin
description: Reads events from standard input.
status: stable
delivery_guarantee: at_least_once
function_category: collect
options:
  - name: max_length_bytes
    type: int
    description: Longest line to accept.
    default: 102400
`)
	dir := filepath.Join(root, "components", "sources")
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stdin.yml"), descriptor, 0644); err != nil {
		panic(err)
	}

	pipeline := vellum.New(root, vellum.WithOutputDir(filepath.Join(root, "out")))
	if err := pipeline.Generate(context.Background()); err != nil {
		panic(err)
	}

	snippet, err := os.ReadFile(filepath.Join(root, "out", "components", "sources", "stdin", "example.toml"))
	if err != nil {
		panic(err)
	}
	fmt.Print(string(snippet))
	// Output:
	// [sources.my_source_id]
	// type = "stdin"
	// max_length_bytes = 102400
}
