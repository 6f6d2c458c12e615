//go:build ignore
// +build ignore

// Writes Markdown and man pages for every command, including the staff
// "admin" tree. Run with: go run ./cmd/fitcoach-cli/doc_gen.go [outdir]
package main

import (
	"log"
	"os"
	"path/filepath"

	fitcoach "github.com/mithrel/fitcoach/internal/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	out := "./docs"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	root := fitcoach.NewRootCmd()
	// Keep regenerated pages byte-stable between runs.
	root.DisableAutoGenTag = true

	for _, dir := range []string{"markdown", "man"} {
		if err := os.MkdirAll(filepath.Join(out, dir), 0o755); err != nil {
			log.Fatal(err)
		}
	}
	if err := doc.GenMarkdownTree(root, filepath.Join(out, "markdown")); err != nil {
		log.Fatal(err)
	}

	header := &doc.GenManHeader{
		Title:   "FITCOACH-CLI",
		Section: "1",
		Source:  "fitcoach",
		Manual:  "fitcoach manual",
	}
	if err := doc.GenManTree(root, header, filepath.Join(out, "man")); err != nil {
		log.Fatal(err)
	}
}
