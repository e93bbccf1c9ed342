package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/aleksaelezovic/turtle/internal/testsuite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: test-runner <manifest-file-or-directory>...")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  test-runner testdata/rdf-tests/rdf/rdf11/rdf-turtle/manifest.ttl")
		fmt.Println("  test-runner testdata/rdf-tests/rdf/rdf11/rdf-n-triples")
		os.Exit(1)
	}

	runner := testsuite.NewTestRunner(os.Stdout)

	for _, path := range os.Args[1:] {
		info, err := os.Stat(path)
		if err != nil {
			log.Fatalf("Failed to access path: %v", err)
		}

		manifestPath := path
		if info.IsDir() {
			manifestPath = filepath.Join(path, "manifest.ttl")
			if _, err := os.Stat(manifestPath); err != nil {
				log.Fatalf("No manifest.ttl found in directory: %s", path)
			}
		}

		if err := runner.RunManifest(manifestPath); err != nil {
			log.Fatalf("Failed to run manifest: %v", err)
		}
	}

	// Exit with appropriate code
	stats := runner.GetStats()
	if stats.Failed > 0 {
		color.Red("%d of %d tests failed", stats.Failed, stats.Total)
		os.Exit(1)
	}
	color.Green("All %d tests passed (%d skipped)", stats.Passed, stats.Skipped)
}
