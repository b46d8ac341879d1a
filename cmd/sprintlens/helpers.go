package main

import (
	"context"
	"fmt"
	"io"

	"sprintlens/internal/aggregate"
	"sprintlens/internal/dashboard"
	"sprintlens/internal/ingest"
	"sprintlens/internal/testrun"
)

func builder() dashboard.Builder {
	return dashboard.Builder{
		Collector:  aggregate.Collector{Flattener: testrun.Flattener{MaxDepth: app.cfg.MaxDepth}},
		Classifier: app.classifier,
	}
}

func loader() ingest.Loader {
	return ingest.Loader{Parallel: app.cfg.Parallel}
}

// loadUploads expands paths and reads every report file concurrently.
// It returns the uploads and the number of files that could not be read.
func loadUploads(ctx context.Context, paths []string, meta testrun.Meta) ([]aggregate.Upload, int, error) {
	files, err := ingest.ExpandPaths(paths)
	if err != nil {
		return nil, 0, err
	}
	res, err := loader().Load(ctx, ingest.Refs(files, meta))
	if err != nil {
		return nil, 0, err
	}
	return res.Uploads, len(res.Failed), nil
}

// printExclusions reports the inputs that did not make it into the totals.
func printExclusions(out io.Writer, unreadable, skipped, deleted int) {
	if unreadable > 0 {
		fmt.Fprintf(out, "Unreadable files: %d\n", unreadable)
	}
	if skipped > 0 {
		fmt.Fprintf(out, "Skipped (malformed) reports: %d\n", skipped)
	}
	if deleted > 0 {
		fmt.Fprintf(out, "Deleted reports ignored: %d\n", deleted)
	}
}
