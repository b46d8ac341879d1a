// Package ingest reads uploaded report files and sprint manifests from disk
// and turns them into aggregate uploads.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"sprintlens/internal/aggregate"
	"sprintlens/internal/logging"
	"sprintlens/internal/testrun"
)

// ErrNoReports is returned when the given paths hold no report files.
var ErrNoReports = errors.New("no report files found")

// FileRef names a report file and the metadata to attach to it.
type FileRef struct {
	Path string
	Meta testrun.Meta
}

// FileError records a report file that could not be read or decoded.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Result is the outcome of loading a set of files. Uploads keep the order of
// the requested files; unreadable files are listed in Failed instead.
type Result struct {
	Uploads []aggregate.Upload
	Failed  []FileError
}

// Loader reads report files concurrently.
type Loader struct {
	Parallel int
	Logger   *slog.Logger
}

// Load reads and decodes every file. A file that cannot be read or is not
// JSON is recorded in Result.Failed and does not stop the others. Only
// context cancellation aborts the call.
func (l Loader) Load(ctx context.Context, refs []FileRef) (Result, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.New("ingest")
	}
	parallel := l.Parallel
	if parallel <= 0 {
		parallel = 1
	}

	uploads := make([]aggregate.Upload, len(refs))
	errs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := readReport(ref.Path)
			if err != nil {
				errs[i] = err
				return nil
			}
			meta := ref.Meta
			if meta.FileName == "" {
				meta.FileName = filepath.Base(ref.Path)
			}
			if meta.FileID == "" {
				meta.FileID = ref.Path
			}
			uploads[i] = aggregate.Upload{Meta: meta, Raw: raw}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("load reports: %w", err)
	}

	var res Result
	for i, ref := range refs {
		if errs[i] != nil {
			logger.Warn("unreadable report", "path", ref.Path, "error", errs[i])
			res.Failed = append(res.Failed, FileError{Path: ref.Path, Err: errs[i]})
			continue
		}
		res.Uploads = append(res.Uploads, uploads[i])
	}
	logger.Debug("loaded reports", "files", len(refs), "failed", len(res.Failed))
	return res, nil
}

func readReport(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return testrun.Decode(data)
}

// ExpandPaths turns files and directories into a sorted list of report
// files. Directories contribute their *.json files, recursively. A missing
// path is an error; so is ending up with no files.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("report path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	if len(out) == 0 {
		return nil, ErrNoReports
	}
	return out, nil
}

// Refs pairs each path with a copy of base metadata and the file's
// modification time as the upload date.
func Refs(paths []string, base testrun.Meta) []FileRef {
	refs := make([]FileRef, 0, len(paths))
	for _, p := range paths {
		meta := base
		if info, err := os.Stat(p); err == nil && meta.UploadDate.IsZero() {
			meta.UploadDate = info.ModTime()
		}
		refs = append(refs, FileRef{Path: p, Meta: meta})
	}
	return refs
}
