// Package testrun holds the normalized model of an uploaded test-run report
// and the flattener that produces it from loosely-typed report JSON.
package testrun

import (
	"strings"
	"time"
)

// Outcome values reported by TestCase.Outcome.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomePending = "pending"
	OutcomeSkipped = "skipped"
)

// StatusDeleted is the upstream lifecycle marker for removed uploads.
const StatusDeleted = "deleted"

// TestCase is one normalized test leaf.
type TestCase struct {
	Title      string   `json:"title"`
	FullTitle  string   `json:"full_title"`
	DurationMs float64  `json:"duration_ms"`
	Passed     bool     `json:"passed"`
	Pending    bool     `json:"pending,omitempty"`
	Skipped    bool     `json:"skipped,omitempty"`
	TimedOut   bool     `json:"timed_out,omitempty"`
	Error      RawError `json:"error"`
}

// Failed reports whether the test did not pass. Pending and skipped tests
// count as not passed.
func (tc TestCase) Failed() bool { return !tc.Passed }

// NotRun reports whether the test was pending or skipped.
func (tc TestCase) NotRun() bool { return tc.Pending || tc.Skipped }

// Outcome returns a single word for the test's result.
func (tc TestCase) Outcome() string {
	switch {
	case tc.Passed:
		return OutcomePassed
	case tc.Pending:
		return OutcomePending
	case tc.Skipped:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// Suite is a normalized grouping node.
type Suite struct {
	Title  string     `json:"title"`
	Tests  []TestCase `json:"tests,omitempty"`
	Suites []Suite    `json:"suites,omitempty"`
}

// Walk visits every test in the subtree in pre-order: a suite's own tests,
// then its child suites in listed order.
func (s Suite) Walk(fn func(TestCase)) {
	for _, tc := range s.Tests {
		fn(tc)
	}
	for _, child := range s.Suites {
		child.Walk(fn)
	}
}

// Meta is the upstream bookkeeping attached to an uploaded report.
type Meta struct {
	FileID      string    `json:"file_id" yaml:"file_id"`
	FileName    string    `json:"file_name" yaml:"file_name"`
	ProjectName string    `json:"project_name" yaml:"project_name"`
	SprintName  string    `json:"sprint_name" yaml:"sprint_name"`
	UploadDate  time.Time `json:"upload_date" yaml:"upload_date"`
	Status      string    `json:"status" yaml:"status"`
}

// Deleted reports whether the upload carries the deleted lifecycle marker.
func (m Meta) Deleted() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), StatusDeleted)
}

// Title is the composite display title: project, sprint and file name,
// skipping empty parts.
func (m Meta) Title() string {
	var parts []string
	for _, p := range []string{m.ProjectName, m.SprintName, m.FileName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}

// Summary is one flattened uploaded report.
type Summary struct {
	Meta
	Root  Suite      `json:"root"`
	Tests []TestCase `json:"tests"`
	Stats Stats      `json:"stats"`
}

// Summarize flattens raw and attaches meta.
func Summarize(meta Meta, raw any) (Summary, error) {
	res, err := Flatten(raw)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Meta: meta, Root: res.Root, Tests: res.Tests, Stats: res.Stats}, nil
}
