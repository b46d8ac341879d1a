// Package filter selects the reports and suites a dashboard shows for a
// search term and pass/fail filter, and slices the result into pages.
//
// Every function here is a pure function of its arguments: callers own the
// query state and re-invoke with it.
package filter

import (
	"strings"

	"sprintlens/internal/testrun"
)

// Status selects reports by outcome.
type Status string

const (
	StatusAll    Status = "all"
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// ParseStatus maps a user-supplied value to a Status. Empty and unknown
// values mean all.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPassed:
		return StatusPassed
	case StatusFailed:
		return StatusFailed
	default:
		return StatusAll
	}
}

// Query is the user's search and filter state.
type Query struct {
	Search string `json:"search"`
	Status Status `json:"status"`
}

func (q Query) term() string {
	return strings.ToLower(strings.TrimSpace(q.Search))
}

// Filter returns the reports matching q, in input order. Deleted reports are
// always dropped.
//
// A report matches the search when its composite title, any suite title or
// any test title/fullTitle contains the term. With StatusPassed every test
// must have passed; with StatusFailed at least one must not have.
func Filter(reports []testrun.Summary, q Query) []testrun.Summary {
	term := q.term()
	status := ParseStatus(string(q.Status))
	out := make([]testrun.Summary, 0, len(reports))
	for _, r := range reports {
		if r.Deleted() {
			continue
		}
		if term != "" && !contains(r.Title(), term) && !subtreeMatches(r.Root, term) && !anyTestMatches(r.Tests, term) {
			continue
		}
		if !statusHolds(r.Tests, status) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterSuite prunes a report's suite tree to what q selects. A suite stays
// visible when something in its subtree matches, so a matching test is never
// hidden by its parents' titles. When a suite's own title matches, all of its
// tests are listed; otherwise only the matching ones. StatusFailed lists only
// tests that did not pass.
//
// The returned bool is false when nothing in root is selected.
func FilterSuite(root testrun.Suite, q Query) (testrun.Suite, bool) {
	return pruneSuite(root, q.term(), ParseStatus(string(q.Status)), false)
}

func pruneSuite(s testrun.Suite, term string, status Status, ancestorMatched bool) (testrun.Suite, bool) {
	var all []testrun.TestCase
	s.Walk(func(tc testrun.TestCase) { all = append(all, tc) })
	if !statusHolds(all, status) {
		return testrun.Suite{}, false
	}

	titleMatched := ancestorMatched || term == "" || contains(s.Title, term)
	out := testrun.Suite{Title: s.Title}
	for _, tc := range s.Tests {
		if !titleMatched && !testMatches(tc, term) {
			continue
		}
		if status == StatusFailed && tc.Passed {
			continue
		}
		out.Tests = append(out.Tests, tc)
	}
	for _, child := range s.Suites {
		if pruned, ok := pruneSuite(child, term, status, titleMatched); ok {
			out.Suites = append(out.Suites, pruned)
		}
	}

	return out, titleMatched || len(out.Tests) > 0 || len(out.Suites) > 0
}

func statusHolds(tests []testrun.TestCase, status Status) bool {
	switch status {
	case StatusPassed:
		for _, tc := range tests {
			if !tc.Passed {
				return false
			}
		}
		return true
	case StatusFailed:
		for _, tc := range tests {
			if !tc.Passed {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func subtreeMatches(s testrun.Suite, term string) bool {
	if contains(s.Title, term) || anyTestMatches(s.Tests, term) {
		return true
	}
	for _, child := range s.Suites {
		if subtreeMatches(child, term) {
			return true
		}
	}
	return false
}

func anyTestMatches(tests []testrun.TestCase, term string) bool {
	for _, tc := range tests {
		if testMatches(tc, term) {
			return true
		}
	}
	return false
}

func testMatches(tc testrun.TestCase, term string) bool {
	return contains(tc.Title, term) || contains(tc.FullTitle, term)
}

// contains reports whether s contains the already-lowercased term.
func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}
