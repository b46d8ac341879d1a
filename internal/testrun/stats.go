package testrun

import "math"

// Stats is the four-field run summary plus the pending subset. Combining two
// Stats is field-wise addition and the zero value is the identity.
//
// Passes + Failures == Tests always holds. Pending and skipped tests are
// counted as failures for that complement and additionally tallied in
// Pending so rates can exclude them.
type Stats struct {
	Tests      int     `json:"tests"`
	Passes     int     `json:"passes"`
	Failures   int     `json:"failures"`
	Pending    int     `json:"pending"`
	DurationMs float64 `json:"duration_ms"`
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Tests:      s.Tests + o.Tests,
		Passes:     s.Passes + o.Passes,
		Failures:   s.Failures + o.Failures,
		Pending:    s.Pending + o.Pending,
		DurationMs: s.DurationMs + o.DurationMs,
	}
}

// Record folds one test into the stats.
func (s Stats) Record(tc TestCase) Stats {
	s.Tests++
	if tc.Passed {
		s.Passes++
	} else {
		s.Failures++
	}
	if !tc.Passed && tc.NotRun() {
		s.Pending++
	}
	s.DurationMs += tc.DurationMs
	return s
}

// Executed is the number of tests that actually ran.
func (s Stats) Executed() int { return s.Tests - s.Pending }

// Empty reports whether there is no data.
func (s Stats) Empty() bool { return s.Tests == 0 }

// PassRate is passes over executed tests as a percentage with one decimal.
// It is 0 when nothing ran.
func (s Stats) PassRate() float64 {
	return ratio(s.Passes, s.Executed())
}

// FailRate is the executed-failure percentage with one decimal.
func (s Stats) FailRate() float64 {
	return ratio(s.Failures-s.Pending, s.Executed())
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
