// Package aggregate combines flattened reports into dashboard totals and a
// per-sprint trend series.
package aggregate

import (
	"log/slog"
	"math"
	"slices"
	"strings"

	"sprintlens/internal/diagnose"
	"sprintlens/internal/logging"
	"sprintlens/internal/testrun"
)

// Upload is one uploaded report before flattening.
type Upload struct {
	testrun.Meta
	Raw any
}

// Batch is the outcome of flattening a set of uploads. Skipped counts the
// uploads that could not be flattened.
type Batch struct {
	Reports []testrun.Summary
	Skipped int
}

// Collector flattens uploads, dropping and logging the ones that fail.
type Collector struct {
	Flattener testrun.Flattener
	Logger    *slog.Logger
}

// Collect flattens uploads with default settings.
func Collect(uploads []Upload) Batch {
	return Collector{}.Collect(uploads)
}

// Collect flattens every upload in order. A failing upload is excluded and
// counted; it never aborts the rest of the batch.
func (c Collector) Collect(uploads []Upload) Batch {
	logger := c.logger()
	b := Batch{Reports: make([]testrun.Summary, 0, len(uploads))}
	for _, u := range uploads {
		res, err := c.Flattener.Flatten(u.Raw)
		if err != nil {
			b.Skipped++
			logger.Warn("skipping report", "file_id", u.FileID, "file", u.FileName, "error", err)
			continue
		}
		b.Reports = append(b.Reports, testrun.Summary{Meta: u.Meta, Root: res.Root, Tests: res.Tests, Stats: res.Stats})
	}
	if b.Skipped > 0 {
		logger.Info("collected reports", "kept", len(b.Reports), "skipped", b.Skipped)
	}
	return b
}

func (c Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.New("aggregate")
}

// Live drops reports carrying the deleted lifecycle marker.
func Live(reports []testrun.Summary) []testrun.Summary {
	out := make([]testrun.Summary, 0, len(reports))
	for _, r := range reports {
		if !r.Deleted() {
			out = append(out, r)
		}
	}
	return out
}

// AggregateReports sums the stats of every report. Empty input yields the
// zero Stats.
func AggregateReports(reports []testrun.Summary) testrun.Stats {
	var total testrun.Stats
	for _, r := range reports {
		total = total.Add(r.Stats)
	}
	return total
}

// Percent is part/total as a percentage rounded to one decimal, 0 when total
// is not positive.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

// PeriodDelta is the percent change from previous to current, rounded to one
// decimal. It is 0 when previous is zero or either value is not finite.
func PeriodDelta(current, previous float64) float64 {
	if previous == 0 || !finite(previous) || !finite(current) {
		return 0
	}
	return round1((current - previous) / previous * 100)
}

// PeriodDeltaPtr is PeriodDelta with an optional previous value; nil means
// there is no previous period.
func PeriodDeltaPtr(current float64, previous *float64) float64 {
	if previous == nil {
		return 0
	}
	return PeriodDelta(current, *previous)
}

// CategoryCount is the number of failing tests per diagnostic category.
type CategoryCount struct {
	Category string
	Severity diagnose.Severity
	Count    int
}

// Categories classifies every failed test that ran and counts them per
// category, most frequent first. Pending and skipped tests are not
// classified.
func Categories(reports []testrun.Summary, c *diagnose.Classifier) []CategoryCount {
	counts := map[string]*CategoryCount{}
	for _, r := range reports {
		for _, tc := range r.Tests {
			if tc.Passed || tc.NotRun() {
				continue
			}
			rec := c.Classify(tc.Error)
			cc, ok := counts[rec.Category]
			if !ok {
				cc = &CategoryCount{Category: rec.Category, Severity: rec.Severity}
				counts[rec.Category] = cc
			}
			cc.Count++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, cc := range counts {
		out = append(out, *cc)
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
