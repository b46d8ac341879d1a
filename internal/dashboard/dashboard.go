// Package dashboard composes flattening, filtering, classification and
// aggregation into the views the CLI and MCP server present.
package dashboard

import (
	"sprintlens/internal/aggregate"
	"sprintlens/internal/diagnose"
	"sprintlens/internal/filter"
	"sprintlens/internal/testrun"
)

// Query is the user's dashboard state: search term, status filter and the
// requested page.
type Query struct {
	Search   string        `json:"search"`
	Status   filter.Status `json:"status"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func (q Query) filter() filter.Query {
	return filter.Query{Search: q.Search, Status: filter.ParseStatus(string(q.Status))}
}

// Failure is one failing test with its diagnosis.
type Failure struct {
	Report    string
	Test      string
	Outcome   string
	Diagnosis diagnose.Record
}

// View is everything a dashboard screen shows.
type View struct {
	Query Query

	// Totals cover every non-deleted report, regardless of the query.
	Totals   testrun.Stats
	PassRate float64
	Reports  int
	Deleted  int
	Skipped  int

	// Page holds the reports selected by the query.
	Page       filter.Page[testrun.Summary]
	Failures   []Failure
	Categories []aggregate.CategoryCount
}

// Builder produces views. The zero value uses the default classifier and
// logs through the aggregate component logger.
type Builder struct {
	Collector  aggregate.Collector
	Classifier *diagnose.Classifier
}

func (b Builder) classifier() *diagnose.Classifier {
	if b.Classifier != nil {
		return b.Classifier
	}
	return diagnose.Default()
}

// Build flattens uploads and renders the view for q. Reports that fail to
// flatten are counted in Skipped. The requested page is clamped to the
// available range.
func (b Builder) Build(uploads []aggregate.Upload, q Query) View {
	batch := b.Collector.Collect(uploads)
	return b.View(batch.Reports, batch.Skipped, q)
}

// View renders already-flattened reports.
func (b Builder) View(reports []testrun.Summary, skipped int, q Query) View {
	live := aggregate.Live(reports)
	totals := aggregate.AggregateReports(live)

	selected := filter.Filter(reports, q.filter())
	first := filter.Paginate(selected, 1, q.PageSize)
	page := filter.Paginate(selected, filter.ClampPage(q.Page, first.TotalPages), q.PageSize)

	q.Page = page.Page
	q.PageSize = page.PageSize
	q.Status = q.filter().Status

	c := b.classifier()
	return View{
		Query:      q,
		Totals:     totals,
		PassRate:   totals.PassRate(),
		Reports:    len(live),
		Deleted:    len(reports) - len(live),
		Skipped:    skipped,
		Page:       page,
		Failures:   Failures(selected, c),
		Categories: aggregate.Categories(selected, c),
	}
}

// Failures lists every test that ran and did not pass, in report order, with
// its diagnosis.
func Failures(reports []testrun.Summary, c *diagnose.Classifier) []Failure {
	var out []Failure
	for _, r := range reports {
		for _, tc := range r.Tests {
			if tc.Passed || tc.NotRun() {
				continue
			}
			out = append(out, Failure{
				Report:    r.Title(),
				Test:      tc.FullTitle,
				Outcome:   tc.Outcome(),
				Diagnosis: c.Classify(tc.Error),
			})
		}
	}
	return out
}
