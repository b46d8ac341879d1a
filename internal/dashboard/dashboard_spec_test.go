package dashboard

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"sprintlens/internal/aggregate"
	"sprintlens/internal/diagnose"
	"sprintlens/internal/filter"
	"sprintlens/internal/logging"
	"sprintlens/internal/testrun"
)

func specTest(title, state string, err any) map[string]any {
	return map[string]any{
		"title":     title,
		"fullTitle": title,
		"state":     state,
		"duration":  10,
		"err":       err,
	}
}

func specReport(suite string, tests ...map[string]any) map[string]any {
	list := make([]any, len(tests))
	for i, t := range tests {
		list[i] = t
	}
	return map[string]any{"results": []any{map[string]any{"title": suite, "tests": list}}}
}

func passing(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = specTest("case", "passed", map[string]any{})
	}
	return out
}

func failing(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = specTest("case", "failed", "AssertionError: expected 1 to equal 2")
	}
	return out
}

func upload(name, status string, raw any) aggregate.Upload {
	return aggregate.Upload{
		Meta: testrun.Meta{FileID: name, FileName: name, ProjectName: "shop", Status: status},
		Raw:  raw,
	}
}

var _ = ginkgo.Describe("Dashboard", func() {
	var b Builder

	ginkgo.BeforeEach(func() {
		b = Builder{
			Collector:  aggregate.Collector{Logger: logging.Discard()},
			Classifier: diagnose.Default(),
		}
	})

	ginkgo.Describe("Build", func() {
		var uploads []aggregate.Upload

		ginkgo.BeforeEach(func() {
			uploads = []aggregate.Upload{
				upload("login.json", "", specReport("Login",
					specTest("logs in", "passed", nil),
					specTest("logs out", "passed", map[string]any{}),
				)),
				upload("cart.json", "", specReport("Cart",
					specTest("adds item", "passed", nil),
					specTest("checks out", "failed", "Timed out retrying after 4000ms: Expected to find element: `.pay`, but never found it."),
					specTest("applies coupon", "pending", nil),
				)),
				upload("broken.json", "", "not an object"),
				upload("gone.json", "deleted", specReport("Gone", failing(3)...)),
			}
		})

		ginkgo.It("totals live reports and counts what was left out", func() {
			v := b.Build(uploads, Query{})

			gomega.Expect(v.Totals.Tests).To(gomega.Equal(5))
			gomega.Expect(v.Totals.Passes).To(gomega.Equal(3))
			gomega.Expect(v.Totals.Failures).To(gomega.Equal(2))
			gomega.Expect(v.Totals.Pending).To(gomega.Equal(1))
			gomega.Expect(v.PassRate).To(gomega.Equal(75.0))
			gomega.Expect(v.Reports).To(gomega.Equal(2))
			gomega.Expect(v.Deleted).To(gomega.Equal(1))
			gomega.Expect(v.Skipped).To(gomega.Equal(1))
		})

		ginkgo.It("diagnoses failures that ran and skips pending tests", func() {
			v := b.Build(uploads, Query{})

			gomega.Expect(v.Failures).To(gomega.HaveLen(1))
			f := v.Failures[0]
			gomega.Expect(f.Report).To(gomega.Equal("shop / cart.json"))
			gomega.Expect(f.Test).To(gomega.Equal("checks out"))
			gomega.Expect(f.Outcome).To(gomega.Equal(testrun.OutcomeFailed))
			gomega.Expect(f.Diagnosis.Category).To(gomega.Equal("ELEMENT_NOT_FOUND"))

			gomega.Expect(v.Categories).To(gomega.HaveLen(1))
			gomega.Expect(v.Categories[0].Count).To(gomega.Equal(1))
		})

		ginkgo.It("applies the status filter asymmetrically", func() {
			passed := b.Build(uploads, Query{Status: filter.StatusPassed})
			gomega.Expect(passed.Page.TotalCount).To(gomega.Equal(1))
			gomega.Expect(passed.Page.Items[0].FileName).To(gomega.Equal("login.json"))
			gomega.Expect(passed.Failures).To(gomega.BeEmpty())

			failed := b.Build(uploads, Query{Status: filter.StatusFailed})
			gomega.Expect(failed.Page.TotalCount).To(gomega.Equal(1))
			gomega.Expect(failed.Page.Items[0].FileName).To(gomega.Equal("cart.json"))
		})

		ginkgo.It("keeps totals independent of the search", func() {
			v := b.Build(uploads, Query{Search: "coupon"})

			gomega.Expect(v.Page.TotalCount).To(gomega.Equal(1))
			gomega.Expect(v.Totals.Tests).To(gomega.Equal(5))
		})

		ginkgo.It("clamps the requested page and normalizes the query", func() {
			v := b.Build(uploads, Query{Page: 42, PageSize: 1, Status: "bogus"})

			gomega.Expect(v.Page.TotalPages).To(gomega.Equal(2))
			gomega.Expect(v.Page.Page).To(gomega.Equal(2))
			gomega.Expect(v.Page.Items).To(gomega.HaveLen(1))
			gomega.Expect(v.Query.Page).To(gomega.Equal(2))
			gomega.Expect(v.Query.Status).To(gomega.Equal(filter.StatusAll))
		})

		ginkgo.It("renders an empty dashboard without data", func() {
			v := b.Build(nil, Query{})

			gomega.Expect(v.Totals).To(gomega.Equal(testrun.Stats{}))
			gomega.Expect(v.PassRate).To(gomega.BeZero())
			gomega.Expect(v.Page.Items).To(gomega.BeEmpty())
			gomega.Expect(v.Page.Page).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("Trend", func() {
		ginkgo.It("reports two sprints with their delta", func() {
			sprints := []aggregate.SprintInput{
				{
					SprintID:  "a",
					Name:      "Sprint A",
					StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					Reports:   []aggregate.Upload{upload("a.json", "", specReport("A", append(passing(8), failing(2)...)...))},
				},
				{
					SprintID:  "b",
					Name:      "Sprint B",
					StartDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
					Reports: []aggregate.Upload{
						upload("b.json", "", specReport("B", passing(10)...)),
						upload("b-old.json", "deleted", specReport("B", failing(5)...)),
					},
				},
			}

			tr := b.Trend(sprints)

			gomega.Expect(tr.Points).To(gomega.HaveLen(2))
			gomega.Expect(tr.Points[0].Passed).To(gomega.Equal(8))
			gomega.Expect(tr.Points[0].Failed).To(gomega.Equal(2))
			gomega.Expect(tr.Points[0].PassRate).To(gomega.Equal(80.0))
			gomega.Expect(tr.Points[0].Delta).To(gomega.BeZero())
			gomega.Expect(tr.Points[1].Passed).To(gomega.Equal(10))
			gomega.Expect(tr.Points[1].Failed).To(gomega.Equal(0))
			gomega.Expect(tr.Points[1].PassRate).To(gomega.Equal(100.0))
			gomega.Expect(tr.Points[1].Delta).To(gomega.Equal(25.0))

			gomega.Expect(tr.Points[0].FirstInMonth).To(gomega.BeTrue())
			gomega.Expect(tr.Points[0].LastInMonth).To(gomega.BeFalse())
			gomega.Expect(tr.Points[1].LastInMonth).To(gomega.BeTrue())
		})

		ginkgo.It("counts broken uploads without dropping the sprint", func() {
			tr := b.Trend([]aggregate.SprintInput{{Name: "X", Reports: []aggregate.Upload{upload("x.json", "", 42)}}})

			gomega.Expect(tr.Points).To(gomega.HaveLen(1))
			gomega.Expect(tr.Points[0].Tests).To(gomega.BeZero())
			gomega.Expect(tr.Points[0].MonthLabel).To(gomega.Equal(aggregate.UnknownMonth))
			gomega.Expect(tr.Skipped).To(gomega.Equal(1))
		})
	})
})
