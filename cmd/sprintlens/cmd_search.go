package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sprintlens/internal/dashboard"
	"sprintlens/internal/display"
	"sprintlens/internal/filter"
	"sprintlens/internal/format"
	"sprintlens/internal/testrun"
)

var searchFlags struct {
	query    string
	status   string
	page     int
	pageSize int
	suites   bool
}

var searchCmd = &cobra.Command{
	Use:   "search <report files or dirs...>",
	Short: "Search reports by title, suite or test and filter by outcome",
	Long: `Lists one page of the reports matching the search term and status filter.

A report matches when its title, any suite title or any test title contains
the term (case-insensitive). --status passed keeps reports in which every
test passed; --status failed keeps reports with at least one test that did
not pass. Deleted reports never appear.

With --suites each listed report is printed as its pruned suite tree.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.query, "query", "q", "", "Search term")
	f.StringVar(&searchFlags.status, "status", string(filter.StatusAll), "Status filter: all, passed, failed")
	f.IntVar(&searchFlags.page, "page", 1, "Page number (1-based)")
	f.IntVar(&searchFlags.pageSize, "page-size", 0, "Reports per page (default from config)")
	f.BoolVar(&searchFlags.suites, "suites", false, "Print the matching suite tree of each report")
}

func runSearch(cmd *cobra.Command, args []string) error {
	uploads, unreadable, err := loadUploads(cmd.Context(), args, testrun.Meta{})
	if err != nil {
		return err
	}
	size := searchFlags.pageSize
	if size <= 0 {
		size = app.cfg.PageSize
	}
	v := builder().Build(uploads, dashboard.Query{
		Search:   searchFlags.query,
		Status:   filter.Status(searchFlags.status),
		Page:     searchFlags.page,
		PageSize: size,
	})
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s", display.StatusFilter(string(v.Query.Status)))
	if q := strings.TrimSpace(v.Query.Search); q != "" {
		fmt.Fprintf(out, " matching %q", q)
	}
	fmt.Fprintf(out, ": %d report(s)\n", v.Page.TotalCount)
	printExclusions(out, unreadable, v.Skipped, 0)

	if v.Page.TotalCount == 0 {
		return nil
	}

	tb := format.NewTable(tableMode())
	tb.Header("#", "Report", "Tests", "Passed", "Failed", "Pending", "Pass rate", "OK")
	offset := (v.Page.Page - 1) * v.Page.PageSize
	for i, r := range v.Page.Items {
		s := r.Stats
		tb.Row(offset+i+1, r.Title(), s.Tests, s.Passes, s.Failures-s.Pending, s.Pending,
			format.Percent(s.PassRate()), format.BoolMark(s.Failures == 0))
	}
	fmt.Fprintln(out, tb.String())
	fmt.Fprintf(out, "Page %d of %d\n", v.Page.Page, v.Page.TotalPages)

	if searchFlags.suites {
		q := filter.Query{Search: v.Query.Search, Status: v.Query.Status}
		for _, r := range v.Page.Items {
			root, ok := filter.FilterSuite(r.Root, q)
			if !ok {
				continue
			}
			fmt.Fprintf(out, "\n%s\n", r.Title())
			printSuite(out, root, 1)
		}
	}
	return nil
}

func printSuite(out io.Writer, s testrun.Suite, depth int) {
	indent := strings.Repeat("  ", depth)
	if s.Title != "" {
		fmt.Fprintf(out, "%s%s\n", indent, s.Title)
		indent += "  "
		depth++
	}
	for _, tc := range s.Tests {
		fmt.Fprintf(out, "%s[%s] %s (%s)\n", indent, display.Outcome(tc.Outcome()), tc.Title, format.DurationMs(tc.DurationMs))
	}
	for _, child := range s.Suites {
		printSuite(out, child, depth)
	}
}
