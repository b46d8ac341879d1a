package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprintlens/internal/dashboard"
	"sprintlens/internal/display"
	"sprintlens/internal/format"
	"sprintlens/internal/testrun"
)

var summaryFlags struct {
	project      string
	sprint       string
	maxFailures  int
	messageWidth int
}

var summaryCmd = &cobra.Command{
	Use:   "summary <report files or dirs...>",
	Short: "Total up reports and break failures down by diagnosis",
	Long: `Reads every report, sums tests, passes, failures and pending tests over
the reports that are not deleted, and lists each failing test with its
diagnostic category and recommendation.

Directories contribute all *.json files below them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryFlags.project, "project", "", "Project name attached to every report")
	f.StringVar(&summaryFlags.sprint, "sprint", "", "Sprint name attached to every report")
	f.IntVar(&summaryFlags.maxFailures, "max-failures", 20, "Failures to list (0 = none)")
	f.IntVar(&summaryFlags.messageWidth, "width", 60, "Truncate long failure text to this many characters")
}

func runSummary(cmd *cobra.Command, args []string) error {
	if summaryFlags.messageWidth < 0 {
		return fmt.Errorf("--width must not be negative, got %d", summaryFlags.messageWidth)
	}
	uploads, unreadable, err := loadUploads(cmd.Context(), args, testrun.Meta{
		ProjectName: summaryFlags.project,
		SprintName:  summaryFlags.sprint,
	})
	if err != nil {
		return err
	}
	v := builder().Build(uploads, dashboard.Query{})
	out := cmd.OutOrStdout()

	totals := format.NewTable(tableMode())
	totals.Header("Reports", "Tests", "Passed", "Failed", "Pending", "Pass rate", "Duration")
	totals.Row(v.Reports, v.Totals.Tests, v.Totals.Passes, v.Totals.Failures-v.Totals.Pending,
		v.Totals.Pending, format.Percent(v.PassRate), format.DurationMs(v.Totals.DurationMs))
	fmt.Fprintln(out, totals.String())
	printExclusions(out, unreadable, v.Skipped, v.Deleted)

	if len(v.Categories) > 0 {
		cats := format.NewTable(tableMode())
		cats.Title("Failures by category")
		cats.Header("Category", "Severity", "Count")
		cats.Columns(format.Column{Number: 3, Align: format.AlignRight})
		for _, c := range v.Categories {
			cats.Row(display.CategoryWithCode(c.Category), display.Severity(c.Severity.String()), c.Count)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, cats.String())
	}

	if summaryFlags.maxFailures > 0 && len(v.Failures) > 0 {
		printFailures(cmd, v.Failures)
	}
	return nil
}

func printFailures(cmd *cobra.Command, failures []dashboard.Failure) {
	out := cmd.OutOrStdout()
	width := summaryFlags.messageWidth
	tb := format.NewTable(tableMode())
	tb.Title("Failing tests")
	tb.Header("Report", "Test", "Diagnosis", "Recommendation")
	for i, f := range failures {
		if i == summaryFlags.maxFailures {
			break
		}
		rec := f.Diagnosis.Recommendation
		if f.Diagnosis.ExtraHint != "" {
			rec += " " + f.Diagnosis.ExtraHint
		}
		tb.Row(f.Report, format.Truncate(f.Test, width),
			display.SeverityMark(f.Diagnosis.Severity.String())+" "+display.Category(f.Diagnosis.Category),
			format.Truncate(rec, width))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, tb.String())
	if n := len(failures) - summaryFlags.maxFailures; n > 0 {
		fmt.Fprintf(out, "... and %d more\n", n)
	}
}
