package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprintlens/internal/format"
	"sprintlens/internal/ingest"
)

var trendCmd = &cobra.Command{
	Use:   "trend <manifest>",
	Short: "Show passed and failed tests per sprint",
	Long: `Reads a sprint manifest (YAML or JSON) listing sprints in chronological
order with the report files uploaded to each, and prints one row per sprint.

The Month column is shown on the first sprint of each calendar month. Delta
is the percent change of the passed count against the previous sprint.

Manifest layout:

  project: shop
  sprints:
    - id: s12
      name: Sprint 12
      start: 2024-01-01
      end: 2024-01-14
      reports:
        - path: reports/run-1.json
          status: deleted   # optional lifecycle marker
          uploaded: 2024-01-12`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func runTrend(cmd *cobra.Command, args []string) error {
	m, err := ingest.LoadManifest(args[0])
	if err != nil {
		return err
	}
	sprints, failed, err := m.SprintInputs(cmd.Context(), loader())
	if err != nil {
		return err
	}
	tr := builder().Trend(sprints)
	out := cmd.OutOrStdout()

	tb := format.NewTable(tableMode())
	if m.Project != "" {
		tb.Title(m.Project)
	}
	tb.Header("Month", "Sprint", "Start", "End", "Reports", "Tests", "Passed", "Failed", "Pass rate", "Delta")
	for i, p := range tr.Points {
		month := ""
		if p.FirstInMonth {
			month = p.MonthLabel
		}
		delta := "-"
		if i > 0 {
			delta = format.Delta(p.Delta)
		}
		tb.Row(month, p.SprintLabel, format.Date(p.StartDate), format.Date(p.EndDate),
			p.Reports, p.Tests, p.Passed, p.Failed, format.Percent(p.PassRate), delta)
	}
	fmt.Fprintln(out, tb.String())
	printExclusions(out, len(failed), tr.Skipped, 0)
	return nil
}
