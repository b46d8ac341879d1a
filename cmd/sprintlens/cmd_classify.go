package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sprintlens/internal/display"
	"sprintlens/internal/format"
)

var classifyFlags struct {
	json  bool
	rules bool
}

var classifyCmd = &cobra.Command{
	Use:   "classify <message...>",
	Short: "Diagnose a failure message",
	Long: `Matches a failure message against the rule table (longest pattern first)
and prints its category, plain-language translation and recommendation.

With --rules, prints the rule table in match order instead.`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.BoolVar(&classifyFlags.json, "json", false, "Print the diagnosis as JSON")
	f.BoolVar(&classifyFlags.rules, "rules", false, "List the rule table in match order")
}

func runClassify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if classifyFlags.rules {
		tb := format.NewTable(tableMode())
		tb.Header("#", "Category", "Severity", "Pattern")
		tb.Columns(format.Column{Number: 4, MaxWidth: 60})
		for i, r := range app.classifier.Rules() {
			tb.Row(i+1, r.Category, display.Severity(r.Severity.String()), r.Pattern)
		}
		fmt.Fprintln(out, tb.String())
		return nil
	}
	if len(args) == 0 {
		return errors.New("a message is required (or use --rules)")
	}

	rec := app.classifier.ClassifyText(strings.Join(args, " "))
	if classifyFlags.json {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Category:       %s\n", display.CategoryWithCode(rec.Category))
	fmt.Fprintf(out, "Severity:       %s\n", display.Severity(rec.Severity.String()))
	fmt.Fprintf(out, "Meaning:        %s\n", rec.Translation)
	fmt.Fprintf(out, "Recommendation: %s\n", rec.Recommendation)
	if rec.ExtraHint != "" {
		fmt.Fprintf(out, "Hint:           %s\n", rec.ExtraHint)
	}
	return nil
}
