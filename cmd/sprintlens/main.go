// sprintlens summarizes uploaded test-run reports: totals, failure
// diagnostics, filtered search and sprint-over-sprint trends.
//
// Usage:
//
//	sprintlens summary <reports...> [--project NAME] [--sprint NAME]
//	sprintlens search  <reports...> [-q TERM] [--status all|passed|failed] [--page N] [--suites]
//	sprintlens trend   <manifest.yaml>
//	sprintlens classify <message...> [--json] [--rules]
//	sprintlens serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
