// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output and Markdown tables.
// Keep raw codes for JSON fields, map keys and equality comparisons.
package display

import "strings"

// --- Diagnostic categories ---

var categories = map[string]string{
	"NO_ERROR":            "No Error",
	"UNKNOWN":             "Unclassified",
	"TIMEOUT":             "Timeout",
	"TEST_TIMEOUT":        "Test Timeout",
	"RETRY_TIMEOUT":       "Retry Timeout",
	"ELEMENT_NOT_FOUND":   "Element Not Found",
	"ELEMENT_NOT_VISIBLE": "Element Not Visible",
	"ELEMENT_COVERED":     "Element Covered",
	"ELEMENT_DETACHED":    "Element Detached",
	"ELEMENT_DISABLED":    "Element Disabled",
	"NAVIGATION_TIMEOUT":  "Navigation Timeout",
	"NAVIGATION_FAILED":   "Navigation Failed",
	"ASSERTION":           "Assertion Failure",
	"ASSERTION_VALUE":     "Unexpected Value",
	"ASSERTION_CONTENT":   "Unexpected Content",
	"SNAPSHOT_MISMATCH":   "Snapshot Mismatch",
	"CONNECTION_REFUSED":  "Connection Refused",
	"CONNECTION_RESET":    "Connection Reset",
	"DNS_FAILURE":         "DNS Failure",
	"NETWORK":             "Network Error",
	"HTTP_SERVER_ERROR":   "Server Error (5xx)",
	"HTTP_CLIENT_ERROR":   "Client Error (4xx)",
	"HTTP_NOT_FOUND":      "Not Found (404)",
	"AUTHENTICATION":      "Authentication Failure",
	"TYPE_ERROR":          "Type Error",
	"NULL_REFERENCE":      "Null Reference",
	"REFERENCE_ERROR":     "Reference Error",
	"SYNTAX_ERROR":        "Syntax Error",
	"UNCAUGHT_EXCEPTION":  "Uncaught Exception",
	"DATABASE":            "Database Error",
	"OUT_OF_MEMORY":       "Out of Memory",
	"MISSING_FILE":        "Missing File",
	"HOOK_FAILURE":        "Hook Failure",
}

// Category returns the human-readable name for a diagnostic category code.
// Unknown codes are title-cased from their underscore form:
// "FLAKY_SELECTOR" -> "Flaky Selector".
func Category(code string) string {
	if name, ok := categories[code]; ok {
		return name
	}
	return titleCase(code)
}

// CategoryWithCode returns "Timeout (TIMEOUT)" format.
func CategoryWithCode(code string) string {
	if code == "" {
		return ""
	}
	return Category(code) + " (" + code + ")"
}

func titleCase(code string) string {
	words := strings.FieldsFunc(code, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// --- Severities ---

var severities = map[string]string{
	"low":    "Low",
	"medium": "Medium",
	"high":   "High",
}

// Severity capitalizes a severity level; unknown values pass through.
func Severity(level string) string {
	if name, ok := severities[strings.ToLower(level)]; ok {
		return name
	}
	return level
}

// SeverityMark returns a one-character marker used in dense tables.
func SeverityMark(level string) string {
	switch strings.ToLower(level) {
	case "high":
		return "!!"
	case "medium":
		return "!"
	}
	return "."
}

// --- Test outcomes ---

var outcomes = map[string]string{
	"passed":  "Passed",
	"failed":  "Failed",
	"pending": "Pending",
	"skipped": "Skipped",
}

// Outcome returns the display word for a test outcome.
func Outcome(code string) string {
	if name, ok := outcomes[code]; ok {
		return name
	}
	return code
}

// --- Status filters ---

var statusFilters = map[string]string{
	"all":    "All reports",
	"passed": "Fully passing",
	"failed": "With failures",
}

// StatusFilter describes the pass/fail filter in effect.
func StatusFilter(code string) string {
	if name, ok := statusFilters[code]; ok {
		return name
	}
	return statusFilters["all"]
}
