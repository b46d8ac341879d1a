package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command in-process and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootFlags = struct {
		configPath string
		logLevel   string
		logFormat  string
		markdown   bool
	}{}
	summaryFlags.project, summaryFlags.sprint = "", ""
	summaryFlags.maxFailures, summaryFlags.messageWidth = 20, 60
	searchFlags.query, searchFlags.status = "", "all"
	searchFlags.page, searchFlags.pageSize, searchFlags.suites = 1, 0, false
	classifyFlags.json, classifyFlags.rules = false, false
	t.Setenv("SPRINTLENS_CONFIG", "")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const passingReport = `{"results":[{"title":"Login","tests":[
  {"title":"logs in","state":"passed","duration":100,"err":{}},
  {"title":"logs out","state":"passed","duration":100,"err":{}}
]}]}`

const failingReport = `{"results":[{"title":"Cart","tests":[
  {"title":"pays","state":"failed","duration":300,"err":{"message":"AssertionError: expected 3 to equal 4"}},
  {"title":"coupon","state":"pending","duration":0,"err":{}}
]}]}`

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "reports/login.json", passingReport)
	writeFixture(t, dir, "reports/cart.json", failingReport)
	writeFixture(t, dir, "reports/broken.json", `[1, 2, 3]`)
	return dir
}

func TestSummary(t *testing.T) {
	dir := fixtureDir(t)
	out, err := run(t, "summary", filepath.Join(dir, "reports"), "--project", "shop")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"Pass rate", "66.7%", "Skipped (malformed) reports: 1", "Unexpected Value", "shop / cart.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSummary_MissingPath(t *testing.T) {
	if _, err := run(t, "summary", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestSummary_NegativeWidth(t *testing.T) {
	dir := fixtureDir(t)
	_, err := run(t, "summary", filepath.Join(dir, "reports"), "--width", "-1")
	if err == nil || !strings.Contains(err.Error(), "--width") {
		t.Errorf("err = %v, want a --width error", err)
	}
}

func TestSearch(t *testing.T) {
	dir := fixtureDir(t)
	reports := filepath.Join(dir, "reports")

	out, err := run(t, "search", reports, "--status", "failed", "--suites")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "With failures: 1 report(s)") || !strings.Contains(out, "cart.json") {
		t.Errorf("unexpected search output:\n%s", out)
	}
	if strings.Contains(out, "login.json") {
		t.Errorf("passing report listed under --status failed:\n%s", out)
	}
	if !strings.Contains(out, "[Failed] pays") || strings.Contains(out, "logs in") {
		t.Errorf("suite view wrong:\n%s", out)
	}

	out, err = run(t, "search", reports, "-q", "LOGS OUT", "--markdown")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "| ") || !strings.Contains(out, "login.json") {
		t.Errorf("expected markdown row for login.json:\n%s", out)
	}
}

func TestTrend(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.json", failingReport)
	writeFixture(t, dir, "b.json", passingReport)
	manifest := writeFixture(t, dir, "sprints.json", `{
  "project": "shop",
  "sprints": [
    {"id": "s1", "name": "Sprint 1", "start": "2024-05-06", "reports": [{"path": "a.json"}]},
    {"id": "s2", "name": "Sprint 2", "start": "2024-06-03", "reports": [{"path": "b.json"}]}
  ]
}`)

	out, err := run(t, "trend", manifest)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	for _, want := range []string{"May 2024", "Jun 2024", "Sprint 1", "Sprint 2", "2024-06-03"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "--json", "connect", "ECONNREFUSED", "127.0.0.1:5432")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var rec struct {
		Category string `json:"category"`
		Severity string `json:"severity"`
	}
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if rec.Category != "CONNECTION_REFUSED" || rec.Severity != "high" {
		t.Errorf("record = %+v", rec)
	}

	out, err = run(t, "classify", "--rules")
	if err != nil {
		t.Fatalf("classify --rules: %v", err)
	}
	if !strings.Contains(out, "ELEMENT_NOT_FOUND") {
		t.Errorf("rule listing missing categories:\n%s", out)
	}

	if _, err := run(t, "classify"); err == nil {
		t.Error("expected error without a message")
	}
}

func TestConfig_CustomRules(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "rules.yaml", `rules:
  - pattern: 'quota exceeded'
    category: QUOTA
    translation: The account ran out of quota.
    recommendation: Raise the quota.
    severity: medium
`)
	cfg := writeFixture(t, dir, "sprintlens.yaml", "rules_path: rules.yaml\n")

	out, err := run(t, "--config", cfg, "classify", "API quota exceeded for today")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.Contains(out, "Quota (QUOTA)") || !strings.Contains(out, "Medium") {
		t.Errorf("custom rule not applied:\n%s", out)
	}
}

func TestBadLogLevel(t *testing.T) {
	if _, err := run(t, "--log-level", "chatty", "classify", "x"); err == nil {
		t.Error("expected error for unknown log level")
	}
}
