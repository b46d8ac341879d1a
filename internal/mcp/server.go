// Package mcp exposes the sprintlens dashboard as Model Context Protocol
// tools so an agent can summarize, search and trend uploaded test reports.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sprintlens/internal/aggregate"
	"sprintlens/internal/config"
	"sprintlens/internal/dashboard"
	"sprintlens/internal/diagnose"
	"sprintlens/internal/display"
	"sprintlens/internal/filter"
	"sprintlens/internal/ingest"
	"sprintlens/internal/logging"
	"sprintlens/internal/testrun"
)

// MaxFailures caps the failures listed by summarize_reports.
var MaxFailures = 50

// Server wraps the MCP SDK server and the dashboard it serves.
type Server struct {
	MCPServer   *sdkmcp.Server
	ProjectRoot string

	cfg     config.Config
	builder dashboard.Builder
	loader  ingest.Loader
}

// NewServer creates an MCP server with the dashboard tools registered. A nil
// classifier uses the built-in rule table. Relative report paths resolve
// against the current working directory.
func NewServer(version string, cfg config.Config, classifier *diagnose.Classifier) *Server {
	cwd, _ := os.Getwd()
	if classifier == nil {
		classifier = diagnose.Default()
	}
	s := &Server{
		ProjectRoot: cwd,
		cfg:         cfg,
		builder: dashboard.Builder{
			Collector:  aggregate.Collector{Flattener: testrun.Flattener{MaxDepth: cfg.MaxDepth}},
			Classifier: classifier,
		},
		loader: ingest.Loader{Parallel: cfg.Parallel},
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "sprintlens", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "summarize_reports",
		Description: "Aggregate test report files: totals, pass rate, failure diagnostics and failure categories. Deleted and unreadable reports are counted but excluded.",
	}, s.handleSummarize)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_reports",
		Description: "Search report files by title, suite or test name and filter by status (all, passed, failed). Returns one page of matching reports.",
	}, s.handleSearch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "sprint_trend",
		Description: "Build the per-sprint pass/fail series from a sprint manifest file, with month boundaries and sprint-over-sprint deltas.",
	}, s.handleTrend)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "classify_error",
		Description: "Classify a test failure message into a diagnostic category with a plain-language translation and recommendation.",
	}, s.handleClassify)
}

// --- Tool input/output types ---

type summarizeInput struct {
	Paths   []string `json:"paths" jsonschema:"report files or directories of *.json reports"`
	Project string   `json:"project,omitempty" jsonschema:"project name attached to every report"`
	Sprint  string   `json:"sprint,omitempty" jsonschema:"sprint name attached to every report"`
	Search  string   `json:"search,omitempty" jsonschema:"optional search term narrowing the failures and categories"`
	Status  string   `json:"status,omitempty" jsonschema:"optional status filter: all, passed or failed"`
}

type summarizeOutput struct {
	Reports    int           `json:"reports"`
	Deleted    int           `json:"deleted"`
	Skipped    int           `json:"skipped"`
	Unreadable int           `json:"unreadable"`
	Tests      int           `json:"tests"`
	Passes     int           `json:"passes"`
	Failures   int           `json:"failures"`
	Pending    int           `json:"pending"`
	PassRate   float64       `json:"pass_rate"`
	Duration   string        `json:"duration"`
	Categories []categoryDTO `json:"categories"`
	Failed     []failureDTO  `json:"failed"`
	Truncated  bool          `json:"truncated,omitempty"`
}

type categoryDTO struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type failureDTO struct {
	Report         string `json:"report"`
	Test           string `json:"test"`
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Translation    string `json:"translation"`
	Recommendation string `json:"recommendation"`
	Message        string `json:"message"`
}

type searchInput struct {
	Paths    []string `json:"paths" jsonschema:"report files or directories of *.json reports"`
	Query    string   `json:"query,omitempty" jsonschema:"case-insensitive search term"`
	Status   string   `json:"status,omitempty" jsonschema:"all, passed or failed (default all)"`
	Page     int      `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize int      `json:"page_size,omitempty" jsonschema:"reports per page"`
}

type searchOutput struct {
	Status     string      `json:"status"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	TotalCount int         `json:"total_count"`
	Reports    []reportDTO `json:"reports"`
}

type reportDTO struct {
	Title    string  `json:"title"`
	File     string  `json:"file"`
	Tests    int     `json:"tests"`
	Passes   int     `json:"passes"`
	Failures int     `json:"failures"`
	Pending  int     `json:"pending"`
	PassRate float64 `json:"pass_rate"`
}

type trendInput struct {
	Manifest string `json:"manifest" jsonschema:"path to a YAML or JSON sprint manifest"`
}

type trendOutput struct {
	Project    string     `json:"project"`
	Skipped    int        `json:"skipped"`
	Unreadable int        `json:"unreadable"`
	Sprints    []pointDTO `json:"sprints"`
}

type pointDTO struct {
	SprintID     string  `json:"sprint_id"`
	Sprint       string  `json:"sprint"`
	Month        string  `json:"month"`
	FirstInMonth bool    `json:"first_in_month"`
	LastInMonth  bool    `json:"last_in_month"`
	Reports      int     `json:"reports"`
	Tests        int     `json:"tests"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	PassRate     float64 `json:"pass_rate"`
	Delta        float64 `json:"delta"`
}

type classifyInput struct {
	Message string `json:"message" jsonschema:"failure message or error text"`
}

type classifyOutput struct {
	Category       string `json:"category"`
	Name           string `json:"name"`
	Severity       string `json:"severity"`
	Translation    string `json:"translation"`
	Recommendation string `json:"recommendation"`
	ExtraHint      string `json:"extra_hint,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleSummarize(ctx context.Context, _ *sdkmcp.CallToolRequest, input summarizeInput) (*sdkmcp.CallToolResult, summarizeOutput, error) {
	uploads, unreadable, err := s.load(ctx, input.Paths, testrun.Meta{ProjectName: input.Project, SprintName: input.Sprint})
	if err != nil {
		return nil, summarizeOutput{}, err
	}
	v := s.builder.Build(uploads, dashboard.Query{Search: input.Search, Status: filter.Status(input.Status)})

	out := summarizeOutput{
		Reports:    v.Reports,
		Deleted:    v.Deleted,
		Skipped:    v.Skipped,
		Unreadable: unreadable,
		Tests:      v.Totals.Tests,
		Passes:     v.Totals.Passes,
		Failures:   v.Totals.Failures,
		Pending:    v.Totals.Pending,
		PassRate:   v.PassRate,
		Duration:   fmt.Sprintf("%.0fms", v.Totals.DurationMs),
		Categories: make([]categoryDTO, 0, len(v.Categories)),
		Failed:     make([]failureDTO, 0, min(len(v.Failures), MaxFailures)),
	}
	for _, c := range v.Categories {
		out.Categories = append(out.Categories, categoryDTO{
			Category: c.Category,
			Name:     display.Category(c.Category),
			Severity: c.Severity.String(),
			Count:    c.Count,
		})
	}
	for i, f := range v.Failures {
		if i == MaxFailures {
			out.Truncated = true
			break
		}
		out.Failed = append(out.Failed, failureDTO{
			Report:         f.Report,
			Test:           f.Test,
			Category:       f.Diagnosis.Category,
			Severity:       f.Diagnosis.Severity.String(),
			Translation:    f.Diagnosis.Translation,
			Recommendation: f.Diagnosis.Recommendation,
			Message:        f.Diagnosis.OriginalMessage,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, input searchInput) (*sdkmcp.CallToolResult, searchOutput, error) {
	uploads, _, err := s.load(ctx, input.Paths, testrun.Meta{})
	if err != nil {
		return nil, searchOutput{}, err
	}
	size := input.PageSize
	if size <= 0 {
		size = s.cfg.PageSize
	}
	v := s.builder.Build(uploads, dashboard.Query{
		Search:   input.Query,
		Status:   filter.Status(input.Status),
		Page:     input.Page,
		PageSize: size,
	})

	out := searchOutput{
		Status:     string(v.Query.Status),
		Page:       v.Page.Page,
		PageSize:   v.Page.PageSize,
		TotalPages: v.Page.TotalPages,
		TotalCount: v.Page.TotalCount,
		Reports:    make([]reportDTO, 0, len(v.Page.Items)),
	}
	for _, r := range v.Page.Items {
		out.Reports = append(out.Reports, reportDTO{
			Title:    r.Title(),
			File:     r.FileID,
			Tests:    r.Stats.Tests,
			Passes:   r.Stats.Passes,
			Failures: r.Stats.Failures,
			Pending:  r.Stats.Pending,
			PassRate: r.Stats.PassRate(),
		})
	}
	return nil, out, nil
}

func (s *Server) handleTrend(ctx context.Context, _ *sdkmcp.CallToolRequest, input trendInput) (*sdkmcp.CallToolResult, trendOutput, error) {
	if strings.TrimSpace(input.Manifest) == "" {
		return nil, trendOutput{}, fmt.Errorf("manifest is required")
	}
	m, err := ingest.LoadManifest(s.resolve(input.Manifest))
	if err != nil {
		return nil, trendOutput{}, err
	}
	sprints, failed, err := m.SprintInputs(ctx, s.loader)
	if err != nil {
		return nil, trendOutput{}, err
	}
	tr := s.builder.Trend(sprints)

	out := trendOutput{
		Project:    m.Project,
		Skipped:    tr.Skipped,
		Unreadable: len(failed),
		Sprints:    make([]pointDTO, 0, len(tr.Points)),
	}
	for _, p := range tr.Points {
		out.Sprints = append(out.Sprints, pointDTO{
			SprintID:     p.SprintID,
			Sprint:       p.SprintLabel,
			Month:        p.MonthLabel,
			FirstInMonth: p.FirstInMonth,
			LastInMonth:  p.LastInMonth,
			Reports:      p.Reports,
			Tests:        p.Tests,
			Passed:       p.Passed,
			Failed:       p.Failed,
			PassRate:     p.PassRate,
			Delta:        p.Delta,
		})
	}
	return nil, out, nil
}

func (s *Server) handleClassify(_ context.Context, _ *sdkmcp.CallToolRequest, input classifyInput) (*sdkmcp.CallToolResult, classifyOutput, error) {
	rec := s.builder.Classifier.ClassifyText(input.Message)
	return nil, classifyOutput{
		Category:       rec.Category,
		Name:           display.Category(rec.Category),
		Severity:       rec.Severity.String(),
		Translation:    rec.Translation,
		Recommendation: rec.Recommendation,
		ExtraHint:      rec.ExtraHint,
	}, nil
}

// load reads the report files under paths. Unreadable files are logged and
// counted; only a missing path or an empty file set is an error.
func (s *Server) load(ctx context.Context, paths []string, meta testrun.Meta) ([]aggregate.Upload, int, error) {
	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("paths is required")
	}
	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = s.resolve(p)
	}
	files, err := ingest.ExpandPaths(resolved)
	if err != nil {
		return nil, 0, err
	}
	res, err := s.loader.Load(ctx, ingest.Refs(files, meta))
	if err != nil {
		return nil, 0, err
	}
	if len(res.Failed) > 0 {
		logging.New("mcp").Warn("unreadable reports", "count", len(res.Failed))
	}
	return res.Uploads, len(res.Failed), nil
}

func (s *Server) resolve(p string) string {
	if filepath.IsAbs(p) || s.ProjectRoot == "" {
		return p
	}
	return filepath.Join(s.ProjectRoot, p)
}

// Run serves the tools over stdio until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
