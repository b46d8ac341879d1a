package testrun

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultMaxDepth bounds suite nesting accepted by Flatten.
const DefaultMaxDepth = 64

var (
	// ErrNotObject is returned when the report root is not a JSON object.
	ErrNotObject = errors.New("report is not a JSON object")
	// ErrTooDeep is returned when suites nest beyond the depth guard.
	ErrTooDeep = errors.New("report suites nest too deeply")
)

// Result is the flattened form of one report.
type Result struct {
	Root  Suite
	Tests []TestCase
	Stats Stats
}

// Flattener walks raw report trees. The zero value uses DefaultMaxDepth.
type Flattener struct {
	MaxDepth int
}

// Flatten walks raw with the default depth guard.
func Flatten(raw any) (Result, error) {
	return Flattener{}.Flatten(raw)
}

// Decode parses a report document into the generic value tree Flatten
// expects.
func Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return v, nil
}

// Flatten collects every test in raw in pre-order. The report object acts as
// the root suite: its own tests first, then "suites" (an array or a single
// suite object), then mochawesome "results". Missing or mistyped collections
// are treated as empty.
func (f Flattener) Flatten(raw any) (Result, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Result{}, fmt.Errorf("flatten: %w (got %T)", ErrNotObject, raw)
	}
	w := walker{max: f.MaxDepth}
	if w.max <= 0 {
		w.max = DefaultMaxDepth
	}
	root, err := w.suite(obj, nil, 0)
	if err != nil {
		return Result{}, err
	}
	return Result{Root: root, Tests: w.tests, Stats: w.stats}, nil
}

type walker struct {
	max   int
	tests []TestCase
	stats Stats
}

func (w *walker) suite(node map[string]any, path []string, depth int) (Suite, error) {
	if depth > w.max {
		return Suite{}, fmt.Errorf("flatten: %w (limit %d)", ErrTooDeep, w.max)
	}
	s := Suite{Title: str(node["title"])}
	if s.Title != "" {
		path = append(path[:len(path):len(path)], s.Title)
	}

	for _, item := range list(node["tests"]) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tc := normalizeTest(m, path)
		s.Tests = append(s.Tests, tc)
		w.tests = append(w.tests, tc)
		w.stats = w.stats.Record(tc)
	}

	children := append(suiteNodes(node["suites"]), suiteNodes(node["results"])...)
	for _, child := range children {
		cs, err := w.suite(child, path, depth+1)
		if err != nil {
			return Suite{}, err
		}
		s.Suites = append(s.Suites, cs)
	}
	return s, nil
}

func normalizeTest(m map[string]any, path []string) TestCase {
	state := strings.ToLower(str(m["state"]))
	tc := TestCase{
		Title:      str(m["title"]),
		FullTitle:  str(m["fullTitle"]),
		DurationMs: duration(m["duration"]),
		Passed:     state == OutcomePassed || m["pass"] == true,
		Pending:    state == OutcomePending || m["pending"] == true,
		Skipped:    state == OutcomeSkipped || m["skipped"] == true,
		TimedOut:   m["timedOut"] == true,
		Error:      NewRawError(m["err"]),
	}
	if tc.FullTitle == "" {
		tc.FullTitle = strings.TrimSpace(strings.Join(append(path[:len(path):len(path)], tc.Title), " "))
	}
	return tc
}

func suiteNodes(v any) []map[string]any {
	if m, ok := v.(map[string]any); ok {
		return []map[string]any{m}
	}
	var out []map[string]any
	for _, item := range list(v) {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func duration(v any) float64 {
	var d float64
	switch x := v.(type) {
	case float64:
		d = x
	case float32:
		d = float64(x)
	case int:
		d = float64(x)
	case int64:
		d = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		d = f
	default:
		return 0
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}
