package testrun

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustDecode(t *testing.T, doc string) any {
	t.Helper()
	v, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return v
}

const nestedReport = `{
  "title": "",
  "tests": [{"title": "top", "state": "passed", "duration": 5}],
  "suites": [
    {
      "title": "checkout",
      "tests": [
        {"title": "adds item", "pass": true, "duration": 10},
        {"title": "pays", "state": "failed", "duration": 20, "err": {"message": "Timeout of 2000ms exceeded"}}
      ],
      "suites": [
        {"title": "coupons", "tests": [
          {"title": "applies", "fullTitle": "checkout coupons applies code", "pass": false, "fail": true, "err": "AssertionError: expected 1 to equal 2"},
          {"title": "later", "pending": true}
        ]}
      ]
    },
    {"title": "search", "tests": [{"title": "finds", "state": "passed", "duration": "fast"}]}
  ]
}`

func TestFlatten_PreOrderAndNormalization(t *testing.T) {
	res, err := Flatten(mustDecode(t, nestedReport))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	var titles []string
	for _, tc := range res.Tests {
		titles = append(titles, tc.Title)
	}
	want := []string{"top", "adds item", "pays", "applies", "later", "finds"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	wantStats := Stats{Tests: 6, Passes: 3, Failures: 3, Pending: 1, DurationMs: 35}
	if diff := cmp.Diff(wantStats, res.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	if got := res.Tests[2].FullTitle; got != "checkout pays" {
		t.Errorf("derived fullTitle = %q", got)
	}
	if got := res.Tests[3].FullTitle; got != "checkout coupons applies code" {
		t.Errorf("explicit fullTitle = %q", got)
	}
	if res.Tests[2].Error.Kind != ErrorObject || res.Tests[2].Error.Text() != "Timeout of 2000ms exceeded" {
		t.Errorf("object error = %+v", res.Tests[2].Error)
	}
	if res.Tests[3].Error.Kind != ErrorString {
		t.Errorf("string error kind = %v", res.Tests[3].Error.Kind)
	}
	if res.Tests[5].DurationMs != 0 {
		t.Errorf("non-numeric duration = %v, want 0", res.Tests[5].DurationMs)
	}
	if got := res.Tests[4].Outcome(); got != OutcomePending {
		t.Errorf("pending outcome = %q", got)
	}
	if len(res.Root.Suites) != 2 || len(res.Root.Suites[0].Suites) != 1 {
		t.Errorf("tree shape lost: %+v", res.Root)
	}
}

func TestFlatten_StatsMatchTestCount(t *testing.T) {
	docs := []string{
		`{}`,
		`{"suites": null, "tests": null}`,
		`{"suites": [null, 3, "x", {"tests": [null, {"title": "a"}]}]}`,
		`{"suites": {"title": "single", "tests": [{"title": "b", "state": "passed"}]}}`,
		`{"results": [{"suites": [{"tests": [{"title": "c", "pass": true}, {"title": "d", "skipped": true}]}]}]}`,
		nestedReport,
	}
	for _, doc := range docs {
		res, err := Flatten(mustDecode(t, doc))
		if err != nil {
			t.Fatalf("Flatten(%s): %v", doc, err)
		}
		if res.Stats.Tests != len(res.Tests) {
			t.Errorf("%s: stats.tests = %d, len(tests) = %d", doc, res.Stats.Tests, len(res.Tests))
		}
		if res.Stats.Passes+res.Stats.Failures != res.Stats.Tests {
			t.Errorf("%s: passes+failures = %d, tests = %d", doc, res.Stats.Passes+res.Stats.Failures, res.Stats.Tests)
		}
	}
}

func TestFlatten_Durations(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{12.5, 12.5},
		{-4.0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{"100", 0},
		{7, 7},
	}
	for _, tc := range cases {
		raw := map[string]any{"tests": []any{map[string]any{"title": "t", "duration": tc.in}}}
		res, err := Flatten(raw)
		if err != nil {
			t.Fatalf("Flatten: %v", err)
		}
		if got := res.Tests[0].DurationMs; got != tc.want {
			t.Errorf("duration(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFlatten_NotObject(t *testing.T) {
	for _, raw := range []any{nil, []any{}, "report", 42.0} {
		if _, err := Flatten(raw); !errors.Is(err, ErrNotObject) {
			t.Errorf("Flatten(%T) err = %v, want ErrNotObject", raw, err)
		}
	}
}

func TestFlatten_DepthGuard(t *testing.T) {
	deep := map[string]any{"title": "leaf", "tests": []any{map[string]any{"title": "x", "pass": true}}}
	for i := 0; i < 10; i++ {
		deep = map[string]any{"suites": []any{deep}}
	}

	if _, err := (Flattener{MaxDepth: 5}).Flatten(deep); !errors.Is(err, ErrTooDeep) {
		t.Errorf("err = %v, want ErrTooDeep", err)
	}
	res, err := (Flattener{MaxDepth: 10}).Flatten(deep)
	if err != nil {
		t.Fatalf("within limit: %v", err)
	}
	if res.Stats.Passes != 1 {
		t.Errorf("passes = %d, want 1", res.Stats.Passes)
	}
}

func TestSummarize_AttachesMeta(t *testing.T) {
	meta := Meta{FileID: "f1", FileName: "run.json", ProjectName: "Shop", SprintName: "S1", Status: "Active"}
	sum, err := Summarize(meta, mustDecode(t, nestedReport))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Title() != "Shop / S1 / run.json" {
		t.Errorf("Title = %q", sum.Title())
	}
	if sum.Deleted() {
		t.Error("active report reported deleted")
	}
	if !(Meta{Status: " Deleted "}).Deleted() {
		t.Error("Deleted marker not recognized")
	}
}
