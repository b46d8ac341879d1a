// Package diagnose maps raw test failure payloads to a fixed diagnostic
// taxonomy using an ordered table of regular-expression rules.
package diagnose

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"sprintlens/internal/testrun"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Fixed categories for the two paths that bypass the rule table.
const (
	CategoryNoError = "NO_ERROR"
	CategoryUnknown = "UNKNOWN"
)

// Rule is one entry of the classification table. Patterns are matched
// case-insensitively.
type Rule struct {
	Pattern        string   `yaml:"pattern" json:"pattern"`
	Category       string   `yaml:"category" json:"category"`
	Translation    string   `yaml:"translation" json:"translation"`
	Recommendation string   `yaml:"recommendation" json:"recommendation"`
	Severity       Severity `yaml:"severity" json:"severity"`

	re *regexp.Regexp
}

// Hint is an advisory phrase lookup appended to a record.
type Hint struct {
	Phrase string `yaml:"phrase" json:"phrase"`
	Text   string `yaml:"text" json:"text"`
}

// Table is the on-disk rule file layout.
type Table struct {
	Rules []Rule `yaml:"rules"`
	Hints []Hint `yaml:"hints"`
}

// Record is the derived diagnosis of one failure.
type Record struct {
	Category        string   `json:"category"`
	Translation     string   `json:"translation"`
	Recommendation  string   `json:"recommendation"`
	Severity        Severity `json:"severity"`
	OriginalMessage string   `json:"original_message"`
	ExtraHint       string   `json:"extra_hint,omitempty"`
}

// Classifier holds a compiled, length-ordered rule table. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	rules []Rule
	hints []Hint
}

// New compiles rules and orders them by pattern length, longest first.
// Rules with equal pattern length keep their table order.
func New(rules []Rule, hints []Hint) (*Classifier, error) {
	compiled := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s): empty pattern", i, r.Category)
		}
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d (%q): empty category", i, r.Pattern)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Category, err)
		}
		r.re = re
		compiled = append(compiled, r)
	}
	slices.SortStableFunc(compiled, func(a, b Rule) int {
		return len(b.Pattern) - len(a.Pattern)
	})

	kept := make([]Hint, 0, len(hints))
	for _, h := range hints {
		if strings.TrimSpace(h.Phrase) == "" {
			continue
		}
		kept = append(kept, Hint{Phrase: strings.ToLower(h.Phrase), Text: h.Text})
	}
	return &Classifier{rules: compiled, hints: kept}, nil
}

// Load parses a YAML rule table.
func Load(data []byte) (*Classifier, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	return New(t.Rules, t.Hints)
}

// LoadFile reads and parses a YAML rule table from path.
func LoadFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Load(data)
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	c, err := Load(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("load rules.yaml: %v", err))
	}
	return c
})

// Default returns the classifier built from the embedded rule table.
func Default() *Classifier { return defaultClassifier() }

// Rules returns the table in match order.
func (c *Classifier) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Classify diagnoses a failure payload. It never fails: a missing payload
// yields the NO_ERROR record and an unmatched one yields UNKNOWN.
func (c *Classifier) Classify(e testrun.RawError) Record {
	if e.IsZero() {
		return noErrorRecord()
	}
	return c.ClassifyText(e.Text())
}

// ClassifyText diagnoses an already-normalized message.
func (c *Classifier) ClassifyText(text string) Record {
	if strings.TrimSpace(text) == "" {
		return noErrorRecord()
	}
	rec := Record{
		Category:        CategoryUnknown,
		Translation:     "Unrecognized failure",
		Recommendation:  "Inspect the original message and the test logs.",
		Severity:        SeverityLow,
		OriginalMessage: text,
	}
	for _, r := range c.rules {
		if r.re.MatchString(text) {
			rec.Category = r.Category
			rec.Translation = r.Translation
			rec.Recommendation = r.Recommendation
			rec.Severity = r.Severity
			break
		}
	}
	rec.ExtraHint = c.AdditionalRecommendation(text)
	return rec
}

// AdditionalRecommendation returns the text of the first hint whose phrase
// occurs in text, or "".
func (c *Classifier) AdditionalRecommendation(text string) string {
	lower := strings.ToLower(text)
	for _, h := range c.hints {
		if strings.Contains(lower, h.Phrase) {
			return h.Text
		}
	}
	return ""
}

func noErrorRecord() Record {
	return Record{
		Category:       CategoryNoError,
		Translation:    "No error reported",
		Recommendation: "Nothing to investigate.",
		Severity:       SeverityLow,
	}
}
