package aggregate

import (
	"time"
)

// Month formats used for bucket keys and axis labels.
const (
	MonthKeyLayout   = "2006-01"
	MonthLabelLayout = "Jan 2006"
	UnknownMonth     = "Unknown"
)

// SprintInput is one sprint with its uploads, in chronological position.
type SprintInput struct {
	SprintID  string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Reports   []Upload
}

// SprintBucket is one point of the trend series.
type SprintBucket struct {
	SprintID     string    `json:"sprint_id"`
	SprintLabel  string    `json:"sprint_label"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	MonthKey     string    `json:"month_key"`
	MonthLabel   string    `json:"month_label"`
	Tests        int       `json:"tests"`
	Passed       int       `json:"passed"`
	Failed       int       `json:"failed"`
	Reports      int       `json:"reports"`
	FirstInMonth bool      `json:"first_in_month"`
	LastInMonth  bool      `json:"last_in_month"`
}

// Series is the trend output plus the number of uploads that could not be
// flattened.
type Series struct {
	Buckets []SprintBucket `json:"buckets"`
	Skipped int            `json:"skipped"`
}

// BuildSprintSeries builds a series with default settings.
func BuildSprintSeries(sprints []SprintInput) Series {
	return Collector{}.BuildSprintSeries(sprints)
}

// BuildSprintSeries produces one bucket per sprint, keeping the input order.
// Deleted uploads are ignored. Month boundaries compare each sprint with its
// neighbours in that order.
func (c Collector) BuildSprintSeries(sprints []SprintInput) Series {
	s := Series{Buckets: make([]SprintBucket, 0, len(sprints))}
	for _, sp := range sprints {
		live := make([]Upload, 0, len(sp.Reports))
		for _, u := range sp.Reports {
			if !u.Deleted() {
				live = append(live, u)
			}
		}
		batch := c.Collect(live)
		s.Skipped += batch.Skipped
		stats := AggregateReports(batch.Reports)

		key, label := monthOf(sp.StartDate)
		s.Buckets = append(s.Buckets, SprintBucket{
			SprintID:    sp.SprintID,
			SprintLabel: sp.Name,
			StartDate:   sp.StartDate,
			EndDate:     sp.EndDate,
			MonthKey:    key,
			MonthLabel:  label,
			Tests:       stats.Tests,
			Passed:      stats.Passes,
			Failed:      stats.Failures,
			Reports:     len(batch.Reports),
		})
	}
	markMonthBoundaries(s.Buckets)
	return s
}

func monthOf(t time.Time) (key, label string) {
	if t.IsZero() {
		return "", UnknownMonth
	}
	return t.Format(MonthKeyLayout), t.Format(MonthLabelLayout)
}

func markMonthBoundaries(buckets []SprintBucket) {
	for i := range buckets {
		b := &buckets[i]
		b.FirstInMonth = i == 0 || buckets[i-1].MonthKey != b.MonthKey
		b.LastInMonth = i == len(buckets)-1 || buckets[i+1].MonthKey != b.MonthKey
	}
}

// SeriesDeltas returns the passed-count change of each bucket against its
// predecessor. The first bucket has no predecessor and gets 0.
func SeriesDeltas(buckets []SprintBucket) []float64 {
	out := make([]float64, len(buckets))
	for i := 1; i < len(buckets); i++ {
		out[i] = PeriodDelta(float64(buckets[i].Passed), float64(buckets[i-1].Passed))
	}
	return out
}
