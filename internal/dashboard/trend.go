package dashboard

import "sprintlens/internal/aggregate"

// Point is one sprint of the trend with its derived rates.
type Point struct {
	aggregate.SprintBucket
	PassRate float64 `json:"pass_rate"`
	Delta    float64 `json:"delta"`
}

// Trend is the sprint-over-sprint view.
type Trend struct {
	Points  []Point `json:"points"`
	Skipped int     `json:"skipped"`
}

// Trend builds the per-sprint series and attaches each sprint's pass rate
// and the percent change of its passed count against the previous sprint.
func (b Builder) Trend(sprints []aggregate.SprintInput) Trend {
	series := b.Collector.BuildSprintSeries(sprints)
	deltas := aggregate.SeriesDeltas(series.Buckets)

	t := Trend{Points: make([]Point, len(series.Buckets)), Skipped: series.Skipped}
	for i, bucket := range series.Buckets {
		t.Points[i] = Point{
			SprintBucket: bucket,
			PassRate:     aggregate.Percent(bucket.Passed, bucket.Tests),
			Delta:        deltas[i],
		}
	}
	return t
}
