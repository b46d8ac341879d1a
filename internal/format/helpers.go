package format

import (
	"fmt"
	"math"
	"time"
)

// Percent renders a rate already expressed in percent, e.g. "83.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Delta renders a signed percentage change, e.g. "+25.0%" or "-12.5%".
// Zero renders without a sign.
func Delta(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return "0.0%"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

// DurationMs renders a millisecond count as "850ms", "12.3s" or "4m 5s".
func DurationMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	d := time.Duration(ms * float64(time.Millisecond))
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	s := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", s/60, s%60)
}

// Date renders a day as YYYY-MM-DD, or "-" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// Truncate shortens s to at most maxLen runes, ending in "..." when cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
