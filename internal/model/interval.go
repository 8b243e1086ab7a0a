package model

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that only touch at a boundary do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Nights returns the number of nights covered by the stay, rounding a
// partial day up.
func (i Interval) Nights() int {
	d := i.End.Sub(i.Start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// EachNight returns the calendar date of every night in the stay.
func (i Interval) EachNight() []time.Time {
	n := i.Nights()
	start := DateOf(i.Start)
	out := make([]time.Time, 0, n)
	for k := 0; k < n; k++ {
		out = append(out, start.AddDate(0, 0, k))
	}
	return out
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
