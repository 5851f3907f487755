// Package schedule compares activity schedule occurrences as half-open
// time intervals.
package schedule

import (
	"time"

	"github.com/atena-events/backend/internal/models"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IntervalOf returns the effective interval of a schedule occurrence.
func IntervalOf(s models.Schedule) Interval {
	return Interval{Start: s.StartDate, End: s.EndDate()}
}

// Intervals converts a schedule set to its intervals.
func Intervals(schedules []models.Schedule) []Interval {
	out := make([]Interval, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, IntervalOf(s))
	}
	return out
}

// Overlaps reports whether two half-open intervals intersect.
// Touching boundaries do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Conflicts reports whether any interval of a overlaps any interval of b.
func Conflicts(a, b []Interval) bool {
	for _, ia := range a {
		for _, ib := range b {
			if Overlaps(ia, ib) {
				return true
			}
		}
	}
	return false
}
