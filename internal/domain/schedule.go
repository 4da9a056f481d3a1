package domain

import (
	"github.com/aokiyama/SLB-ReservationService/pkg/types"
)

// Interval is a half-open [Start, End) span of time within one day.
// Invariant: Start is strictly before End.
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// Duration returns the interval length in minutes
func (i Interval) Duration() int {
	return i.End.Minutes() - i.Start.Minutes()
}

// Contains reports whether [start, end) lies fully inside the interval
func (i Interval) Contains(start, end types.TimeString) bool {
	return !start.IsBefore(i.Start) && !end.IsAfter(i.End)
}

// OpenIntervals derives the open booking windows for one date from the
// weekday's working hour row and that date's blackout entries.
//
// A nil or closed working hour yields no intervals. A full-day blackout
// empties the result. Partial blackouts are subtracted one by one: a
// subtraction can shrink an interval on either side, split it in two,
// or remove it entirely. The result is ordered and never contains
// zero-length or inverted intervals.
func OpenIntervals(wh *WorkingHour, blackouts []*BlackoutDate) []Interval {
	if wh == nil || wh.IsClosed {
		return []Interval{}
	}
	if !wh.Start.IsBefore(wh.End) {
		return []Interval{}
	}

	intervals := []Interval{{Start: wh.Start, End: wh.End}}

	for _, blackout := range blackouts {
		if blackout.IsFullDay() {
			return []Interval{}
		}
		intervals = subtract(intervals, Interval{Start: *blackout.Start, End: *blackout.End})
		if len(intervals) == 0 {
			return intervals
		}
	}

	return intervals
}

// subtract removes the cut interval from every interval in the ordered set
func subtract(intervals []Interval, cut Interval) []Interval {
	if !cut.Start.IsBefore(cut.End) {
		return intervals
	}

	result := make([]Interval, 0, len(intervals)+1)

	for _, iv := range intervals {
		// No intersection: the cut lies entirely before or after
		if !cut.Start.IsBefore(iv.End) || !cut.End.IsAfter(iv.Start) {
			result = append(result, iv)
			continue
		}

		// Left remainder
		if iv.Start.IsBefore(cut.Start) {
			result = append(result, Interval{Start: iv.Start, End: cut.Start})
		}

		// Right remainder
		if cut.End.IsBefore(iv.End) {
			result = append(result, Interval{Start: cut.End, End: iv.End})
		}
	}

	return result
}
