package calendar

import (
	"sort"
	"time"

	"wellspring/internal/model"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// BusyIntervals merges overlapping or touching events into disjoint intervals
// sorted by start.
func BusyIntervals(events []Event) []Interval {
	intervals := make([]Interval, 0, len(events))
	for _, e := range events {
		if !e.End.After(e.Start) {
			continue
		}
		intervals = append(intervals, Interval{Start: e.Start, End: e.End})
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		n := len(merged)
		if n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// FreeSlots returns every slot of length duration starting at opensAt + k*step
// that ends by closesAt and does not overlap a busy interval.
func FreeSlots(opensAt, closesAt time.Time, busy []Interval, duration, step time.Duration) []model.TimeSlot {
	slots := []model.TimeSlot{}
	if duration <= 0 || step <= 0 {
		return slots
	}

	for start := opensAt; !start.Add(duration).After(closesAt); start = start.Add(step) {
		end := start.Add(duration)
		if overlapsAny(start, end, busy) {
			continue
		}
		slots = append(slots, model.TimeSlot{Start: start, End: end})
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
