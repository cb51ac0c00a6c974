package domain

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect: aStart < bEnd && aEnd > bStart.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidWindow reports whether [start, end) is a non-empty interval.
func ValidWindow(start, end time.Time) bool {
	return start.Before(end)
}
