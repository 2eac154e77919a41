// Package dates provides calendar-day math for the pricing engine. All
// helpers treat a "day" as a time.Time normalized to midnight UTC so that
// values compare and hash consistently regardless of source timezone.
package dates

import "time"

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the calendar month containing t.
func DaysInMonth(t time.Time) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

// EndOfNextMonth returns the last day of the month after the one containing t.
func EndOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+2, 0, 0, 0, 0, 0, time.UTC)
}

// Range enumerates every day from start through end inclusive. An empty
// slice is returned when start is after end.
func Range(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ClampToMonth intersects the inclusive range [start, end] with the calendar
// month containing month. ok is false when the range misses the month
// entirely. Ranges straddling the month keep only their clamped portion.
func ClampToMonth(start, end, month time.Time) (s, e time.Time, ok bool) {
	first, last := MonthBounds(month)
	s, e = Day(start), Day(end)
	if s.Before(first) {
		s = first
	}
	if e.After(last) {
		e = last
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}
