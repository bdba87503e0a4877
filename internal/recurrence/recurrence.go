// Package recurrence implements the calendar arithmetic behind class
// series expansion. All stepping happens in wall-clock terms in the
// configured location, so an 18:00 class stays at 18:00 across DST
// changes.
package recurrence

import (
	"time"

	"fitgrid/internal/models"
)

// Step returns the next occurrence start after t for the given pattern.
// MONTHLY stepping clamps to the last day of shorter months: Jan 31
// steps to Feb 28 (or 29), then Mar 31.
func Step(t time.Time, pattern models.RecurrencePattern, loc *time.Location) time.Time {
	t = t.In(loc)
	switch pattern {
	case models.PatternDaily:
		return t.AddDate(0, 0, 1)
	case models.PatternWeekly:
		return t.AddDate(0, 0, 7)
	case models.PatternMonthly:
		return addMonths(t, 1, loc)
	}
	return t
}

// EndOf returns the end time of an occurrence starting at start.
func EndOf(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// Horizon returns the generation cutoff: the series end or now plus the
// rolling window, whichever comes first.
func Horizon(now, until time.Time, days int, loc *time.Location) time.Time {
	edge := now.In(loc).AddDate(0, 0, days)
	if until.Before(edge) {
		return until
	}
	return edge
}

// IndexBetween returns how many pattern steps separate the anchor from
// the given occurrence start. MONTHLY counts calendar months between
// the firsts of the two months, so a clamped Feb 28 occurrence still
// maps back to index 1 of a Jan 31 anchor.
func IndexBetween(pattern models.RecurrencePattern, anchor, occ time.Time, loc *time.Location) int {
	anchor = anchor.In(loc)
	occ = occ.In(loc)
	switch pattern {
	case models.PatternDaily:
		return daysBetween(anchor, occ)
	case models.PatternWeekly:
		return daysBetween(anchor, occ) / 7
	case models.PatternMonthly:
		ay, am, _ := anchor.Date()
		oy, om, _ := occ.Date()
		return (oy-ay)*12 + int(om) - int(am)
	}
	return 0
}

// ApplyIndex returns the occurrence start that sits index steps after
// the anchor, using the anchor's time of day.
func ApplyIndex(pattern models.RecurrencePattern, anchor time.Time, index int, loc *time.Location) time.Time {
	anchor = anchor.In(loc)
	switch pattern {
	case models.PatternDaily:
		return anchor.AddDate(0, 0, index)
	case models.PatternWeekly:
		return anchor.AddDate(0, 0, 7*index)
	case models.PatternMonthly:
		return addMonths(anchor, index, loc)
	}
	return anchor
}

// addMonths shifts t by the given number of calendar months, clamping
// the day to the target month's length instead of letting the date
// normalize into the next month.
func addMonths(t time.Time, months int, loc *time.Location) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m, 1, hh, mm, ss, t.Nanosecond(), loc).AddDate(0, months, 0)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysBetween counts calendar days from a to b, ignoring time of day.
// Both must already be in the same location.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
