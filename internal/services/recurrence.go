package services

import (
	"time"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// intervalDelta is the single source of truth for interval→step mapping.
// Weekly cadences step by days; everything else steps by calendar months so
// the day-of-month survives months of different lengths.
type intervalDelta struct {
	days   int
	months int
}

var intervalDeltas = map[entities.RecurrenceInterval]intervalDelta{
	entities.IntervalWeekly:      {days: 7},
	entities.IntervalBiweekly:    {days: 14},
	entities.IntervalMonthly:     {months: 1},
	entities.IntervalBimonthly:   {months: 2},
	entities.IntervalQuarterly:   {months: 3},
	entities.IntervalFourMonthly: {months: 4},
	entities.IntervalSemiannual:  {months: 6},
	entities.IntervalAnnual:      {months: 12},
}

// IntervalDelta exposes the mapping to the other components; nothing in the
// engine re-derives it.
func IntervalDelta(interval entities.RecurrenceInterval) (days, months int, ok bool) {
	d, ok := intervalDeltas[interval]
	return d.days, d.months, ok
}

// GenerateWeekMask computes the maintenance-week mask of targetYear for an
// anchor date and interval. The mask has exactly WeeksInYear(targetYear)
// entries.
//
// Activations are produced by stepping the actual date, starting from the
// Monday of the anchor's week. An activation whose ISO week-year equals
// targetYear marks its week; one falling in the successor year ends the
// run (that activation belongs to the next year's schedule).
func GenerateWeekMask(anchor time.Time, interval entities.RecurrenceInterval, targetYear int) ([]bool, error) {
	mask := make([]bool, isoweek.WeeksInYear(targetYear))

	if interval == entities.IntervalNone {
		return mask, nil
	}

	delta, ok := intervalDeltas[interval]
	if !ok {
		return nil, apperrors.NewValidationError("frecuencia de mantenimiento desconocida: %q", interval)
	}

	week, isoYear := isoweek.WeekOfDate(anchor)
	start := isoweek.MondayOfWeek(isoYear, week)

	for step := 0; ; step++ {
		var date time.Time
		if delta.days > 0 {
			date = start.AddDate(0, 0, delta.days*step)
		} else {
			date = addMonthsClamped(start, delta.months*step)
		}

		week, isoYear = isoweek.WeekOfDate(date)

		if isoYear == targetYear {
			mask[week-1] = true
		} else if isoYear > targetYear {
			break
		}

		if date.Year() > targetYear {
			break
		}
	}

	return mask, nil
}

// addMonthsClamped adds months to t keeping t's day-of-month; when the
// resulting month is shorter, the date clamps to its last day instead of
// spilling into the next month (time.AddDate would turn Jan 31 + 1 month
// into March 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}
