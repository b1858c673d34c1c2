// Package isoweek holds the ISO-8601 week arithmetic every scheduling
// component builds on. Week 1 is the week containing the year's first
// Thursday; years have 52 or 53 weeks.
package isoweek

import "time"

// WeeksInYear returns the number of ISO-8601 weeks in year (52 or 53).
// December 28th always falls inside the year's last ISO week.
func WeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// WeekOfDate returns the ISO week number and the ISO week-year of t.
// The week-year may differ from t's calendar year for dates in late
// December or early January.
func WeekOfDate(t time.Time) (week int, isoYear int) {
	isoYear, week = t.ISOWeek()
	return week, isoYear
}

// MondayOfWeek returns the Monday of the given ISO (week-year, week) pair,
// at midnight UTC. January 4th lies in week 1 of every ISO year, which pins
// the anchor without any weekday-offset approximation.
func MondayOfWeek(isoYear, week int) time.Time {
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	firstMonday := jan4.AddDate(0, 0, 1-wd)
	return firstMonday.AddDate(0, 0, (week-1)*7)
}

// SundayOfWeek returns the Sunday closing the given ISO week.
func SundayOfWeek(isoYear, week int) time.Time {
	return MondayOfWeek(isoYear, week).AddDate(0, 0, 6)
}
