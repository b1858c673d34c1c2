package services

import (
	"time"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// ClassifyWeek evaluates the execution status of one (equipment, week, year)
// cell given "today" and the preventive follow-up covering that tuple (nil
// when none exists).
//
// Weeks more than one week in the past are terminal: OnTime, Late or
// NotDone. The immediately preceding week downgrades the failure to
// Overdue, still actionable. The current week reports Pending when nothing
// was executed yet. Future weeks are always Pending, whatever the follow-up
// says, because they are not actionable.
func ClassifyWeek(targetWeek, targetYear int, today time.Time, fu *entities.FollowUp) entities.MaintenanceStatus {
	currentWeek, currentYear := isoweek.WeekOfDate(today)

	// Week distance measured on actual Mondays, so the comparison is
	// exact across the year boundary (week 52/53 against week 1).
	targetMonday := isoweek.MondayOfWeek(targetYear, targetWeek)
	currentMonday := isoweek.MondayOfWeek(currentYear, currentWeek)
	diff := int(targetMonday.Sub(currentMonday).Hours() / (24 * 7))

	if diff > 0 {
		return entities.StatusPending
	}

	executed, inWeek, afterWeek := executionAgainstWeek(targetWeek, targetYear, fu)

	switch {
	case diff < -1:
		if executed && inWeek {
			return entities.StatusOnTime
		}
		if executed && afterWeek {
			return entities.StatusLate
		}
		return entities.StatusNotDone
	case diff == -1:
		if executed && inWeek {
			return entities.StatusOnTime
		}
		if executed && afterWeek {
			return entities.StatusLate
		}
		return entities.StatusOverdue
	default: // diff == 0
		if executed && inWeek {
			return entities.StatusOnTime
		}
		if executed && afterWeek {
			return entities.StatusLate
		}
		return entities.StatusPending
	}
}

// executionAgainstWeek positions the follow-up's execution date relative to
// the target week's [Monday, Sunday] range.
func executionAgainstWeek(week, year int, fu *entities.FollowUp) (executed, inWeek, afterWeek bool) {
	if fu == nil || !fu.ExecutionDate.Valid {
		return false, false, false
	}

	monday := isoweek.MondayOfWeek(year, week)
	sundayEnd := monday.AddDate(0, 0, 7) // exclusive upper bound

	exec := fu.ExecutionDate.Time
	execDay := time.Date(exec.Year(), exec.Month(), exec.Day(), 0, 0, 0, 0, time.UTC)

	executed = true
	inWeek = !execDay.Before(monday) && execDay.Before(sundayEnd)
	afterWeek = !execDay.Before(sundayEnd)
	return executed, inWeek, afterWeek
}
