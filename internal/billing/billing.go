// Package billing implements credit-card billing-cycle date arithmetic and
// the recurring-schedule date-advance primitive. Everything here is a pure
// function of its inputs; callers pass the reference date explicitly.
//
// Statement and due days are expected to be 1-28 (validated at the API
// boundary). Out-of-range values are clamped to the month instead of
// producing invalid dates.
package billing

import (
	"time"

	"pitaka/internal/models"
)

// Period is an inclusive date range bounded by statement close dates.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDay pins day into the valid range for the month.
func clampDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := daysInMonth(year, month); day > last {
		return last
	}
	return day
}

// dateOnly truncates t to midnight, preserving its location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ClosedStatementPeriod returns the most recently closed statement period
// relative to ref. If ref is past the statement day this month, the cycle
// closed this month; otherwise it closed last month. The period starts the
// day after the previous close.
func ClosedStatementPeriod(statementDay int, ref time.Time) Period {
	ref = dateOnly(ref)

	closeYear, closeMonth := ref.Year(), ref.Month()
	if ref.Day() <= statementDay {
		// Statement hasn't closed yet this month; last close was previous month.
		closeMonth--
		if closeMonth < time.January {
			closeMonth = time.December
			closeYear--
		}
	}

	closeDay := clampDay(closeYear, closeMonth, statementDay)
	end := time.Date(closeYear, closeMonth, closeDay, 0, 0, 0, 0, ref.Location())

	prevYear, prevMonth := closeYear, closeMonth-1
	if prevMonth < time.January {
		prevMonth = time.December
		prevYear--
	}
	startDay := clampDay(prevYear, prevMonth, statementDay+1)
	start := time.Date(prevYear, prevMonth, startDay, 0, 0, 0, 0, ref.Location())

	return Period{Start: start, End: end}
}

// OpenBillingPeriod returns the period currently accumulating charges: it
// starts the day after the last close and ends on the statement day of the
// following month.
func OpenBillingPeriod(statementDay int, ref time.Time) Period {
	closed := ClosedStatementPeriod(statementDay, ref)
	start := closed.End.AddDate(0, 0, 1)

	endYear, endMonth := start.Year(), start.Month()+1
	if endMonth > time.December {
		endMonth = time.January
		endYear++
	}
	endDay := clampDay(endYear, endMonth, statementDay)
	end := time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, start.Location())

	return Period{Start: start, End: end}
}

// DueDate returns the payment due date for the currently outstanding
// statement: dueDay of the month after the closed period's end.
func DueDate(statementDay, dueDay int, ref time.Time) time.Time {
	closed := ClosedStatementPeriod(statementDay, ref)
	end := closed.End

	dueYear, dueMonth := end.Year(), end.Month()+1
	if dueMonth > time.December {
		dueMonth = time.January
		dueYear++
	}
	day := clampDay(dueYear, dueMonth, dueDay)
	return time.Date(dueYear, dueMonth, day, 0, 0, 0, 0, end.Location())
}

// DaysUntilDue returns the number of calendar days from ref to due. Negative
// means the due date has passed. The difference is taken on UTC-rebuilt
// dates so mixed locations and DST transitions cannot shave a day off.
func DaysUntilDue(due, ref time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(r) / (24 * time.Hour))
}

// AdvanceDate moves a recurring-rule cursor forward one period. Monthly and
// yearly advances clamp to the last day of the target month (Jan 31 monthly
// advances to Feb 28), matching how people expect month-end bills to behave.
func AdvanceDate(current time.Time, freq models.RecurrenceFrequency) time.Time {
	current = dateOnly(current)
	switch freq {
	case models.FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case models.FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	case models.FrequencyMonthly:
		return addMonths(current, 1)
	case models.FrequencyYearly:
		return addMonths(current, 12)
	default:
		return current
	}
}

// addMonths adds calendar months with end-of-month clamping. time.AddDate
// normalizes overflow (Jan 31 + 1 month = Mar 3), which is wrong here.
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	month += time.Month(months)
	for month > time.December {
		month -= 12
		year++
	}
	day = clampDay(year, month, day)
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
