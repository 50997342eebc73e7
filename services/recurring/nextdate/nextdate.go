// Package nextdate computes the due date of the next occurrence of a
// recurring task.
package nextdate

import (
	"fmt"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

// Next returns the due date of the occurrence after from, advanced by
// interval steps of the pattern. Interval values below 1 are treated as 1.
//
// Month and year steps clamp instead of overflowing: Jan 31 plus one month
// is the last day of February, not March 2 or 3. Daily and weekly steps are
// plain day arithmetic.
func Next(from time.Time, pattern models.RecurringPattern, interval int) (time.Time, error) {
	if interval < 1 {
		interval = 1
	}

	switch pattern {
	case models.RecurringDaily:
		return from.AddDate(0, 0, interval), nil
	case models.RecurringWeekly:
		return from.AddDate(0, 0, 7*interval), nil
	case models.RecurringMonthly:
		return addMonthsClamped(from, interval), nil
	case models.RecurringYearly:
		return addMonthsClamped(from, 12*interval), nil
	default:
		return time.Time{}, fmt.Errorf("no next occurrence for pattern %q", pattern)
	}
}

// addMonthsClamped advances by whole months, keeping the day of month where
// possible and clamping to the last day of the target month otherwise.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	m := int(month) - 1 + months
	year += m / 12
	month = time.Month(m%12 + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
