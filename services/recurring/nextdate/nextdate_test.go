package nextdate

import (
	"testing"
	"time"

	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	cases := []struct {
		name     string
		from     time.Time
		pattern  models.RecurringPattern
		interval int
		want     time.Time
	}{
		{"daily", date(2024, time.March, 10), models.RecurringDaily, 1, date(2024, time.March, 11)},
		{"every third day", date(2024, time.March, 10), models.RecurringDaily, 3, date(2024, time.March, 13)},
		{"weekly", date(2024, time.March, 10), models.RecurringWeekly, 1, date(2024, time.March, 17)},
		{"biweekly", date(2024, time.March, 10), models.RecurringWeekly, 2, date(2024, time.March, 24)},
		{"monthly", date(2024, time.March, 10), models.RecurringMonthly, 1, date(2024, time.April, 10)},
		{"monthly clamps to leap february", date(2024, time.January, 31), models.RecurringMonthly, 1, date(2024, time.February, 29)},
		{"monthly clamps to short february", date(2023, time.January, 31), models.RecurringMonthly, 1, date(2023, time.February, 28)},
		{"monthly clamps to thirty days", date(2024, time.March, 31), models.RecurringMonthly, 1, date(2024, time.April, 30)},
		{"monthly across year boundary", date(2024, time.November, 15), models.RecurringMonthly, 3, date(2025, time.February, 15)},
		{"yearly", date(2024, time.March, 10), models.RecurringYearly, 1, date(2025, time.March, 10)},
		{"yearly clamps leap day", date(2024, time.February, 29), models.RecurringYearly, 1, date(2025, time.February, 28)},
		{"yearly leap day to leap year", date(2024, time.February, 29), models.RecurringYearly, 4, date(2028, time.February, 29)},
		{"zero interval treated as one", date(2024, time.March, 10), models.RecurringDaily, 0, date(2024, time.March, 11)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Next(tc.from, tc.pattern, tc.interval)
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Next(%v, %s, %d) = %v, want %v", tc.from, tc.pattern, tc.interval, got, tc.want)
			}
		})
	}
}

func TestNext_PreservesTimeOfDay(t *testing.T) {
	from := time.Date(2024, time.January, 31, 17, 45, 30, 0, time.UTC)
	got, err := Next(from, models.RecurringMonthly, 1)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Hour() != 17 || got.Minute() != 45 || got.Second() != 30 {
		t.Errorf("time of day not preserved: %v", got)
	}
}

func TestNext_RejectsNonRecurringPatterns(t *testing.T) {
	for _, pattern := range []models.RecurringPattern{models.RecurringNone, ""} {
		if _, err := Next(date(2024, time.March, 10), pattern, 1); err == nil {
			t.Errorf("Next(%q) should fail", pattern)
		}
	}
}
