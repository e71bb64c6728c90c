package valueobject

import (
	"time"
)

// PeriodDays is the inclusive length of an earning period in calendar days.
// A freshly created period always spans the anchor date through anchor+4.
const PeriodDays = 5

// Period is an inclusive calendar-date range in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod returns the earning period anchored at the given date.
func NewPeriod(anchor time.Time) Period {
	start := DateOnly(anchor)
	return Period{
		Start: start,
		End:   start.AddDate(0, 0, PeriodDays-1),
	}
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
