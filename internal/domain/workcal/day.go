// Package workcal classifies calendar days and splits technician work
// intervals into the pay categories mandated by the labor rules: normal
// hours, extra hours and special (premium) extra hours.
//
// Everything in this package is pure: the holiday calendar is passed in
// explicitly, never read from a global or a database handle.
package workcal

import "time"

// DayType is the pay-relevant classification of a calendar day.
type DayType string

const (
	DayWeekday  DayType = "weekday"
	DaySaturday DayType = "saturday"
	DaySunday   DayType = "sunday"
	DayHoliday  DayType = "holiday"
)

const dateKeyLayout = "2006-01-02"

// Calendar is an immutable set of holiday dates.
type Calendar struct {
	days map[string]struct{}
}

// NewCalendar builds a Calendar from a list of holiday dates.
// Only the calendar date of each entry matters; time-of-day is ignored.
func NewCalendar(dates []time.Time) Calendar {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.Format(dateKeyLayout)] = struct{}{}
	}
	return Calendar{days: days}
}

// Contains reports whether the calendar date of t is a holiday.
func (c Calendar) Contains(t time.Time) bool {
	_, ok := c.days[t.Format(dateKeyLayout)]
	return ok
}

// Len returns the number of holidays in the calendar.
func (c Calendar) Len() int {
	return len(c.days)
}

// Classify returns the DayType for a calendar date. A holiday wins over
// the weekday-derived types; otherwise Sunday, Saturday, then weekday.
func Classify(date time.Time, cal Calendar) DayType {
	if cal.Contains(date) {
		return DayHoliday
	}
	switch date.Weekday() {
	case time.Sunday:
		return DaySunday
	case time.Saturday:
		return DaySaturday
	default:
		return DayWeekday
	}
}
