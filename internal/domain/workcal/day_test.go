package workcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestClassify(t *testing.T) {
	cal := NewCalendar([]time.Time{
		date(2025, time.May, 1),  // Thursday, labor day
		date(2025, time.May, 25), // Sunday holiday
	})

	tests := []struct {
		name string
		day  time.Time
		want DayType
	}{
		{"monday", date(2025, time.May, 5), DayWeekday},
		{"friday", date(2025, time.May, 9), DayWeekday},
		{"saturday", date(2025, time.May, 10), DaySaturday},
		{"sunday", date(2025, time.May, 11), DaySunday},
		{"weekday holiday", date(2025, time.May, 1), DayHoliday},
		{"holiday wins over sunday", date(2025, time.May, 25), DayHoliday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.day, cal))
		})
	}
}

func TestClassify_EmptyCalendar(t *testing.T) {
	var cal Calendar
	assert.Equal(t, DayWeekday, Classify(date(2025, time.May, 7), cal))
	assert.Equal(t, DaySunday, Classify(date(2025, time.May, 11), cal))
}

func TestCalendar_ContainsIgnoresTimeOfDay(t *testing.T) {
	cal := NewCalendar([]time.Time{
		time.Date(2025, time.December, 25, 14, 30, 0, 0, time.Local),
	})
	assert.True(t, cal.Contains(date(2025, time.December, 25)))
	assert.False(t, cal.Contains(date(2025, time.December, 26)))
	assert.Equal(t, 1, cal.Len())
}
