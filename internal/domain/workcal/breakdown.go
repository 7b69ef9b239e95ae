package workcal

import (
	"math"
	"time"
)

// Baseline and night windows, in minutes from local midnight.
const (
	weekdayStart  = 8 * 60  // 08:00
	weekdayEnd    = 17 * 60 // 17:00
	saturdayStart = 8 * 60  // 08:00
	saturdayEnd   = 12 * 60 // 12:00
	nightEnd      = 6 * 60  // 06:00, morning boundary of the night window
	nightStart    = 20 * 60 // 20:00, evening boundary of the night window
	minutesPerDay = 24 * 60
)

// Breakdown is the hour split of one work interval.
// Normal + ExtraNormal + ExtraSpecial always equals the interval's total
// duration in hours, up to 0.01h of rounding per bucket.
type Breakdown struct {
	Normal       float64 `json:"normalHours"`
	ExtraNormal  float64 `json:"extraNormalHours"`
	ExtraSpecial float64 `json:"extraSpecialHours"`
	DayType      DayType `json:"dayType"`
}

// TotalHours returns the sum of all three buckets.
func (b Breakdown) TotalHours() float64 {
	return round2(b.Normal + b.ExtraNormal + b.ExtraSpecial)
}

// Compute splits the interval [start, end] into normal, extra and special
// hours. The day type is classified on start's calendar date. An end
// time-of-day earlier than start's is read as a midnight crossing into the
// next day; end must not be more than 24h after start.
//
// Rules:
//   - weekday baseline 08:00-17:00, saturday baseline 08:00-12:00;
//   - sundays and holidays have no baseline, the whole interval is special;
//   - the 20:00-06:00 night window upgrades extra hours to special on
//     weekdays and saturdays.
func Compute(start, end time.Time, cal Calendar) Breakdown {
	dayType := Classify(start, cal)

	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	if endMin < startMin {
		endMin += minutesPerDay // crosses midnight
	}
	total := endMin - startMin

	if dayType == DaySunday || dayType == DayHoliday {
		return Breakdown{
			ExtraSpecial: round2(float64(total) / 60),
			DayType:      dayType,
		}
	}

	baseStart, baseEnd := weekdayStart, weekdayEnd
	if dayType == DaySaturday {
		baseStart, baseEnd = saturdayStart, saturdayEnd
	}

	normal := overlap(startMin, endMin, baseStart, baseEnd)
	extraNormal := total - normal
	extraSpecial := 0

	// Pre-dawn part of the night window (midnight to 06:00).
	if startMin <= nightEnd {
		if night := min(endMin, nightEnd) - startMin; night > 0 {
			extraSpecial += night
			extraNormal -= night
		}
	}

	// Evening part of the night window (20:00 onward, wrapping past
	// midnight for intervals that cross it).
	if endMin >= nightStart {
		if night := endMin - max(startMin, nightStart); night > 0 {
			extraSpecial += night
			extraNormal -= night
		}
	}

	return Breakdown{
		Normal:       round2(clampMinutes(normal)),
		ExtraNormal:  round2(clampMinutes(extraNormal)),
		ExtraSpecial: round2(clampMinutes(extraSpecial)),
		DayType:      dayType,
	}
}

// overlap returns the overlap in minutes of [aStart, aEnd] and [bStart, bEnd],
// clamped to zero when the ranges do not intersect.
func overlap(aStart, aEnd, bStart, bEnd int) int {
	lo := max(aStart, bStart)
	hi := min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func clampMinutes(m int) float64 {
	if m < 0 {
		return 0
	}
	return float64(m) / 60
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
