package calendar

import (
	"time"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

// ProjectWeek computes the 7 Monday-starting dates of the week containing
// ref and converts each day's appointments to vertical intervals
// relative to the visible-day start. Appointments outside the visible
// window are still returned with their (possibly negative) offsets;
// clipping and scrolling are presentation decisions. Overlapping
// intervals are not resolved into lanes; simultaneous appointments
// simply coexist in the same column.
//
// Pure: identical inputs produce deeply equal output and the input slice
// is never mutated.
func ProjectWeek(ref time.Time, appts []appointments.Appointment, windowStartMinutes int) WeekProjection {
	start := weekStart(ref)

	days := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		day := WeekDay{Date: date}
		for _, a := range appts {
			if a.Date != date {
				continue
			}
			day.Intervals = append(day.Intervals, WeekInterval{
				Appointment:     a,
				OffsetMinutes:   a.StartMinutes() - windowStartMinutes,
				DurationMinutes: a.EndMinutes() - a.StartMinutes(),
			})
		}
		days = append(days, day)
	}

	return WeekProjection{
		WindowStartMinutes: windowStartMinutes,
		Days:               days,
	}
}
