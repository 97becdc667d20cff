package calendar

import (
	"sort"
	"time"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

// ProjectMonth computes the 42-cell Monday-first grid covering the month
// of ref, padded with leading and trailing days from the adjacent
// months. Each cell buckets the appointments dated on it, ordered
// ascending by start time; equal start times keep input order. The full
// bucket is returned; truncating long days is the renderer's decision.
//
// Pure: identical inputs produce deeply equal output and the input slice
// is never mutated.
func ProjectMonth(ref time.Time, appts []appointments.Appointment) MonthProjection {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	gridStart := weekStart(firstOfMonth)

	buckets := make(map[string][]appointments.Appointment)
	for _, a := range appts {
		buckets[a.Date] = append(buckets[a.Date], a)
	}
	for date := range buckets {
		day := buckets[date]
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].StartTime < day[j].StartTime
		})
	}

	cells := make([]MonthCell, 0, 42)
	for i := 0; i < 42; i++ {
		day := gridStart.AddDate(0, 0, i)
		date := day.Format(DateLayout)
		cells = append(cells, MonthCell{
			Date:         date,
			InMonth:      day.Month() == ref.Month() && day.Year() == ref.Year(),
			Appointments: buckets[date],
		})
	}

	return MonthProjection{
		Month: ref.Format("2006-01"),
		Cells: cells,
	}
}
