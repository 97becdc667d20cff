package calendar

import (
	"sort"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

// ProjectAgenda sorts the full appointment list ascending by
// (date, start time) and groups it into chronologically ordered
// (date, appointments) pairs. The whole projection is recomputed on
// every call; there is no incremental update.
//
// Pure: identical inputs produce deeply equal output and the input slice
// is never mutated.
func ProjectAgenda(appts []appointments.Appointment) AgendaProjection {
	sorted := make([]appointments.Appointment, len(appts))
	copy(sorted, appts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})

	var groups []AgendaGroup
	for _, a := range sorted {
		if n := len(groups); n > 0 && groups[n-1].Date == a.Date {
			groups[n-1].Appointments = append(groups[n-1].Appointments, a)
			continue
		}
		groups = append(groups, AgendaGroup{
			Date:         a.Date,
			Appointments: []appointments.Appointment{a},
		})
	}

	return AgendaProjection{Groups: groups}
}
