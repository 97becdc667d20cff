package calendar

import (
	"reflect"
	"testing"
	"time"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func appt(id, day, start, end string) appointments.Appointment {
	return appointments.Appointment{
		ID:        id,
		PatientID: "p-" + id,
		Date:      day,
		StartTime: start,
		EndTime:   end,
		Status:    appointments.StatusScheduled,
		Type:      appointments.TypeConsultation,
	}
}

func TestProjectMonthGridShape(t *testing.T) {
	p := ProjectMonth(date("2024-03-15"), nil)

	if p.Month != "2024-03" {
		t.Errorf("expected month 2024-03, got %s", p.Month)
	}
	if len(p.Cells) != 42 {
		t.Fatalf("expected 42 cells, got %d", len(p.Cells))
	}

	// March 1st 2024 is a Friday, so the grid starts on Monday Feb 26.
	if p.Cells[0].Date != "2024-02-26" {
		t.Errorf("expected grid start 2024-02-26, got %s", p.Cells[0].Date)
	}
	if p.Cells[0].InMonth {
		t.Error("leading cell from February must not be in-month")
	}

	// Dates strictly increase by one day across the whole grid.
	for i := 1; i < len(p.Cells); i++ {
		prev := date(p.Cells[i-1].Date)
		cur := date(p.Cells[i].Date)
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("cell %d: expected %s, got %s", i, prev.AddDate(0, 0, 1).Format(DateLayout), p.Cells[i].Date)
		}
	}
}

func TestProjectMonthGridStartsOnMonday(t *testing.T) {
	cases := []string{"2024-03-15", "2024-09-01", "2025-01-01", "2024-07-31"}
	for _, ref := range cases {
		p := ProjectMonth(date(ref), nil)
		if wd := date(p.Cells[0].Date).Weekday(); wd != time.Monday {
			t.Errorf("ref %s: grid starts on %s, want Monday", ref, wd)
		}
	}
}

func TestProjectMonthInMonthFlags(t *testing.T) {
	p := ProjectMonth(date("2024-03-15"), nil)

	inMonth := 0
	for _, c := range p.Cells {
		if c.InMonth {
			inMonth++
			if c.Date < "2024-03-01" || c.Date > "2024-03-31" {
				t.Errorf("cell %s marked in-month", c.Date)
			}
		}
	}
	if inMonth != 31 {
		t.Errorf("expected 31 in-month cells for March, got %d", inMonth)
	}
}

func TestProjectMonthEveryAppointmentLandsInExactlyOneCell(t *testing.T) {
	appts := []appointments.Appointment{
		appt("a1", "2024-03-11", "09:00", "09:50"),
		appt("a2", "2024-03-11", "10:00", "10:30"),
		appt("a3", "2024-02-28", "14:00", "15:00"), // leading pad cell
		appt("a4", "2024-04-01", "08:30", "09:00"), // trailing pad cell
		appt("a5", "2024-06-01", "08:00", "09:00"), // outside the grid entirely
	}

	p := ProjectMonth(date("2024-03-15"), appts)

	seen := map[string]int{}
	for _, c := range p.Cells {
		for _, a := range c.Appointments {
			seen[a.ID]++
			if a.Date != c.Date {
				t.Errorf("appointment %s dated %s placed in cell %s", a.ID, a.Date, c.Date)
			}
		}
	}
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		if seen[id] != 1 {
			t.Errorf("appointment %s appears %d times, want 1", id, seen[id])
		}
	}
	if seen["a5"] != 0 {
		t.Error("appointment outside the grid window must not appear")
	}
}

func TestProjectMonthCellOrderingIsStableForTies(t *testing.T) {
	appts := []appointments.Appointment{
		appt("late", "2024-03-11", "11:00", "12:00"),
		appt("tie-first", "2024-03-11", "09:00", "09:30"),
		appt("tie-second", "2024-03-11", "09:00", "10:00"),
	}

	p := ProjectMonth(date("2024-03-11"), appts)

	var cell *MonthCell
	for i := range p.Cells {
		if p.Cells[i].Date == "2024-03-11" {
			cell = &p.Cells[i]
			break
		}
	}
	if cell == nil {
		t.Fatal("2024-03-11 cell not found")
	}
	ids := make([]string, 0, len(cell.Appointments))
	for _, a := range cell.Appointments {
		ids = append(ids, a.ID)
	}
	want := []string{"tie-first", "tie-second", "late"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("cell order %v, want %v", ids, want)
	}
}

func TestProjectMonthIsPure(t *testing.T) {
	appts := []appointments.Appointment{
		appt("b", "2024-03-12", "10:00", "11:00"),
		appt("a", "2024-03-11", "09:00", "09:50"),
	}
	original := make([]appointments.Appointment, len(appts))
	copy(original, appts)

	first := ProjectMonth(date("2024-03-15"), appts)
	second := ProjectMonth(date("2024-03-15"), appts)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different projections")
	}
	if !reflect.DeepEqual(appts, original) {
		t.Error("input slice was mutated")
	}
}
