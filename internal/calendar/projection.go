// Package calendar implements the appointment calendar core: pure
// temporal projections of appointment lists onto month, week and agenda
// views, and the controller that orchestrates navigation and mutations
// against the store.
package calendar

import (
	"time"

	"github.com/flowdoc/clinic-platform/internal/appointments"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DefaultWindowStartMinutes is the top of the visible day in week view
// (08:00).
const DefaultWindowStartMinutes = 8 * 60

// ViewType selects which projection the controller runs.
type ViewType string

const (
	ViewMonth  ViewType = "month"
	ViewWeek   ViewType = "week"
	ViewAgenda ViewType = "agenda"
)

// Valid reports whether v is a known view type.
func (v ViewType) Valid() bool {
	return v == ViewMonth || v == ViewWeek || v == ViewAgenda
}

// MonthCell is one day of the 6x7 month grid.
type MonthCell struct {
	Date         string                     `json:"date"`
	InMonth      bool                       `json:"in_month"`
	Appointments []appointments.Appointment `json:"appointments"`
}

// MonthProjection is the 42-cell Monday-first grid covering the
// reference month.
type MonthProjection struct {
	Month string      `json:"month"` // YYYY-MM
	Cells []MonthCell `json:"cells"` // always 42
}

// WeekInterval positions one appointment vertically within a day column.
type WeekInterval struct {
	Appointment     appointments.Appointment `json:"appointment"`
	OffsetMinutes   int                      `json:"offset_minutes"`
	DurationMinutes int                      `json:"duration_minutes"`
}

// WeekDay is one column of the week view.
type WeekDay struct {
	Date      string         `json:"date"`
	Intervals []WeekInterval `json:"intervals"`
}

// WeekProjection is the Monday-starting week containing the reference
// date, with each appointment converted to a vertical interval.
type WeekProjection struct {
	WindowStartMinutes int       `json:"window_start_minutes"`
	Days               []WeekDay `json:"days"` // always 7
}

// AgendaGroup is one date's chronological slice of the agenda.
type AgendaGroup struct {
	Date         string                     `json:"date"`
	Appointments []appointments.Appointment `json:"appointments"`
}

// AgendaProjection is the full appointment list sorted and grouped by
// date.
type AgendaProjection struct {
	Groups []AgendaGroup `json:"groups"`
}

// Projection is the renderer-facing output for the current view. Exactly
// one of Month, Week or Agenda is set.
type Projection struct {
	View          ViewType          `json:"view"`
	ReferenceDate string            `json:"reference_date"`
	Month         *MonthProjection  `json:"month,omitempty"`
	Week          *WeekProjection   `json:"week,omitempty"`
	Agenda        *AgendaProjection `json:"agenda,omitempty"`
}

// weekStart returns the Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
