package appointments

import (
	"strconv"
	"strings"
	"time"

	"github.com/flowdoc/clinic-platform/internal/patients"
)

// Type categorizes the clinical encounter.
type Type string

const (
	TypeConsultation Type = "consultation"
	TypeFollowUp     Type = "follow_up"
	TypeEmergency    Type = "emergency"
	TypeEvaluation   Type = "evaluation"
	TypeTherapy      Type = "therapy"
)

// Valid reports whether t is a known appointment type.
func (t Type) Valid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeEmergency, TypeEvaluation, TypeTherapy:
		return true
	}
	return false
}

// Appointment is a scheduled clinical encounter between a clinician and a
// patient at a specific date/time interval.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	ClinicianID string            `json:"clinician_id"`
	Date        string            `json:"appointment_date"` // YYYY-MM-DD
	StartTime   string            `json:"start_time"`       // HH:MM, 24h
	EndTime     string            `json:"end_time"`         // HH:MM, 24h
	Status      Status            `json:"status"`
	Type        Type              `json:"type"`
	Notes       string            `json:"notes,omitempty"`
	Patient     *patients.Patient `json:"patient,omitempty"` // joined snapshot, nil if unresolved
}

// PatientLabel returns a display name for the referenced patient. An
// appointment holds only a soft reference, so an unresolved patient
// degrades to a placeholder instead of an error.
func (a *Appointment) PatientLabel() string {
	if a.Patient == nil {
		return "unknown"
	}
	return a.Patient.FullName()
}

// StartMinutes returns the start time as minutes since midnight.
// Inputs are validated before storage, so parse failures map to 0.
func (a *Appointment) StartMinutes() int {
	m, _ := MinutesOfDay(a.StartTime)
	return m
}

// EndMinutes returns the end time as minutes since midnight.
func (a *Appointment) EndMinutes() int {
	m, _ := MinutesOfDay(a.EndTime)
	return m
}

// Overlaps reports whether two appointments occupy overlapping intervals
// for the same clinician on the same date.
func Overlaps(a, b *Appointment) bool {
	if a.ClinicianID != b.ClinicianID || a.Date != b.Date {
		return false
	}
	return a.StartMinutes() < b.EndMinutes() && b.StartMinutes() < a.EndMinutes()
}

// MinutesOfDay parses an HH:MM 24-hour time into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, ErrInvalidInterval
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidInterval
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidInterval
	}
	return h*60 + m, nil
}

// ValidateInterval checks that the date parses and the end time is
// strictly after the start time on the same day.
func ValidateInterval(date, start, end string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidInterval
	}
	startMin, err := MinutesOfDay(start)
	if err != nil {
		return err
	}
	endMin, err := MinutesOfDay(end)
	if err != nil {
		return err
	}
	if endMin <= startMin {
		return ErrInvalidInterval
	}
	return nil
}

// CreateRequest carries the fields for booking a new appointment.
// Status is always forced to scheduled by the store.
type CreateRequest struct {
	PatientID   string `json:"patient_id"`
	ClinicianID string `json:"clinician_id"`
	Date        string `json:"appointment_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Type        Type   `json:"type"`
	Notes       string `json:"notes,omitempty"`
}

// Validate validates the create request
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	return ValidateInterval(r.Date, r.StartTime, r.EndTime)
}

// UpdateRequest carries an edit to an existing appointment. Any field
// except the id may change; status changes go through the transition
// path instead.
type UpdateRequest struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	ClinicianID string `json:"clinician_id"`
	Date        string `json:"appointment_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Type        Type   `json:"type"`
	Notes       string `json:"notes,omitempty"`
}

// Validate validates the update request
func (r *UpdateRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrAppointmentNotFound
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	return ValidateInterval(r.Date, r.StartTime, r.EndTime)
}
