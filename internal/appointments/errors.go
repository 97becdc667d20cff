package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned for a status change not permitted
	// from the current state
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrInvalidInterval is returned when the date/time interval is
	// malformed or the end time is not after the start time
	ErrInvalidInterval = errors.New("end time must be after start time on a valid date")

	// ErrInvalidType is returned for an unknown appointment type
	ErrInvalidType = errors.New("unknown appointment type")

	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("unknown appointment status")

	// ErrMissingPatient is returned when the patient reference is missing
	ErrMissingPatient = errors.New("patient_id is required")
)
