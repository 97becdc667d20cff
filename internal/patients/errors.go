package patients

import "errors"

var (
	// ErrInvalidName is returned when the first or last name is missing
	ErrInvalidName = errors.New("first and last name are required")

	// ErrInvalidDateOfBirth is returned when the date of birth is not a valid date
	ErrInvalidDateOfBirth = errors.New("date of birth must be YYYY-MM-DD")

	// ErrPatientNotFound is returned when a patient is not found
	ErrPatientNotFound = errors.New("patient not found")
)
