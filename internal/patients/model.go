package patients

import (
	"fmt"
	"strings"
	"time"
)

// Patient represents a patient record.
type Patient struct {
	ID                  string    `json:"id"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         string    `json:"date_of_birth"` // YYYY-MM-DD
	Gender              string    `json:"gender"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// FullName returns the display name for the patient.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CreateRequest represents the request body for creating a patient.
// The medical record number is assigned by the store, never by the caller.
type CreateRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Validate validates the create patient request
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrInvalidName
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return ErrInvalidDateOfBirth
	}
	return nil
}

// FormatRecordNumber renders a medical record number as YYYY-NNN-SUFFIX.
func FormatRecordNumber(year, seq int, suffix string) string {
	return fmt.Sprintf("%d-%03d-%s", year, seq, suffix)
}
