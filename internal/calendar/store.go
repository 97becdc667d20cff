package calendar

import (
	"context"

	"github.com/flowdoc/clinic-platform/internal/appointments"
	"github.com/flowdoc/clinic-platform/internal/patients"
)

// Store is the persistence collaborator the controller delegates to.
// List operations return records pre-joined with their patient snapshot,
// ordered by date then start time. Any call may fail with a backend
// error; the controller treats every such failure as recoverable and
// never mutates its in-memory state before the store acknowledges.
type Store interface {
	ListPatients(ctx context.Context) ([]patients.Patient, error)
	ListAppointments(ctx context.Context) ([]appointments.Appointment, error)
	CreatePatient(ctx context.Context, req *patients.CreateRequest) (*patients.Patient, error)
	CreateAppointment(ctx context.Context, req *appointments.CreateRequest) (*appointments.Appointment, error)
	UpdateAppointment(ctx context.Context, req *appointments.UpdateRequest) (*appointments.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	UpdateAppointmentStatus(ctx context.Context, id string, status appointments.Status) error
}

// RepositoryStore adapts the patient and appointment repositories to the
// Store contract.
type RepositoryStore struct {
	Patients     patients.Repository
	Appointments appointments.Repository
}

// ListPatients returns all patient records.
func (s *RepositoryStore) ListPatients(ctx context.Context) ([]patients.Patient, error) {
	return s.Patients.List(ctx)
}

// ListAppointments returns all appointments with joined snapshots.
func (s *RepositoryStore) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	return s.Appointments.List(ctx)
}

// CreatePatient creates a patient record.
func (s *RepositoryStore) CreatePatient(ctx context.Context, req *patients.CreateRequest) (*patients.Patient, error) {
	return s.Patients.Create(ctx, req)
}

// CreateAppointment books an appointment.
func (s *RepositoryStore) CreateAppointment(ctx context.Context, req *appointments.CreateRequest) (*appointments.Appointment, error) {
	return s.Appointments.Create(ctx, req)
}

// UpdateAppointment edits an appointment.
func (s *RepositoryStore) UpdateAppointment(ctx context.Context, req *appointments.UpdateRequest) (*appointments.Appointment, error) {
	return s.Appointments.Update(ctx, req)
}

// DeleteAppointment removes an appointment.
func (s *RepositoryStore) DeleteAppointment(ctx context.Context, id string) error {
	return s.Appointments.Delete(ctx, id)
}

// UpdateAppointmentStatus sets only the status column.
func (s *RepositoryStore) UpdateAppointmentStatus(ctx context.Context, id string, status appointments.Status) error {
	return s.Appointments.UpdateStatus(ctx, id, status)
}
