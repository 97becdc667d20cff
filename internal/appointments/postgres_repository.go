package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowdoc/clinic-platform/internal/patients"
)

// db defines the database interface needed by PostgresRepository.
// Satisfied by *pgxpool.Pool and by pgxmock in tests.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(d db) *PostgresRepository {
	return &PostgresRepository{db: d}
}

// selectJoined pulls appointment rows pre-joined with the patient
// snapshot. The LEFT JOIN keeps appointments whose patient reference no
// longer resolves; those rows carry a nil snapshot.
const selectJoined = `
	SELECT a.id, a.patient_id, a.clinician_id,
	       to_char(a.appointment_date, 'YYYY-MM-DD'),
	       a.start_time, a.end_time, a.status, a.type, COALESCE(a.notes, ''),
	       p.id, p.medical_record_number, p.first_name, p.last_name,
	       to_char(p.date_of_birth, 'YYYY-MM-DD'), p.gender, p.phone, p.email, p.created_at
	FROM appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
`

// List returns all appointments ordered by date then start time.
func (r *PostgresRepository) List(ctx context.Context) ([]Appointment, error) {
	query := selectJoined + ` ORDER BY a.appointment_date ASC, a.start_time ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return out, nil
}

// GetByID fetches a single appointment with its patient snapshot.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := selectJoined + ` WHERE a.id = $1`
	a, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: load failed: %w", err)
	}
	return a, nil
}

// Create books a new appointment. Status is forced to scheduled.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	insert := `
		INSERT INTO appointments (id, patient_id, clinician_id, appointment_date, start_time, end_time, status, type, notes)
		VALUES ($1, $2, $3, $4, $5, $6, 'scheduled', $7, NULLIF($8, ''))
	`
	if _, err := r.db.Exec(ctx, insert,
		id,
		req.PatientID,
		req.ClinicianID,
		req.Date,
		req.StartTime,
		req.EndTime,
		string(req.Type),
		req.Notes,
	); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Update edits every field except id and status.
func (r *PostgresRepository) Update(ctx context.Context, req *UpdateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	update := `
		UPDATE appointments
		SET patient_id = $2, clinician_id = $3, appointment_date = $4,
		    start_time = $5, end_time = $6, type = $7, notes = NULLIF($8, '')
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, update,
		req.ID,
		req.PatientID,
		req.ClinicianID,
		req.Date,
		req.StartTime,
		req.EndTime,
		string(req.Type),
		req.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("appointments: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAppointmentNotFound
	}

	return r.GetByID(ctx, req.ID)
}

// Delete removes an appointment permanently.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// UpdateStatus sets the status column only.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	tag, err := r.db.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("appointments: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAppointment(row scannable) (*Appointment, error) {
	var (
		a         Appointment
		pID       *string
		mrn       *string
		firstName *string
		lastName  *string
		dob       *string
		gender    *string
		phone     *string
		email     *string
		createdAt *time.Time
	)
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ClinicianID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Type,
		&a.Notes,
		&pID,
		&mrn,
		&firstName,
		&lastName,
		&dob,
		&gender,
		&phone,
		&email,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if pID != nil {
		a.Patient = &patients.Patient{
			ID:                  *pID,
			MedicalRecordNumber: deref(mrn),
			FirstName:           deref(firstName),
			LastName:            deref(lastName),
			DateOfBirth:         deref(dob),
			Gender:              deref(gender),
			Phone:               deref(phone),
			Email:               deref(email),
		}
		if createdAt != nil {
			a.Patient.CreatedAt = *createdAt
		}
	}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
