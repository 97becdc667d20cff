package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db defines the database interface needed by PostgresRepository.
// Satisfied by *pgxpool.Pool and by pgxmock in tests.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db     db
	suffix string
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool, recordSuffix string) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return newPostgresRepository(pool, recordSuffix)
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(d db, recordSuffix string) *PostgresRepository {
	return newPostgresRepository(d, recordSuffix)
}

func newPostgresRepository(d db, suffix string) *PostgresRepository {
	if suffix == "" {
		suffix = "PSI"
	}
	return &PostgresRepository{db: d, suffix: suffix}
}

// List returns all patients, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Patient, error) {
	query := `
		SELECT id, medical_record_number, first_name, last_name,
		       to_char(date_of_birth, 'YYYY-MM-DD'), gender,
		       COALESCE(phone, ''), COALESCE(email, ''), created_at
		FROM patients
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID,
			&p.MedicalRecordNumber,
			&p.FirstName,
			&p.LastName,
			&p.DateOfBirth,
			&p.Gender,
			&p.Phone,
			&p.Email,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("patients: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate rows: %w", err)
	}
	return out, nil
}

// Create inserts a new patient. The record number comes from a per-year
// database sequence, so concurrent creates cannot collide; a stale
// in-memory count is never consulted. On the rare unique-violation race
// the insert is retried once with a fresh sequence value.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := r.createOnce(ctx, req)
	if isUniqueViolation(err) {
		p, err = r.createOnce(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) createOnce(ctx context.Context, req *CreateRequest) (*Patient, error) {
	year := time.Now().UTC().Year()

	var seq int
	seqQuery := `
		INSERT INTO record_sequences (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = record_sequences.seq + 1
		RETURNING seq
	`
	if err := r.db.QueryRow(ctx, seqQuery, year).Scan(&seq); err != nil {
		return nil, fmt.Errorf("patients: next record number: %w", err)
	}

	id := uuid.New()
	recordNumber := FormatRecordNumber(year, seq, r.suffix)
	insert := `
		INSERT INTO patients (id, medical_record_number, first_name, last_name, date_of_birth, gender, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, insert,
		id,
		recordNumber,
		req.FirstName,
		req.LastName,
		req.DateOfBirth,
		req.Gender,
		req.Phone,
		req.Email,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}

	return &Patient{
		ID:                  id.String(),
		MedicalRecordNumber: recordNumber,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		DateOfBirth:         req.DateOfBirth,
		Gender:              req.Gender,
		Phone:               req.Phone,
		Email:               req.Email,
		CreatedAt:           createdAt,
	}, nil
}

// GetByID fetches a single patient.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `
		SELECT id, medical_record_number, first_name, last_name,
		       to_char(date_of_birth, 'YYYY-MM-DD'), gender,
		       COALESCE(phone, ''), COALESCE(email, ''), created_at
		FROM patients
		WHERE id = $1
	`
	var p Patient
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.MedicalRecordNumber,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.Gender,
		&p.Phone,
		&p.Email,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: load failed: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
