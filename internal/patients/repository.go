package patients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for patient storage
type Repository interface {
	List(ctx context.Context) ([]Patient, error)
	Create(ctx context.Context, req *CreateRequest) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
}

// InMemoryRepository stores patients in memory. Used for tests and for
// running without a database.
type InMemoryRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient
	order    []string // ids, newest first
	seqs     map[int]int
	suffix   string
	now      func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(recordSuffix string) *InMemoryRepository {
	if recordSuffix == "" {
		recordSuffix = "PSI"
	}
	return &InMemoryRepository{
		patients: make(map[string]*Patient),
		seqs:     make(map[int]int),
		suffix:   recordSuffix,
		now:      time.Now,
	}
}

// List returns all patients, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.patients[id])
	}
	return out, nil
}

// Create creates a new patient. The record number is assigned from a
// per-year sequence so it cannot collide under concurrent creation.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	year := createdAt.Year()
	r.seqs[year]++

	p := &Patient{
		ID:                  uuid.New().String(),
		MedicalRecordNumber: FormatRecordNumber(year, r.seqs[year], r.suffix),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		DateOfBirth:         req.DateOfBirth,
		Gender:              req.Gender,
		Phone:               req.Phone,
		Email:               req.Email,
		CreatedAt:           createdAt,
	}
	r.patients[p.ID] = p
	r.order = append([]string{p.ID}, r.order...)
	return p, nil
}

// GetByID retrieves a patient by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}
