package appointments

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/flowdoc/clinic-platform/internal/patients"
)

// Repository defines the interface for appointment storage. List returns
// appointments pre-joined with their patient snapshot, ordered by date
// then start time ascending.
type Repository interface {
	List(ctx context.Context) ([]Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Create(ctx context.Context, req *CreateRequest) (*Appointment, error)
	Update(ctx context.Context, req *UpdateRequest) (*Appointment, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// InMemoryRepository stores appointments in memory. Patient snapshots are
// resolved through the given patient repository when one is provided.
type InMemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*Appointment
	order    []string // insertion order, preserved for equal sort keys
	patients patients.Repository
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(patientRepo patients.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		byID:     make(map[string]*Appointment),
		patients: patientRepo,
	}
}

// List returns all appointments ordered by date then start time. The sort
// is stable, so rows with identical keys keep insertion order.
func (r *InMemoryRepository) List(ctx context.Context) ([]Appointment, error) {
	r.mu.RLock()
	out := make([]Appointment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// GetByID retrieves a single appointment.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

// Create books a new appointment with status forced to scheduled.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := &Appointment{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      StatusScheduled,
		Type:        req.Type,
		Notes:       req.Notes,
		Patient:     r.resolvePatient(ctx, req.PatientID),
	}

	r.mu.Lock()
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	r.mu.Unlock()

	cp := *a
	return &cp, nil
}

// Update edits every field except id and status.
func (r *InMemoryRepository) Update(ctx context.Context, req *UpdateRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snapshot := r.resolvePatient(ctx, req.PatientID)

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[req.ID]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.PatientID = req.PatientID
	a.ClinicianID = req.ClinicianID
	a.Date = req.Date
	a.StartTime = req.StartTime
	a.EndTime = req.EndTime
	a.Type = req.Type
	a.Notes = req.Notes
	a.Patient = snapshot

	cp := *a
	return &cp, nil
}

// Delete removes an appointment permanently.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateStatus sets the status column only. The store accepts any known
// status value; transition legality is the caller's invariant.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func (r *InMemoryRepository) resolvePatient(ctx context.Context, patientID string) *patients.Patient {
	if r.patients == nil {
		return nil
	}
	p, err := r.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil
	}
	return p
}
