package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/flowdoc/clinic-platform/internal/appointments"
	"github.com/flowdoc/clinic-platform/internal/cache"
	"github.com/flowdoc/clinic-platform/internal/observability/metrics"
	"github.com/flowdoc/clinic-platform/internal/patients"
	"github.com/flowdoc/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("clinic-platform/calendar")

// Direction moves the reference date relative to the current view.
type Direction string

const (
	DirectionPrev  Direction = "prev"
	DirectionNext  Direction = "next"
	DirectionToday Direction = "today"
)

// FormMode distinguishes the create and edit forms.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// FormState is the currently open appointment form, if any.
type FormState struct {
	Mode        FormMode                  `json:"mode"`
	PrefillDate string                    `json:"prefill_date,omitempty"`
	PrefillTime string                    `json:"prefill_time,omitempty"`
	Appointment *appointments.Appointment `json:"appointment,omitempty"` // edit target
}

// Config holds controller configuration.
type Config struct {
	Store              Store
	Cache              *cache.AppointmentCache   // optional
	Metrics            *metrics.CalendarMetrics  // optional
	Logger             *logging.Logger
	ClinicianID        string
	StoreTimeout       time.Duration
	WindowStartMinutes int
	InitialView        ViewType
	Now                func() time.Time // test hook
}

// Controller holds the calendar session state: reference date, view
// type, selection, open form and the in-memory appointment and patient
// lists. The lists are the sole client-side source of truth between
// store calls and are only ever mutated after a successful store
// acknowledgment.
type Controller struct {
	store       Store
	cache       *cache.AppointmentCache
	metrics     *metrics.CalendarMetrics
	logger      *logging.Logger
	clinicianID string
	timeout     time.Duration
	windowStart int
	now         func() time.Time

	mu          sync.Mutex
	refDate     time.Time
	view        ViewType
	appts       []appointments.Appointment
	patientList []patients.Patient
	selectedID  string
	form        *FormState
	inflight    map[string]struct{}
}

// NewController creates a calendar controller.
func NewController(cfg Config) *Controller {
	if cfg.Store == nil {
		panic("calendar: store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	windowStart := cfg.WindowStartMinutes
	if windowStart <= 0 {
		windowStart = DefaultWindowStartMinutes
	}
	view := cfg.InitialView
	if !view.Valid() {
		view = ViewWeek
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		store:       cfg.Store,
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
		logger:      logger.Component("calendar"),
		clinicianID: cfg.ClinicianID,
		timeout:     timeout,
		windowStart: windowStart,
		now:         now,
		view:        view,
		inflight:    make(map[string]struct{}),
	}
	c.refDate = dateOnly(now())
	return c
}

// Load fetches the patient and appointment lists from the store,
// consulting the cache for appointments first. On store failure the
// previously loaded lists are left unchanged.
func (c *Controller) Load(ctx context.Context) error {
	appts, ok := c.cache.Get(ctx, c.clinicianID)
	if !ok {
		err := c.callStore(ctx, "list_appointments", func(ctx context.Context) error {
			var err error
			appts, err = c.store.ListAppointments(ctx)
			return err
		})
		if err != nil {
			return err
		}
		if err := c.cache.Set(ctx, c.clinicianID, appts); err != nil {
			c.logger.Warn("failed to cache appointments", "error", err)
		}
	}

	var pts []patients.Patient
	if err := c.callStore(ctx, "list_patients", func(ctx context.Context) error {
		var err error
		pts, err = c.store.ListPatients(ctx)
		return err
	}); err != nil {
		return err
	}

	c.mu.Lock()
	c.appts = appts
	c.patientList = pts
	c.mu.Unlock()
	return nil
}

// Navigate advances or retreats the reference date by one month, week or
// day depending on the current view, or resets it to today. It returns
// the new reference date.
func (c *Controller) Navigate(dir Direction) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := 1
	switch dir {
	case DirectionToday:
		c.refDate = dateOnly(c.now())
		return c.refDate.Format(DateLayout), nil
	case DirectionPrev:
		step = -1
	case DirectionNext:
	default:
		return "", fmt.Errorf("calendar: unknown direction %q", dir)
	}

	switch c.view {
	case ViewMonth:
		c.refDate = c.refDate.AddDate(0, step, 0)
	case ViewWeek:
		c.refDate = c.refDate.AddDate(0, 0, 7*step)
	default:
		c.refDate = c.refDate.AddDate(0, 0, step)
	}
	return c.refDate.Format(DateLayout), nil
}

// SetView switches the calendar view type.
func (c *Controller) SetView(v ViewType) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownView, v)
	}
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	return nil
}

// View returns the current view type.
func (c *Controller) View() ViewType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetReferenceDate moves the calendar to a specific date.
func (c *Controller) SetReferenceDate(date string) error {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return appointments.ErrInvalidInterval
	}
	c.mu.Lock()
	c.refDate = t
	c.mu.Unlock()
	return nil
}

// ReferenceDate returns the current reference date.
func (c *Controller) ReferenceDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refDate.Format(DateLayout)
}

// OpenCreate opens the booking form, optionally prefilled from a
// calendar click. Defaults are today and 09:00.
func (c *Controller) OpenCreate(prefillDate, prefillTime string) {
	if prefillDate == "" {
		prefillDate = dateOnly(c.now()).Format(DateLayout)
	}
	if prefillTime == "" {
		prefillTime = "09:00"
	}
	c.mu.Lock()
	c.form = &FormState{Mode: FormCreate, PrefillDate: prefillDate, PrefillTime: prefillTime}
	c.selectedID = ""
	c.mu.Unlock()
}

// OpenEdit opens the edit form for an existing appointment.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return appointments.ErrAppointmentNotFound
	}
	target := c.appts[idx]
	c.form = &FormState{Mode: FormEdit, Appointment: &target}
	c.selectedID = ""
	return nil
}

// CloseForm dismisses the open form, if any.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	c.form = nil
	c.mu.Unlock()
}

// Form returns a copy of the open form state, or nil.
func (c *Controller) Form() *FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return nil
	}
	cp := *c.form
	return &cp
}

// Select marks an appointment as the current details-view target.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		return appointments.ErrAppointmentNotFound
	}
	c.selectedID = id
	return nil
}

// Selected returns a copy of the selected appointment, or nil.
func (c *Controller) Selected() *appointments.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(c.selectedID)
	if idx < 0 {
		return nil
	}
	cp := c.appts[idx]
	return &cp
}

// ClearSelection drops the details-view selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selectedID = ""
	c.mu.Unlock()
}

// Appointments returns a copy of the in-memory appointment list.
func (c *Controller) Appointments() []appointments.Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]appointments.Appointment, len(c.appts))
	copy(out, c.appts)
	return out
}

// Patients returns a copy of the in-memory patient list.
func (c *Controller) Patients() []patients.Patient {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]patients.Patient, len(c.patientList))
	copy(out, c.patientList)
	return out
}

// CreatePatient delegates to the store and prepends the created record
// to the in-memory list on success.
func (c *Controller) CreatePatient(ctx context.Context, req *patients.CreateRequest) (*patients.Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *patients.Patient
	err := c.callStore(ctx, "create_patient", func(ctx context.Context) error {
		var err error
		created, err = c.store.CreatePatient(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.patientList = append([]patients.Patient{*created}, c.patientList...)
	c.mu.Unlock()

	c.logger.Info("patient created", "id", created.ID, "record_number", created.MedicalRecordNumber)
	return created, nil
}

// SubmitCreate books a new appointment. The in-memory list is only
// extended after the store acknowledges; on failure it is left unchanged
// and a recoverable error is returned.
func (c *Controller) SubmitCreate(ctx context.Context, req *appointments.CreateRequest) (*appointments.Appointment, error) {
	if req.ClinicianID == "" {
		req.ClinicianID = c.clinicianID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkOverlap(req.ClinicianID, req.Date, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "calendar.SubmitCreate")
	defer span.End()

	var created *appointments.Appointment
	err := c.callStore(ctx, "create_appointment", func(ctx context.Context) error {
		var err error
		created, err = c.store.CreateAppointment(ctx, req)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("appointment.id", created.ID))

	c.mu.Lock()
	c.appts = append(c.appts, *created)
	sortByDateStart(c.appts)
	c.form = nil
	c.mu.Unlock()
	c.invalidate(ctx)

	c.logger.Info("appointment created", "id", created.ID, "date", created.Date, "start", created.StartTime)
	return created, nil
}

// SubmitEdit updates an existing appointment and replaces the matching
// in-memory record on success.
func (c *Controller) SubmitEdit(ctx context.Context, req *appointments.UpdateRequest) (*appointments.Appointment, error) {
	if req.ClinicianID == "" {
		req.ClinicianID = c.clinicianID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.checkOverlap(req.ClinicianID, req.Date, req.StartTime, req.EndTime, req.ID); err != nil {
		return nil, err
	}
	if err := c.beginMutation(req.ID); err != nil {
		return nil, err
	}
	defer c.endMutation(req.ID)

	ctx, span := tracer.Start(ctx, "calendar.SubmitEdit")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", req.ID))

	var updated *appointments.Appointment
	err := c.callStore(ctx, "update_appointment", func(ctx context.Context) error {
		var err error
		updated, err = c.store.UpdateAppointment(ctx, req)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.mu.Lock()
	if idx := c.indexOf(updated.ID); idx >= 0 {
		c.appts[idx] = *updated
	}
	sortByDateStart(c.appts)
	c.form = nil
	c.mu.Unlock()
	c.invalidate(ctx)

	c.logger.Info("appointment updated", "id", updated.ID)
	return updated, nil
}

// Delete removes an appointment. The in-memory record is dropped only
// after the store confirms; the deletion is irrecoverable.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.beginMutation(id); err != nil {
		return err
	}
	defer c.endMutation(id)

	ctx, span := tracer.Start(ctx, "calendar.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	err := c.callStore(ctx, "delete_appointment", func(ctx context.Context) error {
		return c.store.DeleteAppointment(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.appts = append(c.appts[:idx], c.appts[idx+1:]...)
	}
	if c.selectedID == id {
		c.selectedID = ""
	}
	c.mu.Unlock()
	c.invalidate(ctx)

	c.logger.Info("appointment deleted", "id", id)
	return nil
}

// ChangeStatus applies a lifecycle transition. Transitions outside the
// table are rejected before any store call.
func (c *Controller) ChangeStatus(ctx context.Context, id string, to appointments.Status) error {
	return c.setStatus(ctx, id, to, false)
}

// ForceStatus sets a status without consulting the transition table.
// This is the manual correction path (e.g. marking a no-show).
func (c *Controller) ForceStatus(ctx context.Context, id string, to appointments.Status) error {
	return c.setStatus(ctx, id, to, true)
}

func (c *Controller) setStatus(ctx context.Context, id string, to appointments.Status, force bool) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return appointments.ErrAppointmentNotFound
	}
	from := c.appts[idx].Status
	c.mu.Unlock()

	if force {
		if !to.Valid() {
			return appointments.ErrInvalidStatus
		}
	} else if err := appointments.CheckTransition(from, to); err != nil {
		c.metrics.ObserveTransition(string(from), string(to), "rejected")
		return err
	}

	if err := c.beginMutation(id); err != nil {
		return err
	}
	defer c.endMutation(id)

	ctx, span := tracer.Start(ctx, "calendar.ChangeStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.id", id),
		attribute.String("status.from", string(from)),
		attribute.String("status.to", string(to)),
	)

	err := c.callStore(ctx, "update_status", func(ctx context.Context) error {
		return c.store.UpdateAppointmentStatus(ctx, id, to)
	})
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveTransition(string(from), string(to), "store_error")
		return err
	}

	c.mu.Lock()
	if idx := c.indexOf(id); idx >= 0 {
		c.appts[idx].Status = to
	}
	c.mu.Unlock()
	c.invalidate(ctx)

	c.metrics.ObserveTransition(string(from), string(to), "applied")
	c.logger.Info("appointment status changed", "id", id, "from", from, "to", to)
	return nil
}

// Project runs the projection for the current view over the in-memory
// list.
func (c *Controller) Project() Projection {
	c.mu.Lock()
	appts := make([]appointments.Appointment, len(c.appts))
	copy(appts, c.appts)
	ref := c.refDate
	view := c.view
	c.mu.Unlock()

	start := time.Now()
	p := Projection{View: view, ReferenceDate: ref.Format(DateLayout)}
	switch view {
	case ViewMonth:
		m := ProjectMonth(ref, appts)
		p.Month = &m
	case ViewWeek:
		w := ProjectWeek(ref, appts, c.windowStart)
		p.Week = &w
	default:
		a := ProjectAgenda(appts)
		p.Agenda = &a
	}
	c.metrics.ObserveProjection(string(view), time.Since(start).Seconds())
	return p
}

// callStore runs a store operation under the configured timeout and
// maps failures onto the controller's error taxonomy.
func (c *Controller) callStore(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveStoreCall(op, outcome, time.Since(start).Seconds())

	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrStoreTimeout, op)
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func (c *Controller) beginMutation(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return fmt.Errorf("%w: %s", ErrMutationInFlight, id)
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Controller) endMutation(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

// checkOverlap rejects an interval that would double-book the clinician.
// excludeID skips the appointment being edited.
func (c *Controller) checkOverlap(clinicianID, date, start, end, excludeID string) error {
	candidate := appointments.Appointment{
		ClinicianID: clinicianID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.appts {
		if c.appts[i].ID == excludeID {
			continue
		}
		if c.appts[i].Status == appointments.StatusCancelled {
			continue
		}
		if appointments.Overlaps(&candidate, &c.appts[i]) {
			return fmt.Errorf("%w: conflicts with %s", ErrOverlappingInterval, c.appts[i].ID)
		}
	}
	return nil
}

func (c *Controller) invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx, c.clinicianID); err != nil {
		c.logger.Warn("failed to invalidate appointment cache", "error", err)
	}
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.appts {
		if c.appts[i].ID == id {
			return i
		}
	}
	return -1
}

func sortByDateStart(appts []appointments.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].StartTime < appts[j].StartTime
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		appointments.ErrAppointmentNotFound,
		appointments.ErrInvalidInterval,
		appointments.ErrInvalidType,
		appointments.ErrInvalidStatus,
		appointments.ErrInvalidTransition,
		appointments.ErrMissingPatient,
		patients.ErrPatientNotFound,
		patients.ErrInvalidName,
		patients.ErrInvalidDateOfBirth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
