package calendar

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowdoc/clinic-platform/internal/appointments"
	"github.com/flowdoc/clinic-platform/internal/patients"
	"github.com/flowdoc/clinic-platform/pkg/logging"
)

// Handler exposes the calendar controller over HTTP.
type Handler struct {
	controller *Controller
	logger     *logging.Logger
}

// NewHandler creates a new calendar handler.
func NewHandler(controller *Controller, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		controller: controller,
		logger:     logger,
	}
}

// NavigateRequest moves the calendar relative to the current view.
type NavigateRequest struct {
	Direction Direction `json:"direction"`
}

// NavigateResponse reports the reference date after navigation.
type NavigateResponse struct {
	ReferenceDate string   `json:"reference_date"`
	View          ViewType `json:"view"`
}

// StatusRequest changes an appointment's lifecycle status. Force
// bypasses the transition table for manual corrections.
type StatusRequest struct {
	Status appointments.Status `json:"status"`
	Force  bool                `json:"force,omitempty"`
}

// ListAppointmentsResponse is the response for listing appointments.
type ListAppointmentsResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
	Count        int                        `json:"count"`
}

// GetCalendar handles GET /calendar/{view} requests. An optional
// ?date=YYYY-MM-DD query parameter moves the reference date first.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	view := ViewType(chi.URLParam(r, "view"))
	if err := h.controller.SetView(view); err != nil {
		h.writeError(w, err)
		return
	}
	if date := r.URL.Query().Get("date"); date != "" {
		if err := h.controller.SetReferenceDate(date); err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, h.controller.Project())
}

// Navigate handles POST /calendar/navigate requests.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ref, err := h.controller.Navigate(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, NavigateResponse{ReferenceDate: ref, View: h.controller.View()})
}

// Refresh handles POST /calendar/refresh requests. It reloads both
// lists from the store and returns the re-projected current view.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Load(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.controller.Project())
}

// ListAppointments handles GET /appointments requests.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list := h.controller.Appointments()
	h.writeJSON(w, http.StatusOK, ListAppointmentsResponse{Appointments: list, Count: len(list)})
}

// CreateAppointment handles POST /appointments requests.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointments.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.controller.SubmitCreate(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateAppointment handles PUT /appointments/{id} requests.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointments.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ID = chi.URLParam(r, "id")
	updated, err := h.controller.SubmitEdit(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteAppointment handles DELETE /appointments/{id} requests.
func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PATCH /appointments/{id}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")

	var err error
	if req.Force {
		err = h.controller.ForceStatus(r.Context(), id, req.Status)
	} else {
		err = h.controller.ChangeStatus(r.Context(), id, req.Status)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the controller's error taxonomy onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointments.ErrAppointmentNotFound),
		errors.Is(err, patients.ErrPatientNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, appointments.ErrInvalidInterval),
		errors.Is(err, appointments.ErrInvalidType),
		errors.Is(err, appointments.ErrInvalidStatus),
		errors.Is(err, appointments.ErrMissingPatient),
		errors.Is(err, patients.ErrInvalidName),
		errors.Is(err, patients.ErrInvalidDateOfBirth),
		errors.Is(err, ErrUnknownView):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, appointments.ErrInvalidTransition),
		errors.Is(err, ErrMutationInFlight),
		errors.Is(err, ErrOverlappingInterval):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrStoreTimeout):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, ErrStoreUnavailable):
		h.logger.Error("store unavailable", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.logger.Error("unexpected calendar error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
