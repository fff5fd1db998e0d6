package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mjacobco/hvac-assistant/internal/availability"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Handler exposes the booking API.
type Handler struct {
	service *Service
	engine  *availability.Engine
	logger  *logging.Logger
}

// NewHandler creates the appointments handler.
func NewHandler(service *Service, engine *availability.Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, engine: engine, logger: logger}
}

type createAppointmentRequest struct {
	CustomerID    string `json:"customerId"`
	ServiceType   string `json:"serviceType"`
	ScheduledDate string `json:"scheduledDate"`
	Notes         string `json:"notes"`
	Urgency       string `json:"urgency"`
}

// Create handles POST /api/appointments/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "customerId must be a valid id")
		return
	}

	scheduled, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "scheduledDate must be an ISO timestamp")
		return
	}

	appt, err := h.service.Create(r.Context(), CreateRequest{
		CustomerID:    customerID,
		ServiceType:   req.ServiceType,
		ScheduledDate: scheduled,
		Notes:         req.Notes,
		Urgency:       req.Urgency,
	})
	if err != nil {
		h.logger.Error("create appointment failed", "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"appointment": appt,
	})
}

// Availability handles GET /api/appointments/availability.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	slots, err := h.engine.AvailableSlots(r.Context(), date)
	if err != nil {
		h.logger.Error("availability check failed", "error", err, "date", date)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"date":           date,
		"availableSlots": slots,
	})
}

// List handles GET /api/appointments/list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter

	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "customerId must be a valid id")
			return
		}
		filter.CustomerID = id
	}
	filter.Status = r.URL.Query().Get("status")
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := availability.ParseDate(date); err != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		filter.Date = date
	}

	appts, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list appointments failed", "error", err)
		respondServiceError(w, err)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"appointments": appts,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/appointments/{id}/status. The transition is
// unconditional; any status string is accepted.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "appointment id must be a valid id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("update status failed", "error", err, "id", id)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"appointment": appt,
	})
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, ErrMissingServiceType),
		errors.Is(err, ErrMissingSchedule):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAppointmentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
