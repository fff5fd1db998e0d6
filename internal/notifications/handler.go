package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Handler exposes the SMS API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the notifications handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send handles POST /api/sms/send.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "to and message are required")
		return
	}

	if err := h.service.Send(r.Context(), req.To, req.Message); err != nil {
		h.logger.Error("sms send failed", "error", err, "to", req.To)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}

type batchRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// SendBatch handles POST /api/sms/batch.
func (h *Handler) SendBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Recipients) == 0 || req.Message == "" {
		respondError(w, http.StatusBadRequest, "recipients and message are required")
		return
	}

	results, err := h.service.SendBatch(r.Context(), req.Recipients, req.Message)
	if err != nil {
		h.logger.Error("sms batch send failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
	})
}

// Templates handles GET /api/sms/templates.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"templates": TemplateNames(),
	})
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
