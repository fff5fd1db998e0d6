package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// TurnRunner drives one conversational turn and returns the assistant reply.
type TurnRunner interface {
	Turn(ctx context.Context, sessionID uuid.UUID, userText, sender string) (string, error)
}

// Handler exposes the chat API.
type Handler struct {
	store        *Store
	turns        TurnRunner
	businessName string
	logger       *logging.Logger
}

// NewHandler creates the chat handler.
func NewHandler(store *Store, turns TurnRunner, businessName string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:        store,
		turns:        turns,
		businessName: businessName,
		logger:       logger,
	}
}

type startSessionRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
}

// Start handles POST /api/chat/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, customer, err := h.store.StartSession(r.Context(), req.CustomerName, req.CustomerPhone, req.CustomerEmail)
	if err != nil {
		h.logger.Error("chat start failed", "error", err)
		if errors.Is(err, customers.ErrMissingPhone) {
			respondError(w, http.StatusBadRequest, "customerPhone is required")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	first, _ := customers.SplitName(req.CustomerName)
	if first == "" {
		first = customer.FirstName
	}
	greeting := fmt.Sprintf("Hi %s! I'm the AI assistant for %s. How can I help you today?", first, h.businessName)

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"sessionId":  session.ID,
		"customerId": customer.ID,
		"message":    greeting,
	})
}

type sendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
}

// Message handles POST /api/chat/message: one full conversational turn.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "sessionId must be a valid id")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.turns.Turn(r.Context(), sessionID, req.Message, req.Sender)
	if err != nil {
		h.logger.Error("chat turn failed", "error", err, "session_id", sessionID)
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrEmptyMessage):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": reply,
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
