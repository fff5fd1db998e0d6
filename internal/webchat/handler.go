package webchat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/mjacobco/hvac-assistant/internal/chat"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// SessionStore opens sessions and replays transcripts.
type SessionStore interface {
	StartSession(ctx context.Context, customerName, customerPhone, customerEmail string) (*chat.Session, *customers.Customer, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]chat.Message, error)
}

// Handler manages web chat connections. Turns run synchronously: the reply is
// pushed down the same connection that carried the user message.
type Handler struct {
	store        SessionStore
	turns        chat.TurnRunner
	businessName string
	logger       *logging.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*wsConn
}

type wsConn struct {
	conn *websocket.Conn
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "pong", "history", "session", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history replay.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(store SessionStore, turns chat.TurnRunner, businessName string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:        store,
		turns:        turns,
		businessName: businessName,
		logger:       logger,
		sessions:     make(map[uuid.UUID]*wsConn),
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID, ok := h.bootstrapSession(r.Context(), conn, r)
	if !ok {
		return
	}

	wsc := &wsConn{conn: conn}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.runTurn(r.Context(), sessionID, msg.Text)
	}
}

// bootstrapSession resumes the session named in the query string or opens a
// new one from the customer parameters.
func (h *Handler) bootstrapSession(ctx context.Context, conn *websocket.Conn, r *http.Request) (uuid.UUID, bool) {
	if raw := r.URL.Query().Get("session"); raw != "" {
		sessionID, err := uuid.Parse(raw)
		if err != nil {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "invalid session parameter"})
			return uuid.Nil, false
		}
		h.replayHistory(ctx, conn, sessionID)
		return sessionID, true
	}

	name := r.URL.Query().Get("name")
	phone := r.URL.Query().Get("phone")
	email := r.URL.Query().Get("email")
	session, customer, err := h.store.StartSession(ctx, name, phone, email)
	if err != nil {
		h.logger.Error("webchat: session start failed", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "could not start a chat session"})
		return uuid.Nil, false
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: session.ID.String(),
		Text:      "Hi " + customer.FirstName + "! I'm the AI assistant for " + h.businessName + ". How can I help you today?",
	})
	return session.ID, true
}

func (h *Handler) replayHistory(ctx context.Context, conn *websocket.Conn, sessionID uuid.UUID) {
	msgs, err := h.store.History(ctx, sessionID)
	if err != nil || len(msgs) == 0 {
		return
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
}

func (h *Handler) runTurn(ctx context.Context, sessionID uuid.UUID, text string) {
	h.sendToSession(sessionID, OutboundMessage{Type: "typing"})

	reply, err := h.turns.Turn(ctx, sessionID, text, chat.SenderUser)
	if err != nil {
		h.logger.Error("webchat: turn failed", "error", err, "session_id", sessionID)
		h.sendToSession(sessionID, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
		return
	}

	h.sendToSession(sessionID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) sendToSession(sessionID uuid.UUID, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleHistory returns the transcript for a session over plain HTTP.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("session")
	if raw == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "session must be a valid id", http.StatusBadRequest)
		return
	}

	msgs, err := h.store.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err, "session_id", sessionID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(msgs)})
}

func toHistory(msgs []chat.Message) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Sender == chat.SenderAssistant {
			role = "assistant"
		}
		history = append(history, HistoryMessage{
			Role:      role,
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}
