package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mjacobco/hvac-assistant/internal/appointments"
	"github.com/mjacobco/hvac-assistant/internal/chat"
	httpmiddleware "github.com/mjacobco/hvac-assistant/internal/http/middleware"
	"github.com/mjacobco/hvac-assistant/internal/notifications"
	"github.com/mjacobco/hvac-assistant/internal/webchat"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	ChatHandler         *chat.Handler
	SMSHandler          *notifications.Handler
	WebchatHandler      *webchat.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// ChatRateLimit caps chat turns per second per client IP; zero disables
	// the limiter.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/api/appointments", func(r chi.Router) {
			r.Post("/create", cfg.AppointmentsHandler.Create)
			r.Get("/availability", cfg.AppointmentsHandler.Availability)
			r.Get("/list", cfg.AppointmentsHandler.List)
			r.Put("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
		})
	}

	if cfg.ChatHandler != nil {
		r.Route("/api/chat", func(r chi.Router) {
			if cfg.ChatRateLimit > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
			}
			r.Post("/start", cfg.ChatHandler.Start)
			r.Post("/message", cfg.ChatHandler.Message)
		})
	}

	if cfg.SMSHandler != nil {
		r.Route("/api/sms", func(r chi.Router) {
			r.Post("/send", cfg.SMSHandler.Send)
			r.Post("/batch", cfg.SMSHandler.SendBatch)
			r.Get("/templates", cfg.SMSHandler.Templates)
		})
	}

	if cfg.WebchatHandler != nil {
		r.Route("/webchat", func(r chi.Router) {
			r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
			r.Get("/history", cfg.WebchatHandler.HandleHistory)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"service": "hvac-assistant",
	})
}
