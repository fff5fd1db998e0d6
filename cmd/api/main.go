package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mjacobco/hvac-assistant/cmd/mainconfig"
	"github.com/mjacobco/hvac-assistant/internal/api/router"
	"github.com/mjacobco/hvac-assistant/internal/appointments"
	"github.com/mjacobco/hvac-assistant/internal/assistant"
	"github.com/mjacobco/hvac-assistant/internal/availability"
	"github.com/mjacobco/hvac-assistant/internal/chat"
	appconfig "github.com/mjacobco/hvac-assistant/internal/config"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/internal/notifications"
	"github.com/mjacobco/hvac-assistant/internal/observability/metrics"
	"github.com/mjacobco/hvac-assistant/internal/webchat"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hvac-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Initialize repositories and services
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("postgres connection required")
		os.Exit(1)
	}
	defer pool.Close()

	customerRepo := customers.NewRepository(pool)
	apptRepo := appointments.NewRepository(pool)

	metricsHandler, convMetrics, notifMetrics := setupMetrics()

	smsSender := setupSMS(cfg, logger)
	emailSender := setupEmail(cfg, logger)
	notifier := notifications.NewService(smsSender, emailSender, notifications.Config{
		BusinessName:  cfg.BusinessName,
		BusinessPhone: cfg.BusinessPhone,
	}, notifMetrics, logger)

	apptService := appointments.NewService(apptRepo, customerRepo, notifier, logger)
	engine := availability.NewEngine(cfg.SlotCatalog, apptRepo)

	historyCache := setupHistoryCache(cfg, logger)
	chatStore := chat.NewStore(chat.NewRepository(pool), historyCache, customerRepo, logger)

	llmClient, modelID := setupLLM(ctx, cfg, logger)
	slotsFetcher := availability.NewClient(cfg.PublicBaseURL, logger)
	orchestrator := assistant.NewOrchestrator(llmClient, chatStore, slotsFetcher, assistant.OrchestratorConfig{
		Model:       modelID,
		MaxTokens:   int32(cfg.LLMMaxTokens),
		Temperature: float32(cfg.LLMTemperature),
		Timeout:     cfg.LLMTimeout,
		Business: assistant.BusinessProfile{
			Name:        cfg.BusinessName,
			Owner:       cfg.BusinessOwner,
			Phone:       cfg.BusinessPhone,
			ServiceArea: cfg.ServiceArea,
		},
	}, convMetrics, logger)

	// Initialize handlers
	apptHandler := appointments.NewHandler(apptService, engine, logger)
	chatHandler := chat.NewHandler(chatStore, orchestrator, cfg.BusinessName, logger)
	smsHandler := notifications.NewHandler(notifier, logger)
	webchatHandler := webchat.NewHandler(chatStore, orchestrator, cfg.BusinessName, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		AppointmentsHandler: apptHandler,
		ChatHandler:         chatHandler,
		SMSHandler:          smsHandler,
		WebchatHandler:      webchatHandler,
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatRateLimit:       cfg.ChatRateLimit,
		ChatRateBurst:       cfg.ChatRateBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// connectPostgresPool opens a pgx pool and verifies connectivity. Returns nil
// when no URL is configured or the database is unreachable.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		logger.Warn("DATABASE_URL not set")
		return nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		pool.Close()
		return nil
	}

	logger.Info("postgres pool connected")
	return pool
}

// setupMetrics builds the Prometheus registry and the domain metric bundles.
func setupMetrics() (http.Handler, *metrics.ConversationMetrics, *metrics.NotificationMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	convMetrics := metrics.NewConversationMetrics(reg)
	notifMetrics := metrics.NewNotificationMetrics(reg)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return handler, convMetrics, notifMetrics
}

// setupSMS picks the Twilio sender when credentials are present, otherwise a
// logging stub so confirmations still show up in development.
func setupSMS(cfg *appconfig.Config, logger *logging.Logger) notifications.SMSSender {
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		logger.Info("twilio SMS sender configured", "from", cfg.TwilioFromNumber)
		return notifications.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	}
	logger.Warn("twilio credentials not set, using stub SMS sender")
	return notifications.NewStubSMSSender(logger)
}

// setupEmail returns a SendGrid sender or nil when email is not configured.
func setupEmail(cfg *appconfig.Config, logger *logging.Logger) notifications.EmailSender {
	sender := notifications.NewSendGridSender(notifications.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		logger.Info("sendgrid not configured, email confirmations disabled")
		return nil
	}
	return sender
}

// setupHistoryCache wires the Redis transcript cache when REDIS_ADDR is set.
func setupHistoryCache(cfg *appconfig.Config, logger *logging.Logger) *chat.HistoryCache {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		logger.Info("redis not configured, history cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	logger.Info("redis history cache configured", "addr", cfg.RedisAddr, "ttl", cfg.HistoryTTL)
	return chat.NewHistoryCache(client, cfg.HistoryTTL)
}

// setupLLM selects the model backend from LLM_PROVIDER. Returns a nil client
// when no backend is configured; chat then degrades to a static reply.
func setupLLM(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (assistant.LLMClient, string) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("LLM_PROVIDER=gemini but GEMINI_API_KEY not set")
			return nil, ""
		}
		client, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			return nil, ""
		}
		logger.Info("gemini model backend configured", "model", cfg.GeminiModelID)
		return client, cfg.GeminiModelID

	case "bedrock":
		if cfg.BedrockModelID == "" {
			logger.Warn("LLM_PROVIDER=bedrock but BEDROCK_MODEL_ID not set")
			return nil, ""
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			return nil, ""
		}
		var client assistant.LLMClient = assistant.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
		logger.Info("bedrock model backend configured", "model", cfg.BedrockModelID)

		// Gemini as a secondary when both backends have credentials.
		if cfg.GeminiAPIKey != "" {
			if gemini, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID); err == nil {
				client = assistant.NewFallbackClient(client, gemini, logger)
				logger.Info("gemini fallback enabled", "model", cfg.GeminiModelID)
			}
		}
		return client, cfg.BedrockModelID

	case "":
		logger.Warn("LLM_PROVIDER not set, chat will return a static reply")
		return nil, ""

	default:
		logger.Error("unknown LLM_PROVIDER", "provider", cfg.LLMProvider)
		return nil, ""
	}
}
