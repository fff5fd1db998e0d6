package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Business identity used in prompts, greetings and confirmations.
	BusinessName  string
	BusinessOwner string
	BusinessPhone string
	ServiceArea   string

	// Daily slot catalog, comma-separated "HH:00" values. Empty means default.
	SlotCatalog []string

	// LLM backend selection: "gemini", "bedrock" or "" (chat degrades).
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	RedisAddr     string
	RedisPassword string
	HistoryTTL    time.Duration

	CORSAllowedOrigins []string

	// ChatRateLimit caps chat turns per second per client IP; zero disables.
	ChatRateLimit float64
	ChatRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		BusinessName:  getEnv("BUSINESS_NAME", "M. Jacob Company"),
		BusinessOwner: getEnv("BUSINESS_OWNER", "Mark Jacob"),
		BusinessPhone: getEnv("BUSINESS_PHONE", "412-512-0425"),
		ServiceArea:   getEnv("SERVICE_AREA", "Pittsburgh and surrounding areas"),

		SlotCatalog: getEnvAsList("SLOT_CATALOG"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ""))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 500),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "M. Jacob Company"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		HistoryTTL:    getEnvAsDuration("HISTORY_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		ChatRateLimit: getEnvAsFloat("CHAT_RATE_LIMIT", 0),
		ChatRateBurst: getEnvAsInt("CHAT_RATE_BURST", 5),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
