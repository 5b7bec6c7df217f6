package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Inbound auth: static key expected in the x-api-key header.
	APIKey string

	// Evidence collector endpoint. Reports are fire-and-forget POSTs.
	CollectorURL  string
	ReportTimeout time.Duration

	// Groq (tier 1). Keys are comma-separated credential slots rotated
	// round-robin to spread per-key rate limits.
	GroqAPIKeys     []string
	GroqModel       string
	GroqTimeout     time.Duration
	GroqMaxAttempts int

	// Gemini (tier 2)
	GeminiAPIKeys     []string
	GeminiModel       string
	GeminiTimeout     time.Duration
	GeminiMaxAttempts int

	// Bedrock (tier 3, optional)
	BedrockModelID     string
	BedrockTimeout     time.Duration
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Reply generation
	HistoryWindow  int
	MaxReplyTokens int32
	Temperature    float32

	// Report trigger thresholds (see engage.Service)
	LowEngagementThreshold  int
	HighEngagementThreshold int

	// Session storage
	UseRedisSessions bool
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	SessionTTL       time.Duration

	CORSAllowedOrigins []string

	// Per-IP request limiter on the honeypot surface. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIKey: getEnv("API_KEY", ""),

		CollectorURL:  getEnv("COLLECTOR_URL", ""),
		ReportTimeout: getEnvAsDuration("REPORT_TIMEOUT", 5*time.Second),

		GroqAPIKeys:     getEnvAsList("GROQ_API_KEYS"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		GroqTimeout:     getEnvAsDuration("GROQ_TIMEOUT", 3*time.Second),
		GroqMaxAttempts: getEnvAsInt("GROQ_MAX_ATTEMPTS", 3),

		GeminiAPIKeys:     getEnvAsList("GEMINI_API_KEYS"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout:     getEnvAsDuration("GEMINI_TIMEOUT", 6*time.Second),
		GeminiMaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 2),

		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", ""),
		BedrockTimeout:     getEnvAsDuration("BEDROCK_TIMEOUT", 8*time.Second),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		HistoryWindow:  getEnvAsInt("HISTORY_WINDOW", 6),
		MaxReplyTokens: int32(getEnvAsInt("MAX_REPLY_TOKENS", 60)),
		Temperature:    float32(getEnvAsFloat("TEMPERATURE", 0.3)),

		LowEngagementThreshold:  getEnvAsInt("LOW_ENGAGEMENT_THRESHOLD", 3),
		HighEngagementThreshold: getEnvAsInt("HIGH_ENGAGEMENT_THRESHOLD", 8),

		UseRedisSessions: getEnvAsBool("USE_REDIS_SESSIONS", false),
		RedisAddr:        getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
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

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

// getEnvAsList splits a comma-separated environment variable, trimming
// whitespace and surrounding quotes and dropping empty or placeholder entries.
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part == "" || strings.Contains(part, "key_goes_here") {
			continue
		}
		out = append(out, part)
	}
	return out
}
