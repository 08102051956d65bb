// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	// Auth
	JWTSecret string

	// MongoDB (travel records)
	MongoURI string
	MongoDB  string

	// Postgres (IATA reference data)
	PostgresDSN string
	SeedRefData bool

	// Completion endpoint
	CompletionAPIKey      string
	CompletionBaseURL     string
	CompletionModel       string
	CompletionTimeout     time.Duration
	CompletionMaxTokens   int
	CompletionTemperature float64
	CompletionRPS         float64

	// Redis (optional: parse cache + arming locks)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ParseCacheTTL time.Duration

	// Kafka (optional: lifecycle events)
	KafkaBrokers      []string
	KafkaRecordsTopic string

	// WhatsApp notification service
	WhatsAppEndpoint string
	WhatsAppToken    string

	// Gmail intake mailbox
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailPollInterval time.Duration
	IntakeEnabled     bool
	IntakeUserID      string

	// Reminder scheduler
	RearmScanInterval time.Duration
	RearmHorizon      time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		CORSOrigins:  getEnvAsSlice("CORS_ORIGINS", []string{"*"}),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MongoURI: getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "traveldesk"),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		SeedRefData: getEnvAsBool("SEED_REF_DATA", true),

		CompletionAPIKey:      getEnv("COMPLETION_API_KEY", ""),
		CompletionBaseURL:     getEnv("COMPLETION_BASE_URL", ""),
		CompletionModel:       getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		CompletionTimeout:     time.Duration(getEnvAsInt("COMPLETION_TIMEOUT", 60)) * time.Second,
		CompletionMaxTokens:   getEnvAsInt("COMPLETION_MAX_TOKENS", 2000),
		CompletionTemperature: getEnvAsFloat("COMPLETION_TEMPERATURE", 0.1),
		CompletionRPS:         getEnvAsFloat("COMPLETION_RPS", 2),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		ParseCacheTTL: time.Duration(getEnvAsInt("PARSE_CACHE_TTL", 600)) * time.Second,

		KafkaBrokers:      getEnvAsSlice("KAFKA_BROKERS", nil),
		KafkaRecordsTopic: getEnv("KAFKA_RECORDS_TOPIC", "traveldesk.records"),

		WhatsAppEndpoint: getEnv("WHATSAPP_ENDPOINT", ""),
		WhatsAppToken:    getEnv("WHATSAPP_TOKEN", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailPollInterval: time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,
		IntakeEnabled:     getEnvAsBool("INTAKE_ENABLED", false),
		IntakeUserID:      getEnv("INTAKE_USER_ID", "intake"),

		RearmScanInterval: time.Duration(getEnvAsInt("REARM_SCAN_INTERVAL", 300)) * time.Second,
		RearmHorizon:      time.Duration(getEnvAsInt("REARM_HORIZON_HOURS", 48)) * time.Hour,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
