package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	LogLevel    string

	// Gateway (Supabase-compatible backend)
	GatewayURL     string
	GatewayAnonKey string
	GatewayTimeout time.Duration

	// Persisted session storage: memory, postgres or redis
	SessionStorage       string
	SessionStorageKey    string
	SessionEncryptionKey string

	// Local database (session storage + client log sink)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Local API tokens handed to the presentation layer
	LocalAPISecret   string
	LocalTokenExpiry time.Duration

	// Demo mode
	DemoLatency time.Duration

	// Device
	Platform string

	SentryDSN string
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8787"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		GatewayURL:     getEnv("SUPABASE_URL", ""),
		GatewayAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		GatewayTimeout: parseDuration(getEnv("GATEWAY_TIMEOUT", "0s"), 0),

		SessionStorage:       getEnv("SESSION_STORAGE", "memory"),
		SessionStorageKey:    getEnv("SESSION_STORAGE_KEY", "medbook.auth.session"),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "medbook_client"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		LocalAPISecret:   getEnv("LOCAL_API_SECRET", ""),
		LocalTokenExpiry: parseDuration(getEnv("LOCAL_TOKEN_EXPIRY", "12h"), 12*time.Hour),

		DemoLatency: parseDuration(getEnv("DEMO_LATENCY", "300ms"), 300*time.Millisecond),

		Platform: getEnv("PLATFORM", "ios"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// DSN builds the postgres connection string for the local database.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// UsesDatabase reports whether the local postgres database is needed.
func (c *Config) UsesDatabase() bool {
	return c.SessionStorage == "postgres"
}

// GatewayConfigured reports whether a live backend is available. Without one
// only demo login works.
func (c *Config) GatewayConfigured() bool {
	return c.GatewayURL != "" && c.GatewayAnonKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
