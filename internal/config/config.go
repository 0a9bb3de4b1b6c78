package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectRetries is how many extra pings NewPostgres tries at startup.
	ConnectRetries int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the optional Redis connection used by the rate limiter.
// An empty Addr selects the in-process counter store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CryptoConfig holds the process-wide document encryption key.
type CryptoConfig struct {
	EncryptionKey string
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTLHrs int
}

// DocumentsConfig holds upload and QR sharing settings.
type DocumentsConfig struct {
	QRDefaultHours int
	QRMaxHours     int
	FrontendURL    string
	MaxUploadBytes int
}

// RateLimitConfig bounds requests per client IP on public and auth routes.
type RateLimitConfig struct {
	Max       int
	WindowSec int
}

// LogConfig selects zap's level and encoder ("json" or "console").
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	Crypto    CryptoConfig
	Auth      AuthConfig
	Documents DocumentsConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectRetries:     getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Crypto: CryptoConfig{
			EncryptionKey: getEnv("DOCUMENT_ENCRYPTION_KEY", ""),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			TokenTTLHrs: getEnvInt("JWT_TTL_HOURS", 24),
		},
		Documents: DocumentsConfig{
			QRDefaultHours: getEnvInt("QR_DEFAULT_HOURS", 24),
			QRMaxHours:     getEnvInt("QR_MAX_HOURS", 720),
			FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
			MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		RateLimit: RateLimitConfig{
			Max:       getEnvInt("RATE_LIMIT_MAX", 30),
			WindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate checks the settings the service cannot start without.
func (c *AppConfig) Validate() error {
	if c.Crypto.EncryptionKey == "" {
		return errors.New("DOCUMENT_ENCRYPTION_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Documents.QRDefaultHours <= 0 || c.Documents.QRMaxHours < c.Documents.QRDefaultHours {
		return fmt.Errorf("invalid QR durations: default %d, max %d", c.Documents.QRDefaultHours, c.Documents.QRMaxHours)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.WindowSec <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
