package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DatabaseURL string

	// BaseURL is the client origin used in email links and CORS.
	BaseURL    string
	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	MailDriver   string // smtp, resend or log
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPTimeout  time.Duration
	MailFrom     string
	ResendAPIKey string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	RateLimitWindow time.Duration
	RateLimitMax    int
	UploadMaxBytes  int64
}

// Load reads the configuration from environment variables.
// godotenv should already have populated them from .env when present.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable"),

		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: getEnvAsDuration("SESSION_TTL", 72*time.Hour),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 12),

		MailDriver:   getEnv("MAIL_DRIVER", "smtp"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPTimeout:  getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
		MailFrom:     getEnv("MAIL_FROM", os.Getenv("SMTP_FROM")),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "blog-images"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),

		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		UploadMaxBytes:  int64(getEnvAsInt("UPLOAD_MAX_BYTES", 1024*1024)),
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("BCRYPT_COST must be between 4 and 31")
	}
	switch c.MailDriver {
	case "smtp", "resend", "log":
	default:
		return errors.New("MAIL_DRIVER must be one of smtp, resend, log")
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
