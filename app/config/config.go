package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment driven settings for the blog.
type Config struct {
	Port            string
	BaseURL         string
	ShutdownTimeout time.Duration

	// Storage
	StoreDriver string
	BadgerPath  string
	DatabaseURL string

	// Sessions
	JWTSecret     string
	SessionTTL    time.Duration
	CookieSecure  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CommentRatePerMinute int

	// SMTP for moderation notices
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// ErrMissingSecret is returned by Validate when no JWT secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads a .env file when present and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "badger")),
		BadgerPath:  getEnv("BADGER_PATH", "data/badger"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getBool("COOKIE_SECURE", false),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		CommentRatePerMinute: getInt("COMMENT_RATE_PER_MINUTE", 10),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),

		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getBool("LOG_COMPRESS", false),
	}
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.StoreDriver {
	case "badger":
	case "postgres", "mysql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for " + c.StoreDriver)
		}
	default:
		return errors.New("unknown STORE_DRIVER " + c.StoreDriver)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// MailEnabled reports whether moderation notices can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
