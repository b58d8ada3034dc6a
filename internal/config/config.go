// Package config loads runtime settings from the environment and
// validates them in one pass, collecting every problem instead of
// stopping at the first.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// HTTP server
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Backend selection
	Backend string

	// SQLite
	SQLitePath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend seed files
	DataDir string

	// AMQP; empty URL disables change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret  string
	BcryptCost int

	// Logging
	LogLevel  string
	LogFormat string

	// Request shaping
	RateLimitPerMinute int
	CacheTTL           time.Duration

	// Mirror worker
	ReconcileInterval time.Duration
}

func Load() *Config {
	return &Config{
		Addr:         getEnv("ADDR", ":8080"),
		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 120*time.Second),

		Backend: getEnv("BACKEND", "sqlite"),

		SQLitePath: getEnv("SQLITE_PATH", "data/finanze.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		DataDir: getEnv("DATA_DIR", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finanze.events"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "finanze.mirror"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CacheTTL:           getEnvDuration("CACHE_TTL", 2*time.Minute),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 1*time.Hour),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if _, _, err := splitAddr(c.Addr); err != nil {
		errs = append(errs, fmt.Sprintf("invalid listen address %q: %v", c.Addr, err))
	}

	switch c.Backend {
	case "sqlite", "sheets", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid backend %q: must be one of [sqlite sheets memory]", c.Backend))
	}

	if c.Backend == "sqlite" {
		if c.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLitePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory %q: %v", dir, err))
				}
			}
		}
	}

	if c.Backend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID is required when using the sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, "set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS for the sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("invalid BCRYPT_COST %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL %q: must be one of [debug info warn error]", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT %q: must be json or text", c.LogFormat))
	}

	if c.ReadTimeout < time.Second || c.WriteTimeout < time.Second || c.IdleTimeout < time.Second {
		errs = append(errs, "HTTP timeouts must be at least 1 second")
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid RATE_LIMIT_PER_MINUTE %d: must be at least 1", c.RateLimitPerMinute))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid CACHE_TTL %v: must not be negative", c.CacheTTL))
	}

	if c.ReconcileInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid RECONCILE_INTERVAL %v: must be at least 1 minute", c.ReconcileInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// splitAddr accepts ":8080" and "host:8080" forms.
func splitAddr(addr string) (host, port string, err error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return "", "", fmt.Errorf("missing port")
	}
	host, port = addr[:i], addr[i+1:]
	n, err := strconv.Atoi(port)
	if err != nil {
		return "", "", fmt.Errorf("port %q is not a number", port)
	}
	if n < 1 || n > 65535 {
		return "", "", fmt.Errorf("port %d out of range", n)
	}
	return host, port, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
