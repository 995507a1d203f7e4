package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"siuang/internal/core"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultSQLiteDSN names a shared in-memory database; the ledger lives as
// long as the process holds a connection to it.
const DefaultSQLiteDSN = "file:siuang?mode=memory&cache=shared"

type Config struct {
	// HTTP Server
	Port string

	// Ledger
	LedgerBackend string
	SQLiteDSN     string
	SeedFile      string

	// AMQP
	AMQPURL         string
	AMQPExchange    string
	AMQPEventsQueue string
	AMQPExportQueue string

	// Summary cache
	SummaryCacheSize     int
	SummaryCacheTTL      time.Duration
	CacheCleanupInterval time.Duration

	// Display and logging
	Currency string
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		LedgerBackend: getEnv("LEDGER_BACKEND", BackendMemory),
		SQLiteDSN:     getEnv("SQLITE_DSN", DefaultSQLiteDSN),
		SeedFile:      getEnv("SEED_FILE", ""),

		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "siuang"),
		AMQPEventsQueue: getEnv("AMQP_EVENTS_QUEUE", "ledger_events"),
		AMQPExportQueue: getEnv("AMQP_EXPORT_QUEUE", "export_requests"),

		SummaryCacheSize:     getEnvInt("SUMMARY_CACHE_SIZE", 128),
		SummaryCacheTTL:      getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
		CacheCleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute),

		Currency: strings.ToUpper(getEnv("CURRENCY", core.DefaultCurrency)),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	if !slices.Contains(validBackends, c.LedgerBackend) {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	// Ledger data is session-only: the sqlite backend must stay in memory.
	if c.LedgerBackend == BackendSQLite {
		if c.SQLiteDSN == "" {
			errors = append(errors, "SQLite DSN cannot be empty when using sqlite backend")
		} else if !strings.Contains(c.SQLiteDSN, "mode=memory") && !strings.Contains(c.SQLiteDSN, ":memory:") {
			errors = append(errors, fmt.Sprintf("SQLite DSN '%s' must point to an in-memory database", c.SQLiteDSN))
		}
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file '%s' is not readable: %v", c.SeedFile, err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPEventsQueue == "" || c.AMQPExportQueue == "" {
			errors = append(errors, "AMQP queue names cannot be empty when AMQP URL is provided")
		}
	}

	if c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be positive", c.SummaryCacheTTL))
	}
	if c.CacheCleanupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache cleanup interval %v: must be at least 1 second", c.CacheCleanupInterval))
	}

	if !core.IsKnownCurrency(c.Currency) {
		errors = append(errors, fmt.Sprintf("unknown currency code '%s'", c.Currency))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// AMQPEnabled reports whether event publishing is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
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
