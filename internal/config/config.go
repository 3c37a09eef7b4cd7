package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StorageBackends lists the accepted STORAGE_BACKEND values.
var StorageBackends = []string{"csv", "sqlite", "memory"}

type Config struct {
	// HTTP Server
	Host            string
	Port            string
	ShutdownTimeout time.Duration

	// Storage
	StorageBackend string
	ExpensesFile   string
	SQLiteDBPath   string

	// Presentation
	BackgroundImage string

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Host:            getEnv("HOST", "127.0.0.1"),
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", "csv"),
		ExpensesFile:   getEnv("EXPENSES_FILE", "expenses.csv"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/expenses.db"),

		BackgroundImage: getEnv("BACKGROUND_IMAGE", "background.jpg"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Addr returns the listen address for the UI server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// The UI is single-user and unauthenticated.
	if ip := net.ParseIP(c.Host); c.Host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		errors = append(errors, fmt.Sprintf("invalid host '%s': must be a loopback address", c.Host))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Validate storage backend
	isValidBackend := false
	for _, backend := range StorageBackends {
		if c.StorageBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, StorageBackends))
	}

	switch c.StorageBackend {
	case "csv":
		if strings.TrimSpace(c.ExpensesFile) == "" {
			errors = append(errors, "expenses file path cannot be empty when using csv backend")
		} else if info, err := os.Stat(c.ExpensesFile); err == nil && info.IsDir() {
			errors = append(errors, fmt.Sprintf("expenses file '%s' is a directory", c.ExpensesFile))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLogLevel maps debug, info, warn and error (any case) to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
