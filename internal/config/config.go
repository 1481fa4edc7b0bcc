package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Backend selection: supabase, sqlite or memory
	DataBackend string

	// Supabase
	SupabaseURL     string
	SupabaseAnonKey string

	// SQLite (offline backend)
	SQLiteDBPath string

	// AMQP change events (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheets mirror (worker)
	MirrorSpreadsheetID string
	MirrorSheetName     string

	// Notifications
	NotifyDuration time.Duration
}

func Load() *Config {
	return &Config{
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/caixamei.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "caixamei"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		MirrorSpreadsheetID: getEnv("MIRROR_SPREADSHEET_ID", ""),
		MirrorSheetName:     getEnv("MIRROR_SHEET_NAME", "Transactions"),

		NotifyDuration: getEnvDuration("NOTIFY_DURATION", 5*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	validBackends := []string{"memory", "sqlite", "supabase"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "supabase" {
		if c.SupabaseURL == "" {
			errs = append(errs, "SUPABASE_URL is required when using supabase backend")
		} else if parsed, err := url.Parse(c.SupabaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid SUPABASE_URL '%s': must be an http(s) URL", c.SupabaseURL))
		}
		if c.SupabaseAnonKey == "" {
			errs = append(errs, "SUPABASE_ANON_KEY is required when using supabase backend")
		}
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.NotifyDuration < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("invalid notify duration %v: must be at least 100ms", c.NotifyDuration))
	} else if c.NotifyDuration > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid notify duration %v: must be at most 1 minute", c.NotifyDuration))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
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
