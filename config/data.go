package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// getDataDir determines the data directory path from environment or default.
// Priority: VIDFETCH_DATA_DIR environment variable > "./data" default
func getDataDir() string {
	if dir := os.Getenv("VIDFETCH_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// GetDataDir returns the directory where vidfetch keeps its journal
// databases, "./data" by default. The environment is read on every call.
func GetDataDir() string {
	return getDataDir()
}

// GetFailuresDBPath returns the full path to the failures journal.
// Path: {data dir}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// GetSuccessDBPath returns the full path to the success journal.
// Path: {data dir}/success.db
func GetSuccessDBPath() string {
	return filepath.Join(GetDataDir(), "success.db")
}

// GetListenAddr returns the address the HTTP server binds to.
func GetListenAddr() string {
	return getString("VIDFETCH_ADDR", ":8080")
}

// GetLogLevel returns the configured minimum log level name.
func GetLogLevel() string {
	return getString("VIDFETCH_LOG_LEVEL", "debug")
}

// GetLogFile returns the optional log file path. Empty means console only.
func GetLogFile() string {
	return os.Getenv("VIDFETCH_LOG_FILE")
}

// GetUpstreamTimeout bounds each call to the video platform.
// Zero, the default, leaves upstream calls unbounded.
func GetUpstreamTimeout() time.Duration {
	return getDuration("VIDFETCH_UPSTREAM_TIMEOUT", 0)
}

// GetJournalRetention is how long success and failure records are kept.
func GetJournalRetention() time.Duration {
	return getDuration("VIDFETCH_JOURNAL_RETENTION", 30*24*time.Hour)
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
