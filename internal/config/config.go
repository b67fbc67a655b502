// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Boot store backends.
const (
	BootStoreFile   = "file"
	BootStoreSQLite = "sqlite"
	BootStoreMemory = "memory"
)

// Config holds all configuration values.
type Config struct {
	// Remote assistant service
	APIURL   string
	VoiceURL string

	// Per-call timeouts
	StatusTimeout time.Duration
	ChatTimeout   time.Duration

	// Telemetry panel refresh
	StatusPollInterval time.Duration

	// Boot gate persistence
	BootStore string
	StateDir  string
	SessionID string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from a .env file (if present) and the environment.
// Variables already set in the environment win over the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	tmp := os.TempDir()
	apiURL := getEnv("OMNIMIND_API_URL", "http://localhost:8000/api")

	cfg := Config{
		APIURL:             apiURL,
		VoiceURL:           getEnv("OMNIMIND_VOICE_URL", VoiceURLFor(apiURL)),
		StatusTimeout:      getDuration("OMNIMIND_STATUS_TIMEOUT", 5*time.Second),
		ChatTimeout:        getDuration("OMNIMIND_CHAT_TIMEOUT", 60*time.Second),
		StatusPollInterval: getDuration("OMNIMIND_STATUS_POLL", 2*time.Second),
		BootStore:          strings.ToLower(getEnv("OMNIMIND_BOOT_STORE", BootStoreFile)),
		StateDir:           getEnv("OMNIMIND_STATE_DIR", filepath.Join(tmp, "omnimind")),
		SessionID:          getEnv("OMNIMIND_SESSION_ID", ""),
		LogFile:            getEnv("OMNIMIND_LOG_FILE", filepath.Join(tmp, "omnimind.log")),
		LogLevel:           parseLogLevel(getEnv("OMNIMIND_LOG_LEVEL", "INFO")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("OMNIMIND_API_URL %q: %w", c.APIURL, err)
	}
	if c.StatusTimeout <= 0 {
		return fmt.Errorf("OMNIMIND_STATUS_TIMEOUT must be > 0")
	}
	if c.ChatTimeout <= 0 {
		return fmt.Errorf("OMNIMIND_CHAT_TIMEOUT must be > 0")
	}
	if c.StatusPollInterval <= 0 {
		return fmt.Errorf("OMNIMIND_STATUS_POLL must be > 0")
	}
	switch c.BootStore {
	case BootStoreFile, BootStoreSQLite, BootStoreMemory:
	default:
		return fmt.Errorf("OMNIMIND_BOOT_STORE must be one of file, sqlite, memory (got %q)", c.BootStore)
	}
	return nil
}

// VoiceURLFor derives the voice socket endpoint from the API base URL:
// http://localhost:8000/api becomes ws://localhost:8000/ws/voice.
func VoiceURLFor(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "ws://localhost:8000/ws/voice"
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + u.Host + "/ws/voice"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
