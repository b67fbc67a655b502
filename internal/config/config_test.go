package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OMNIMIND_API_URL", "OMNIMIND_VOICE_URL", "OMNIMIND_STATUS_TIMEOUT",
		"OMNIMIND_CHAT_TIMEOUT", "OMNIMIND_STATUS_POLL", "OMNIMIND_BOOT_STORE",
		"OMNIMIND_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIURL)
	assert.Equal(t, "ws://localhost:8000/ws/voice", cfg.VoiceURL)
	assert.Equal(t, 5*time.Second, cfg.StatusTimeout)
	assert.Equal(t, 60*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 2*time.Second, cfg.StatusPollInterval)
	assert.Equal(t, BootStoreFile, cfg.BootStore)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OMNIMIND_API_URL", "https://assistant.example:7000/api")
	t.Setenv("OMNIMIND_VOICE_URL", "")
	t.Setenv("OMNIMIND_CHAT_TIMEOUT", "90s")
	t.Setenv("OMNIMIND_BOOT_STORE", "SQLite")
	t.Setenv("OMNIMIND_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wss://assistant.example:7000/ws/voice", cfg.VoiceURL)
	assert.Equal(t, 90*time.Second, cfg.ChatTimeout)
	assert.Equal(t, BootStoreSQLite, cfg.BootStore)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("OMNIMIND_STATUS_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.StatusTimeout)
}

func TestLoadRejectsUnknownBootStore(t *testing.T) {
	t.Setenv("OMNIMIND_BOOT_STORE", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OMNIMIND_BOOT_STORE")
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIURL:             "http://localhost:8000/api",
		StatusTimeout:      time.Second,
		ChatTimeout:        time.Second,
		StatusPollInterval: time.Second,
		BootStore:          BootStoreMemory,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.APIURL = "not a url" }},
		{"zero status timeout", func(c *Config) { c.StatusTimeout = 0 }},
		{"negative chat timeout", func(c *Config) { c.ChatTimeout = -time.Second }},
		{"zero poll", func(c *Config) { c.StatusPollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "parseLogLevel(%q)", in)
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("chat sent", "chars", 12)

	assert.Contains(t, stderr.String(), "chat sent")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(file.Bytes()), &entry))
	assert.Equal(t, "chat sent", entry["msg"])
	assert.EqualValues(t, 12, entry["chars"])
}
