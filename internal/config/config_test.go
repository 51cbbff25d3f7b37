package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "  key  ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiModel)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.PreferIPv4)
	assert.Equal(t, 1200*time.Millisecond, cfg.MediaGroupDebounce)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, ":8080", cfg.WebAddr)
	assert.Equal(t, 4, cfg.DefaultImageCount)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("HTTP_TIMEOUT", "90s")
	t.Setenv("PREFER_IPV4", "false")
	t.Setenv("DEFAULT_IMAGE_COUNT", "-2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.PreferIPv4)
	assert.Equal(t, 4, cfg.DefaultImageCount)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENT", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequireTelegram(t *testing.T) {
	assert.Error(t, Config{}.RequireTelegram())
	assert.NoError(t, Config{TelegramToken: "t"}.RequireTelegram())
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", &buf)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger.Warn("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
