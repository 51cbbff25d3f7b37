package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`

	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-image"`
	GeminiBaseURL    string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	GeminiAPIVersion string `envconfig:"GEMINI_API_VERSION" default:"v1beta"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	PreferIPv4 bool `envconfig:"PREFER_IPV4" default:"true"`

	MediaGroupDebounce time.Duration `envconfig:"MEDIA_GROUP_DEBOUNCE" default:"1200ms"`
	MaxConcurrent      int           `envconfig:"MAX_CONCURRENT" default:"4"`
	// Zero leaves outbound calls and updates without an overall deadline.
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"0s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"0s"`

	WebAddr           string `envconfig:"WEB_ADDR" default:":8080"`
	MetricsAddr       string `envconfig:"METRICS_ADDR"`
	DefaultImageCount int    `envconfig:"DEFAULT_IMAGE_COUNT" default:"4"`
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.GeminiBaseURL = strings.TrimSpace(cfg.GeminiBaseURL)
	cfg.GeminiAPIVersion = strings.TrimSpace(cfg.GeminiAPIVersion)

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HTTPTimeout < 0 {
		cfg.HTTPTimeout = 0
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.MediaGroupDebounce <= 0 {
		cfg.MediaGroupDebounce = 1200 * time.Millisecond
	}
	if cfg.DefaultImageCount < 1 {
		cfg.DefaultImageCount = 4
	}

	return cfg, nil
}

// RequireTelegram is the extra check the bot front end needs.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}
