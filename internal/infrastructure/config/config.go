package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Selection SelectionConfig
	Gesture   GestureConfig
	Uploads   UploadConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"4040"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BackendConfig locates the code backend's command channels and tunes
// reconnection.
type BackendConfig struct {
	ReloadURL   string        `envconfig:"BACKEND_RELOAD_URL" default:"ws://localhost:3001/reload"`
	MessageURL  string        `envconfig:"BACKEND_MESSAGE_URL" default:"ws://localhost:3001/message"`
	BackoffBase time.Duration `envconfig:"BACKEND_BACKOFF_BASE" default:"1s"`
	BackoffCap  time.Duration `envconfig:"BACKEND_BACKOFF_CAP" default:"30s"`
	Jitter      time.Duration `envconfig:"BACKEND_BACKOFF_JITTER" default:"1s"`
}

// SelectionConfig holds the click/drag disambiguation thresholds.
type SelectionConfig struct {
	ClickTravel   float64       `envconfig:"CLICK_TRAVEL_PX" default:"5"`
	ClickDuration time.Duration `envconfig:"CLICK_DURATION" default:"300ms"`
	MinHitSize    float64       `envconfig:"MIN_HIT_SIZE_PX" default:"8"`
	MaxHitDepth   int           `envconfig:"MAX_HIT_DEPTH" default:"10"`
}

// GestureConfig holds the manipulation thresholds.
type GestureConfig struct {
	ReorderThreshold  float64 `envconfig:"REORDER_THRESHOLD_PX" default:"10"`
	TieBreakTolerance float64 `envconfig:"TIE_BREAK_TOLERANCE_PX" default:"5"`
}

// UploadConfig holds image upload configuration.
type UploadConfig struct {
	Dir      string `envconfig:"UPLOAD_DIR" default:"public/images"`
	MaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "4040",
			Host: "0.0.0.0",
		},
		Backend: BackendConfig{
			ReloadURL:   "ws://localhost:3001/reload",
			MessageURL:  "ws://localhost:3001/message",
			BackoffBase: time.Second,
			BackoffCap:  30 * time.Second,
			Jitter:      time.Second,
		},
		Selection: SelectionConfig{
			ClickTravel:   5,
			ClickDuration: 300 * time.Millisecond,
			MinHitSize:    8,
			MaxHitDepth:   10,
		},
		Gesture: GestureConfig{
			ReorderThreshold:  10,
			TieBreakTolerance: 5,
		},
		Uploads: UploadConfig{
			Dir:      "public/images",
			MaxBytes: 5 * 1024 * 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
