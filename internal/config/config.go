package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ClientConfig configures the command-line client.
type ClientConfig struct {
	API     APIConfig
	App     AppConfig
	Session SessionConfig
	Watch   WatchConfig
}

// APIConfig points the client at the attendance REST API
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type SessionConfig struct {
	// Dir holds the persisted session; empty disables persistence
	Dir string
}

type WatchConfig struct {
	Interval time.Duration
}

// DevAPIConfig configures the development API server.
type DevAPIConfig struct {
	App      AppConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Workday  WorkdayConfig
	Fixtures FixturesConfig
	Exports  ExportsConfig
	Jobs     JobsConfig
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type WorkdayConfig struct {
	Start     string
	End       string
	LateGrace time.Duration
	Timezone  string
}

type FixturesConfig struct {
	// Path to a YAML seed; empty uses the built-in seed
	Path string
}

type ExportsConfig struct {
	// Dir stores generated exports; empty keeps them in memory
	Dir string
}

type JobsConfig struct {
	Interval time.Duration
}

// loadDotEnv reads .env when present. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	config := &ClientConfig{}

	// API configuration
	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	config.API = APIConfig{
		BaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout: timeout,
	}

	config.App = AppConfig{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "warn"),
	}

	// Session persistence
	config.Session = SessionConfig{
		Dir: getEnv("SESSION_DIR", defaultSessionDir()),
	}

	interval, err := time.ParseDuration(getEnv("WATCH_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WATCH_INTERVAL: %w", err)
	}
	config.Watch = WatchConfig{Interval: interval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Watch.Interval < time.Second {
		return fmt.Errorf("WATCH_INTERVAL must be at least 1s")
	}
	if _, err := ParseLogLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

func LoadDevAPI() (*DevAPIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	config := &DevAPIConfig{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Workday configuration
	grace, err := time.ParseDuration(getEnv("WORKDAY_LATE_GRACE", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_LATE_GRACE: %w", err)
	}
	config.Workday = WorkdayConfig{
		Start:     getEnv("WORKDAY_START", "09:00"),
		End:       getEnv("WORKDAY_END", "18:00"),
		LateGrace: grace,
		Timezone:  getEnv("WORKDAY_TIMEZONE", "Local"),
	}

	config.Fixtures = FixturesConfig{Path: getEnv("FIXTURES_PATH", "")}
	config.Exports = ExportsConfig{Dir: getEnv("EXPORTS_DIR", "")}

	jobInterval, err := time.ParseDuration(getEnv("JOBS_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOBS_INTERVAL: %w", err)
	}
	config.Jobs = JobsConfig{Interval: jobInterval}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *DevAPIConfig) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 16 characters")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Workday.LateGrace < 0 {
		return fmt.Errorf("WORKDAY_LATE_GRACE must not be negative")
	}
	if _, err := c.Workday.Location(); err != nil {
		return err
	}
	if c.Jobs.Interval < time.Minute {
		return fmt.Errorf("JOBS_INTERVAL must be at least 1m")
	}
	if _, err := ParseLogLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (w WorkdayConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_TIMEZONE: %w", err)
	}
	return loc, nil
}

// ParseLogLevel accepts debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func defaultSessionDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "attendance")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
