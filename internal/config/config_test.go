package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("SESSION_DIR", "/tmp/attendance-test")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/attendance-test", cfg.Session.Dir)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
}

func TestLoadClient_InvalidBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "localhost:8080")

	_, err := LoadClient()
	assert.Error(t, err)
}

func TestLoadDevAPI(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		_, err := LoadDevAPI()
		assert.ErrorContains(t, err, "JWT_SECRET_KEY")
	})

	t.Run("reads the workday", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
		t.Setenv("WORKDAY_START", "08:30")
		t.Setenv("WORKDAY_LATE_GRACE", "10m")
		t.Setenv("WORKDAY_TIMEZONE", "UTC")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

		cfg, err := LoadDevAPI()
		require.NoError(t, err)

		assert.Equal(t, "08:30", cfg.Workday.Start)
		assert.Equal(t, "18:00", cfg.Workday.End)
		assert.Equal(t, 10*time.Minute, cfg.Workday.LateGrace)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
		loc, err := cfg.Workday.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("rejects an unknown timezone", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
		t.Setenv("WORKDAY_TIMEZONE", "Mars/Olympus")
		_, err := LoadDevAPI()
		assert.Error(t, err)
	})
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}
