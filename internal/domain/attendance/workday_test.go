package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkday(t *testing.T) {
	w, err := ParseWorkday("09:00", "18:00", 15*time.Minute, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour, w.Start)
	assert.Equal(t, 18*time.Hour, w.End)

	_, err = ParseWorkday("18:00", "09:00", 0, time.UTC)
	assert.Error(t, err)

	_, err = ParseWorkday("9am", "18:00", 0, time.UTC)
	assert.Error(t, err)
}

func TestWorkday_Classification(t *testing.T) {
	w, err := ParseWorkday("09:00", "18:00", 15*time.Minute, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, StatusPresent, w.ClassifyClockIn(*at("08:45")))
	assert.Equal(t, StatusPresent, w.ClassifyClockIn(*at("09:15")))
	assert.Equal(t, StatusLate, w.ClassifyClockIn(*at("09:16")))

	assert.True(t, w.LeftEarly(*at("17:59")))
	assert.False(t, w.LeftEarly(*at("18:00")))

	assert.Equal(t, "2024-05-13", w.Date(*at("23:59")))
	assert.True(t, w.IsWorkingDay(*at("12:00")))
	assert.False(t, w.IsWorkingDay(at("12:00").AddDate(0, 0, 5)))
}
