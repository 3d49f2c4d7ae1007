package workout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImported_UnitConversion(t *testing.T) {
	w, err := NewImported(1, "strava", "12345", time.Now(), 5000, 1500, TypeEasyRun, "Morning Run")
	require.NoError(t, err)

	assert.Equal(t, 5.0, w.DistanceKm)
	assert.Equal(t, 1500, w.DurationSeconds)
	assert.Equal(t, 300, w.PaceSecPerKm)
}

func TestNewImported_RoundsDistance(t *testing.T) {
	w, err := NewImported(1, "strava", "12345", time.Now(), 10012, 3000, TypeEasyRun, "")
	require.NoError(t, err)

	assert.Equal(t, 10.01, w.DistanceKm)
}

func TestNewImported_ZeroDistance(t *testing.T) {
	w, err := NewImported(1, "strava", "12345", time.Now(), 0, 600, TypeTreadmill, "")
	require.NoError(t, err)

	assert.Equal(t, 0.0, w.DistanceKm)
	assert.Equal(t, 0, w.PaceSecPerKm)
}

func TestNewImported_Validation(t *testing.T) {
	_, err := NewImported(0, "strava", "12345", time.Now(), 5000, 1500, TypeEasyRun, "")
	assert.Error(t, err)

	_, err = NewImported(1, "", "12345", time.Now(), 5000, 1500, TypeEasyRun, "")
	assert.Error(t, err)

	_, err = NewImported(1, "strava", "", time.Now(), 5000, 1500, TypeEasyRun, "")
	assert.Error(t, err)
}
