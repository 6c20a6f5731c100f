package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reality-archive/internal/database"
)

func TestParseExperimentTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	want := time.Date(2026, 10, 20, 18, 30, 0, 0, loc)

	for _, in := range []string{"2026-10-20 18:30", "2026-10-20T18:30", "20/10/2026 18:30", "2026-10-20T18:30:00+01:00"} {
		got, err := ParseExperimentTime(in, loc)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseExperimentTime("mañana", loc)
	assert.Error(t, err)
	_, err = ParseExperimentTime("  ", loc)
	assert.Error(t, err)
}

func TestDayKeyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	instant := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-19", DayKey(instant, time.UTC))
	assert.Equal(t, "2026-10-18", DayKey(instant, loc))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, loc), StartOfDay(instant, loc))
}

func TestFormatDelay(t *testing.T) {
	assert.Equal(t, "0m", FormatDelay(-time.Minute))
	assert.Equal(t, "45m", FormatDelay(45*time.Minute))
	assert.Equal(t, "2h 5m", FormatDelay(2*time.Hour+5*time.Minute))
	assert.Equal(t, "3d 1h 0m", FormatDelay(73*time.Hour))
}

func TestParseBodyPart(t *testing.T) {
	part, ok := ParseBodyPart("Pecho")
	require.True(t, ok)
	assert.Equal(t, database.Chest, part)

	part, ok = ParseBodyPart("estómago")
	require.True(t, ok)
	assert.Equal(t, database.Stomach, part)

	_, ok = ParseBodyPart("rodilla")
	assert.False(t, ok)
}
