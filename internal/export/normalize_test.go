package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/stravasync/internal/strava"
)

func float64p(v float64) *float64 { return &v }

func TestNormalizeMapsAllFields(t *testing.T) {
	start := time.Date(2024, 1, 5, 6, 30, 0, 0, time.UTC)
	activity := strava.DetailedActivity{
		ID:                 9876543210,
		Name:               "Tempo Run",
		Type:               "Run",
		StartDate:          start,
		Distance:           10000.5,
		ElapsedTime:        3620,
		MovingTime:         3540,
		TotalElevationGain: 42.5,
		AverageSpeed:       2.82,
		MaxSpeed:           4.1,
		Description:        "felt good",
		DeviceName:         "Garmin Forerunner 255",
		GearID:             "g123",
		AverageHeartrate:   float64p(152.3),
		MaxHeartrate:       float64p(178),
		AverageWatts:       float64p(240.5),
		SufferScore:        float64p(85),
		Laps: []strava.Lap{
			{Split: 1, Distance: 5000, ElapsedTime: 1810, MovingTime: 1770, AverageSpeed: 2.8, AverageHeartrate: float64p(148), MaxHeartrate: float64p(160), AverageWatts: float64p(230)},
			{Split: 2, Distance: 5000.5, ElapsedTime: 1810, MovingTime: 1770, AverageSpeed: 2.84, AverageHeartrate: float64p(156), MaxHeartrate: float64p(178), AverageWatts: float64p(251)},
		},
	}

	w := Normalize(activity)

	assert.Equal(t, "9876543210", w.ID)
	assert.Equal(t, "Tempo Run", w.Name)
	assert.Equal(t, "Run", w.Type)
	assert.True(t, w.StartDate.Equal(start))
	assert.Equal(t, 10000.5, w.DistanceMeters)
	assert.Equal(t, int64(3620), w.ElapsedTimeSeconds)
	assert.Equal(t, int64(3540), w.MovingTimeSeconds)
	assert.Equal(t, 42.5, w.TotalElevationGainMeters)
	assert.Equal(t, 2.82, w.AverageSpeedMPS)
	assert.Equal(t, 4.1, w.MaxSpeedMPS)
	assert.Equal(t, "felt good", w.Description)
	assert.Equal(t, "Garmin Forerunner 255", w.DeviceName)
	assert.Equal(t, "g123", w.GearID)
	require.NotNil(t, w.Heartrate.Average)
	assert.Equal(t, 152.3, *w.Heartrate.Average)
	require.NotNil(t, w.Power.AverageWatts)
	assert.Equal(t, 240.5, *w.Power.AverageWatts)
	require.NotNil(t, w.RelativeEffort)
	assert.Equal(t, 85.0, *w.RelativeEffort)

	require.Len(t, w.Splits, 2)
	assert.Equal(t, 1, w.Splits[0].SplitNumber)
	assert.Equal(t, 2, w.Splits[1].SplitNumber)
	assert.Equal(t, 5000.5, w.Splits[1].DistanceMeters)
	require.NotNil(t, w.Splits[1].MaxHeartrate)
	assert.Equal(t, 178.0, *w.Splits[1].MaxHeartrate)
}

func TestNormalizePreservesLapOrder(t *testing.T) {
	activity := strava.DetailedActivity{
		ID: 1,
		Laps: []strava.Lap{
			{Split: 3}, {Split: 1}, {Split: 2},
		},
	}

	w := Normalize(activity)

	require.Len(t, w.Splits, 3)
	assert.Equal(t, 3, w.Splits[0].SplitNumber)
	assert.Equal(t, 1, w.Splits[1].SplitNumber)
	assert.Equal(t, 2, w.Splits[2].SplitNumber)
}

func TestNormalizeAbsentMetrics(t *testing.T) {
	// Distance and speed-class fields default to a usable zero; biometric
	// fields default to unknown.
	w := Normalize(strava.DetailedActivity{ID: 5, Name: "Bare Walk", Type: "Walk"})

	assert.Zero(t, w.DistanceMeters)
	assert.Zero(t, w.AverageSpeedMPS)
	assert.Zero(t, w.MaxSpeedMPS)
	assert.Nil(t, w.Heartrate.Average)
	assert.Nil(t, w.Heartrate.Max)
	assert.Nil(t, w.Power.AverageWatts)
	assert.Nil(t, w.RelativeEffort)
}

func TestNormalizeSerializesEmptySplitsAsArray(t *testing.T) {
	w := Normalize(strava.DetailedActivity{ID: 7})

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"splits":[]`)
}

func TestNormalizeTimestampsAreUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	start := time.Date(2024, 1, 5, 7, 30, 0, 0, loc)

	w := Normalize(strava.DetailedActivity{ID: 8, StartDate: start})

	assert.Equal(t, time.UTC, w.StartDate.Location())

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start_date":"2024-01-05T06:30:00Z"`)
}
