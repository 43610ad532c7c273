package export

import (
	"strconv"

	"github.com/sstent/stravasync/internal/strava"
)

// Normalize maps a detailed Strava activity to the canonical workout
// shape. Pure function, no I/O. Lap order is preserved; timestamps are
// normalized to UTC so the serialized document carries one unambiguous
// absolute-time form.
func Normalize(a strava.DetailedActivity) Workout {
	splits := make([]Split, 0, len(a.Laps))
	for _, lap := range a.Laps {
		splits = append(splits, Split{
			SplitNumber:        lap.Split,
			DistanceMeters:     lap.Distance,
			ElapsedTimeSeconds: lap.ElapsedTime,
			MovingTimeSeconds:  lap.MovingTime,
			AverageSpeedMPS:    lap.AverageSpeed,
			AverageHeartrate:   lap.AverageHeartrate,
			MaxHeartrate:       lap.MaxHeartrate,
			AverageWatts:       lap.AverageWatts,
		})
	}

	return Workout{
		ID:                       strconv.FormatInt(a.ID, 10),
		Name:                     a.Name,
		Type:                     a.Type,
		StartDate:                a.StartDate.UTC(),
		DistanceMeters:           a.Distance,
		ElapsedTimeSeconds:       a.ElapsedTime,
		MovingTimeSeconds:        a.MovingTime,
		TotalElevationGainMeters: a.TotalElevationGain,
		AverageSpeedMPS:          a.AverageSpeed,
		MaxSpeedMPS:              a.MaxSpeed,
		Description:              a.Description,
		DeviceName:               a.DeviceName,
		GearID:                   a.GearID,
		Heartrate: Heartrate{
			Average: a.AverageHeartrate,
			Max:     a.MaxHeartrate,
		},
		Power: Power{
			AverageWatts: a.AverageWatts,
		},
		RelativeEffort: a.SufferScore,
		Splits:         splits,
	}
}
