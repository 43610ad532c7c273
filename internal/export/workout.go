// Package export defines the exported workout document and the
// reconciliation that keeps it in sync with upstream activities.
package export

import "time"

// SchemaVersion is the only document shape this exporter reads or writes.
// A stored document carrying anything else is treated as unparseable and
// rebuilt from scratch.
const SchemaVersion = "2.0"

// Document is the persisted export artifact: regenerated metadata plus the
// workouts of the retention window, unique by id and ordered by start date
// descending.
type Document struct {
	Metadata Metadata  `json:"metadata"`
	Workouts []Workout `json:"workouts"`
}

// Metadata is stamped fresh on every save, never carried over from a
// loaded snapshot.
type Metadata struct {
	SchemaVersion string    `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`
}

// Workout is one exported activity. Distance and speed fields default to
// zero when the source had nothing to report; heartrate, power and
// relative effort stay null instead, because a zero there would read as a
// measurement.
type Workout struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	Type                     string    `json:"type"`
	StartDate                time.Time `json:"start_date"`
	DistanceMeters           float64   `json:"distance_meters"`
	ElapsedTimeSeconds       int64     `json:"elapsed_time_seconds"`
	MovingTimeSeconds        int64     `json:"moving_time_seconds"`
	TotalElevationGainMeters float64   `json:"total_elevation_gain_meters"`
	AverageSpeedMPS          float64   `json:"average_speed_mps"`
	MaxSpeedMPS              float64   `json:"max_speed_mps"`
	Description              string    `json:"description"`
	DeviceName               string    `json:"device_name"`
	GearID                   string    `json:"gear_id"`
	Heartrate                Heartrate `json:"heartrate"`
	Power                    Power     `json:"power"`
	RelativeEffort           *float64  `json:"relative_effort"`
	Splits                   []Split   `json:"splits"`
}

// Heartrate is the per-workout heartrate summary; nil means the activity
// was recorded without a heartrate sensor.
type Heartrate struct {
	Average *float64 `json:"average"`
	Max     *float64 `json:"max"`
}

// Power is the per-workout power summary.
type Power struct {
	AverageWatts *float64 `json:"average_watts"`
}

// Split is one lap of a workout. It has no identity of its own beyond its
// position in the parent's split sequence.
type Split struct {
	SplitNumber        int      `json:"split_number"`
	DistanceMeters     float64  `json:"distance_meters"`
	ElapsedTimeSeconds int64    `json:"elapsed_time_seconds"`
	MovingTimeSeconds  int64    `json:"moving_time_seconds"`
	AverageSpeedMPS    float64  `json:"average_speed_mps"`
	AverageHeartrate   *float64 `json:"average_heartrate"`
	MaxHeartrate       *float64 `json:"max_heartrate"`
	AverageWatts       *float64 `json:"average_watts"`
}
