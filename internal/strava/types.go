package strava

import "time"

// SummaryActivity is one entry of the GET /athlete/activities response.
// Only the fields the exporter needs to decide what to fetch in full.
type SummaryActivity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"start_date"`
}

// DetailedActivity is the full record from GET /activities/{id},
// including the per-lap breakdown. Heartrate, power and suffer score are
// pointers because Strava omits them for activities recorded without the
// corresponding sensor.
type DetailedActivity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`
	ElapsedTime        int64     `json:"elapsed_time"`
	MovingTime         int64     `json:"moving_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	Description        string    `json:"description"`
	DeviceName         string    `json:"device_name"`
	GearID             string    `json:"gear_id"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *float64  `json:"max_heartrate"`
	AverageWatts       *float64  `json:"average_watts"`
	SufferScore        *float64  `json:"suffer_score"`
	Laps               []Lap     `json:"laps"`
}

// Lap is one lap of a DetailedActivity.
type Lap struct {
	Split            int      `json:"split"`
	Distance         float64  `json:"distance"`
	ElapsedTime      int64    `json:"elapsed_time"`
	MovingTime       int64    `json:"moving_time"`
	AverageSpeed     float64  `json:"average_speed"`
	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	AverageWatts     *float64 `json:"average_watts"`
}

// token is the payload of the Strava OAuth token endpoint and, unchanged,
// of the local token file written by `stravasync auth strava`.
type token struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

func (t *token) expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}
