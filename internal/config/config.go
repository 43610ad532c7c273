package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DaysBack        int
	RemoteFilename  string
	LocalExportPath string
	DatabasePath    string
	RateLimit       time.Duration

	StravaClientID     string
	StravaClientSecret string
	StravaTokenPath    string

	GoogleCredentialsPath string
	GoogleTokenPath       string
}

// LoadConfig loads configuration from the optional JSON config file, the
// environment (STRAVASYNC_* plus the bare STRAVA_CLIENT_* variables) and
// built-in defaults, in that order of precedence. If path is empty the
// default locations ./config.json and ./config/config.json are tried; a
// missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; ignore a missing file like the rest of the defaults.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STRAVASYNC")
	v.AutomaticEnv()
	v.BindEnv("strava_client_id", "STRAVA_CLIENT_ID")
	v.BindEnv("strava_client_secret", "STRAVA_CLIENT_SECRET")

	v.SetDefault("days_back", 90)
	v.SetDefault("remote_filename", "strava_export.json")
	v.SetDefault("local_export_path", filepath.Join("data", "strava_export.json"))
	v.SetDefault("database_path", "stravasync.db")
	v.SetDefault("rate_limit", "500ms")
	v.SetDefault("strava_token_path", filepath.Join("config", "strava_token.json"))
	v.SetDefault("google_credentials_path", filepath.Join("config", "credentials.json"))
	v.SetDefault("google_token_path", filepath.Join("config", "token.json"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		DaysBack:              v.GetInt("days_back"),
		RemoteFilename:        v.GetString("remote_filename"),
		LocalExportPath:       v.GetString("local_export_path"),
		DatabasePath:          v.GetString("database_path"),
		RateLimit:             v.GetDuration("rate_limit"),
		StravaClientID:        v.GetString("strava_client_id"),
		StravaClientSecret:    v.GetString("strava_client_secret"),
		StravaTokenPath:       v.GetString("strava_token_path"),
		GoogleCredentialsPath: v.GetString("google_credentials_path"),
		GoogleTokenPath:       v.GetString("google_token_path"),
	}

	if cfg.DaysBack <= 0 {
		return nil, fmt.Errorf("days_back must be positive, got %d", cfg.DaysBack)
	}

	return cfg, nil
}
