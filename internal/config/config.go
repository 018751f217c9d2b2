package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultBaseURL = "https://picnichood.mandeeps.me/api"

type Config struct {
	BaseURL  string
	StateDir string
	LogLevel string

	// Latitude/Longitude are read once at startup. HasLocation stays false
	// when they are absent or malformed and the communities screen shows a
	// location-unavailable state instead of fetching.
	Latitude    float64
	Longitude   float64
	HasLocation bool
}

func Load() (*Config, error) {
	// A missing .env is fine, the process environment still applies.
	_ = godotenv.Load(".env")

	cfg := &Config{
		BaseURL:  os.Getenv("PICNIC_API_URL"),
		StateDir: os.Getenv("PICNIC_STATE_DIR"),
		LogLevel: os.Getenv("PICNIC_LOG_LEVEL"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".picnic")
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	latStr, lonStr := os.Getenv("PICNIC_LAT"), os.Getenv("PICNIC_LON")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr == nil && lonErr == nil {
			cfg.Latitude = lat
			cfg.Longitude = lon
			cfg.HasLocation = true
		}
	}

	return cfg, nil
}

func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "picnic.db")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "picnic.log")
}
