package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
)

// Config is the root configuration.
type Config struct {
	Database Database `yaml:"database"`
	Stream   Stream   `yaml:"stream"`
	Sources  Sources  `yaml:"sources"`
	Logging  Logging  `yaml:"logging"`
}

// Database configures the SQLite store.
type Database struct {
	Path string `yaml:"path"`
	// SampleSize is the unlabeled sample size K frozen into the
	// classification view when the store is first created.
	SampleSize int `yaml:"sample_size"`
}

// Stream configures the poll loop and the bounding-box stream filter.
type Stream struct {
	PollInterval string `yaml:"poll_interval"`
	Workers      int    `yaml:"workers"`
	// BoundingBox is [swLon, swLat, neLon, neLat]. Empty disables
	// the filter.
	BoundingBox []float64 `yaml:"bounding_box"`
}

// ParsePollInterval returns the poll interval as a time.Duration. A
// value that does not parse is a configuration error, not a default.
func (s Stream) ParsePollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("parse poll_interval %q: %w", s.PollInterval, err)
	}
	return d, nil
}

// Box returns the configured bounding box, or nil when unset.
func (s Stream) Box() (*geo.BoundingBox, error) {
	if len(s.BoundingBox) == 0 {
		return nil, nil
	}
	if len(s.BoundingBox) != 4 {
		return nil, fmt.Errorf("bounding_box needs 4 values [swLon swLat neLon neLat], got %d", len(s.BoundingBox))
	}
	return &geo.BoundingBox{
		SouthWest: geo.Point{Lon: s.BoundingBox[0], Lat: s.BoundingBox[1]},
		NorthEast: geo.Point{Lon: s.BoundingBox[2], Lat: s.BoundingBox[3]},
	}, nil
}

// Sources holds configuration for all post sources.
type Sources struct {
	GeoRSS GeoRSS `yaml:"georss"`
	File   File   `yaml:"file"`
}

// GeoRSS configures the GeoRSS feed poller.
type GeoRSS struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single GeoRSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// File configures the JSON-Lines replay source.
type File struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Logging configures log output.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults. The bounding box
// is the continental-US extent the capture was originally biased to.
func Default() *Config {
	return &Config{
		Database: Database{
			Path:       "./tweets.db",
			SampleSize: 200,
		},
		Stream: Stream{
			PollInterval: "5m",
			Workers:      4,
			BoundingBox:  []float64{-125.1088, 23.2193, -66.595, 47.4416},
		},
		Sources: Sources{
			GeoRSS: GeoRSS{Enabled: false},
			File:   File{Enabled: false},
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads configuration from a YAML file and applies env var
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if _, err := cfg.Stream.ParsePollInterval(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment
// variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("UTA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("UTA_SAMPLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Database.SampleSize = n
		}
	}
	if v := os.Getenv("UTA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
