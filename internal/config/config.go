// Package config defines service configuration and its loading hooks.
//
// The defaults returned by New reproduce the fixed query, budget and seed the
// service was designed around, so an unconfigured process behaves the same
// on every start. Load layers an optional YAML file and QUAKE_* environment
// variables on top.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Sort metrics accepted by the model search.
var sortMetrics = map[string]struct{}{"rmse": {}, "mae": {}, "mse": {}, "r2": {}}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address.
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Feed query.
	FeedURL          string        `koanf:"feed_url"`
	FeedTimeout      time.Duration `koanf:"feed_timeout"`
	FeedStartTime    string        `koanf:"feed_start_time"`
	FeedEndTime      string        `koanf:"feed_end_time"`
	FeedMinMagnitude float64       `koanf:"feed_min_magnitude"`
	FeedMinLatitude  float64       `koanf:"feed_min_latitude"`
	FeedMaxLatitude  float64       `koanf:"feed_max_latitude"`
	FeedMinLongitude float64       `koanf:"feed_min_longitude"`
	FeedMaxLongitude float64       `koanf:"feed_max_longitude"`

	// Training budget.
	Seed           int64   `koanf:"seed"`
	TestFraction   float64 `koanf:"test_fraction"`
	MaxModels      int     `koanf:"max_models"`
	MaxRuntimeSecs int     `koanf:"max_runtime_secs"`
	CVFolds        int     `koanf:"cv_folds"`
	SortMetric     string  `koanf:"sort_metric"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":5000",
		ShutdownTimeout: 30 * time.Second,

		FeedURL:          "https://earthquake.usgs.gov/fdsnws/event/1/query",
		FeedTimeout:      30 * time.Second,
		FeedStartTime:    "2025-08-01",
		FeedEndTime:      "2025-09-01",
		FeedMinMagnitude: 4,
		FeedMinLatitude:  -1,
		FeedMaxLatitude:  80,
		FeedMinLongitude: 25,
		FeedMaxLongitude: 180,

		Seed:           42,
		TestFraction:   0.2,
		MaxModels:      10,
		MaxRuntimeSecs: 60,
		CVFolds:        5,
		SortMetric:     "rmse",
	}
}

// MaxRuntime returns the search budget as a duration.
func (c *Config) MaxRuntime() time.Duration {
	return time.Duration(c.MaxRuntimeSecs) * time.Second
}

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case strings.TrimSpace(c.FeedURL) == "":
		return invalid("feed_url must not be empty")
	case c.FeedTimeout <= 0:
		return invalid("feed_timeout must be positive")
	case c.ShutdownTimeout <= 0:
		return invalid("shutdown_timeout must be positive")
	case c.FeedMinLatitude > c.FeedMaxLatitude:
		return invalid("feed_min_latitude exceeds feed_max_latitude")
	case c.FeedMinLongitude > c.FeedMaxLongitude:
		return invalid("feed_min_longitude exceeds feed_max_longitude")
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return invalid("test_fraction must be in (0, 1)")
	case c.MaxModels < 1:
		return invalid("max_models must be at least 1")
	case c.MaxRuntimeSecs < 1:
		return invalid("max_runtime_secs must be at least 1")
	case c.CVFolds < 2:
		return invalid("cv_folds must be at least 2")
	}
	if _, ok := sortMetrics[strings.ToLower(c.SortMetric)]; !ok {
		return invalid("unknown sort_metric " + c.SortMetric)
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
