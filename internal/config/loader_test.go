package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/quakeml/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

// configEnvVars lists every variable the tests touch so each scenario starts clean.
var configEnvVars = []string{
	"QUAKE_CONFIG",
	"QUAKE_ADDR",
	"QUAKE_MAX_MODELS",
	"QUAKE_MAX_RUNTIME_SECS",
	"QUAKE_SEED",
	"QUAKE_FEED_TIMEOUT",
	"QUAKE_FEED_MIN_MAGNITUDE",
	"QUAKE_TEST_FRACTION",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "quake.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it matches New", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading with environment variables", func() {
			_ = os.Setenv("QUAKE_ADDR", ":8080")
			_ = os.Setenv("QUAKE_MAX_MODELS", "4")
			_ = os.Setenv("QUAKE_SEED", "7")
			_ = os.Setenv("QUAKE_FEED_TIMEOUT", "5s")
			_ = os.Setenv("QUAKE_FEED_MIN_MAGNITUDE", "5.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxModels, convey.ShouldEqual, 4)
				convey.So(cfg.Seed, convey.ShouldEqual, int64(7))
				convey.So(cfg.FeedTimeout, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.FeedMinMagnitude, convey.ShouldEqual, 5.5)
				convey.So(cfg.MaxRuntimeSecs, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading a YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
max_models: 3
max_runtime_secs: 15
sort_metric: mae
`)
			_ = os.Setenv("QUAKE_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxModels, convey.ShouldEqual, 3)
				convey.So(cfg.MaxRuntime(), convey.ShouldEqual, 15*time.Second)
				convey.So(cfg.SortMetric, convey.ShouldEqual, "mae")
			})

			convey.Convey("And env still wins over the file", func() {
				_ = os.Setenv("QUAKE_MAX_MODELS", "8")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxModels, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("QUAKE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When env produces an invalid budget", func() {
			_ = os.Setenv("QUAKE_TEST_FRACTION", "1.5")
			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
