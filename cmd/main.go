package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/quakeml/internal/adapters/feed"
	"github.com/okian/quakeml/internal/adapters/http/api"
	"github.com/okian/quakeml/internal/adapters/http/site"
	"github.com/okian/quakeml/internal/adapters/http/swagger"
	service "github.com/okian/quakeml/internal/app"
	"github.com/okian/quakeml/internal/config"
	"github.com/okian/quakeml/pkg/logger"
	"github.com/paulmach/orb"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.LogFormat != "" && cfg.LogFormat != "text" {
		if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Fetching and training are startup work; any failure ends the process.
	handle, err := buildModel(ctx, cfg, log)
	if err != nil {
		log.Fatal(ctx, "model startup failed", logger.Error(err))
	}

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(handle,
		api.WithStats(handle),
		api.WithLogger(log.Named("http")),
	).Register(ctx, mux)

	srv := newHTTPServer(cfg, mux)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildModel fetches the configured feed once and trains the model served
// by the HTTP layer.
func buildModel(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.ModelHandle, error) {
	client := feed.NewClient(
		feed.WithBaseURL(cfg.FeedURL),
		feed.WithTimeout(cfg.FeedTimeout),
		feed.WithQuery(feedQuery(cfg)),
		feed.WithLogger(log.Named("feed")),
	)
	records, err := client.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	trainer := service.NewTrainer(
		service.WithSeed(cfg.Seed),
		service.WithTestFraction(cfg.TestFraction),
		service.WithMaxModels(cfg.MaxModels),
		service.WithMaxRuntime(cfg.MaxRuntime()),
		service.WithFolds(cfg.CVFolds),
		service.WithSortMetric(cfg.SortMetric),
		service.WithLogger(log.Named("trainer")),
	)
	handle, err := trainer.Train(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	return handle, nil
}

func feedQuery(cfg *config.Config) feed.Query {
	return feed.Query{
		StartTime:    cfg.FeedStartTime,
		EndTime:      cfg.FeedEndTime,
		MinMagnitude: cfg.FeedMinMagnitude,
		Region: orb.Bound{
			Min: orb.Point{cfg.FeedMinLongitude, cfg.FeedMinLatitude},
			Max: orb.Point{cfg.FeedMaxLongitude, cfg.FeedMaxLatitude},
		},
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
