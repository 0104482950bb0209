package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/quakeml/internal/probe"
	"github.com/okian/quakeml/pkg/logger"
)

// Default configuration constants.
const (
	defaultRequests     = 200
	defaultInvalid      = 0.1
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:5000", "Base URL of the service")
		requests = flag.Int("requests", defaultRequests, "Number of prediction forms to submit")
		invalid  = flag.Float64("invalid", defaultInvalid, "Share of forms sent with a malformed time")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed     = flag.Int64("seed", 42, "Seed for form generation")
		format   = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.InitWithWriter(os.Stdout, *format); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	cfg := probe.Config{
		BaseURL:         *baseURL,
		Requests:        *requests,
		InvalidFraction: *invalid,
		Workers:         *workers,
		Timeout:         *timeout,
		Seed:            *seed,
	}

	if _, err := probe.Run(ctx, cfg, logger.Named("probe")); err != nil {
		os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
