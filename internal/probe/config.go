// Package probe drives a running prediction service over HTTP and checks
// the pages it returns.
package probe

import (
	"errors"
	"time"
)

// Sentinel errors returned by Run.
var (
	ErrNotReady = errors.New("service is not ready")
	ErrMismatch = errors.New("responses did not match expectations")
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Requests        int           // Number of prediction forms to submit
	InvalidFraction float64       // Share of forms sent with a malformed time
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	Seed            int64         // Seed for form generation
}

// Stats holds probe results.
type Stats struct {
	Submitted          int64
	Predicted          int64
	Rejected           int64
	Mismatched         int64
	LeaderboardColumns []string
	LeaderboardRows    int
	Duration           time.Duration
}
