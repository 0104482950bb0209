package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/quakeml/pkg/logger"
)

// Run executes the probe: readiness check, prediction submissions and a
// leaderboard check. It returns ErrMismatch when any response was wrong.
func Run(ctx context.Context, cfg Config, log logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	client := newHTTPClient(cfg.Timeout)
	start := time.Now()

	// Step 1: readiness
	log.Info(ctx, "checking readiness", logger.String("url", base+"/readyz"))
	status, body, err := client.Get(ctx, base+"/readyz")
	if err != nil {
		return nil, fmt.Errorf("readiness check failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrNotReady, status, strings.TrimSpace(body))
	}

	// Step 2: generate forms
	forms := GenerateForms(cfg.Requests, cfg.InvalidFraction, cfg.Seed)
	log.Info(ctx, "generated forms", logger.Int("count", len(forms)))

	// Step 3: submit concurrently
	stats := &Stats{}
	submit(ctx, client, base, forms, cfg.Workers, stats, log)

	// Step 4: leaderboard
	status, body, err = client.Get(ctx, base+"/leaderboard")
	if err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}
	stats.LeaderboardColumns, stats.LeaderboardRows = parseLeaderboard(body)
	if status != http.StatusOK || !orderedSubset(stats.LeaderboardColumns) {
		log.Warn(ctx, "unexpected leaderboard",
			logger.Int("status", status),
			logger.String("columns", strings.Join(stats.LeaderboardColumns, ",")))
		stats.Mismatched++
	}

	stats.Duration = time.Since(start)
	displayFinalStats(ctx, log, stats)
	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d checks", ErrMismatch, stats.Mismatched, stats.Submitted+1)
	}
	return stats, nil
}

func submit(ctx context.Context, client *HTTPClient, base string, forms []Form, workers int, stats *Stats, log logger.Logger) {
	var submitted, predicted, rejected, mismatched atomic.Int64

	jobs := make(chan Form)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				submitted.Add(1)
				status, body, err := client.PostForm(ctx, base+"/predict", f.Values())
				if err != nil {
					log.Warn(ctx, "prediction request failed", logger.Error(err))
					mismatched.Add(1)
					continue
				}
				if !checkPrediction(f, status, body) {
					log.Warn(ctx, "unexpected prediction response",
						logger.Int("status", status),
						logger.String("time_input", f.Time))
					mismatched.Add(1)
					continue
				}
				if f.Valid {
					predicted.Add(1)
				} else {
					rejected.Add(1)
				}
			}
		}()
	}

send:
	for _, f := range forms {
		select {
		case <-ctx.Done():
			break send
		case jobs <- f:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = submitted.Load()
	stats.Predicted = predicted.Load()
	stats.Rejected = rejected.Load()
	stats.Mismatched = mismatched.Load()
}

func displayFinalStats(ctx context.Context, log logger.Logger, s *Stats) {
	log.Info(ctx, "probe finished",
		logger.Any("submitted", s.Submitted),
		logger.Any("predicted", s.Predicted),
		logger.Any("rejected", s.Rejected),
		logger.Any("mismatched", s.Mismatched),
		logger.String("leaderboard_columns", strings.Join(s.LeaderboardColumns, ",")),
		logger.Int("leaderboard_rows", s.LeaderboardRows),
		logger.Duration("duration", s.Duration))
}
