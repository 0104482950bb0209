package service

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/quakeml/pkg/logger"
)

// Option applies a configuration option to the Trainer.
type Option func(*Trainer)

// WithSeed sets the seed shared by the split and the model search.
func WithSeed(seed int64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

// WithTestFraction sets the share of samples held out for evaluation.
func WithTestFraction(f float64) Option {
	return func(t *Trainer) {
		if f > 0 && f < 1 {
			t.testFraction = f
		}
	}
}

// WithMaxModels caps the number of models the search trains.
func WithMaxModels(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.maxModels = n
		}
	}
}

// WithMaxRuntime caps the time the search may spend.
func WithMaxRuntime(d time.Duration) Option {
	return func(t *Trainer) {
		if d > 0 {
			t.maxRuntime = d
		}
	}
}

// WithFolds sets the number of cross-validation folds.
func WithFolds(k int) Option {
	return func(t *Trainer) {
		if k >= 2 {
			t.folds = k
		}
	}
}

// WithSortMetric sets the leaderboard ordering metric.
func WithSortMetric(metric string) Option {
	return func(t *Trainer) {
		if metric != "" {
			t.sortMetric = metric
		}
	}
}

// WithClock sets the clock used for timing and the search budget.
func WithClock(c clockwork.Clock) Option {
	return func(t *Trainer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets a custom logger for the trainer.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}
