package automl

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/quakeml/pkg/logger"
)

// Sort metrics understood by the search.
const (
	MetricRMSE = "rmse"
	MetricMSE  = "mse"
	MetricMAE  = "mae"
	MetricR2   = "r2"
)

// Option applies a configuration option to the Search.
type Option func(*Search)

// WithMaxModels caps the number of candidates trained.
func WithMaxModels(n int) Option {
	return func(s *Search) {
		if n > 0 {
			s.maxModels = n
		}
	}
}

// WithMaxRuntime caps the wall-clock time spent searching.
func WithMaxRuntime(d time.Duration) Option {
	return func(s *Search) {
		if d > 0 {
			s.maxRuntime = d
		}
	}
}

// WithSeed fixes fold assignment and every stochastic learner.
func WithSeed(seed int64) Option {
	return func(s *Search) {
		s.seed = seed
	}
}

// WithSortMetric selects the leaderboard ordering: rmse, mse, mae or r2.
func WithSortMetric(metric string) Option {
	return func(s *Search) {
		switch m := strings.ToLower(metric); m {
		case MetricRMSE, MetricMSE, MetricMAE, MetricR2:
			s.sortMetric = m
		}
	}
}

// WithFolds sets the number of cross-validation folds.
func WithFolds(k int) Option {
	return func(s *Search) {
		if k >= 2 {
			s.folds = k
		}
	}
}

// WithClock sets the time source used to enforce the runtime budget.
func WithClock(c clockwork.Clock) Option {
	return func(s *Search) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRunID fixes the run identifier embedded in model ids.
func WithRunID(id string) Option {
	return func(s *Search) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Search) {
		if l != nil {
			s.logger = l
		}
	}
}

// withCandidates replaces the candidate plan.
func withCandidates(c []candidate) Option {
	return func(s *Search) {
		s.plan = func(int64) []candidate { return c }
	}
}
