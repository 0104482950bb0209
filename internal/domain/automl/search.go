// Package automl runs a budgeted search over regression model families and
// hyperparameters, ranks the candidates by cross-validated error, and
// exposes the best one as the leader.
package automl

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/okian/quakeml/pkg/logger"
)

// Default search configuration constants.
const (
	defaultMaxModels  = 10
	defaultMaxRuntime = 60 * time.Second
	defaultSeed       = 42
	defaultFolds      = 5
)

// candidate is one entry of the search plan.
type candidate struct {
	algo    string
	learner learner
}

// defaultPlan lists candidates in training order. Cheap, robust models come
// first so a tight budget still yields a sensible leader.
func defaultPlan(seed int64) []candidate {
	return []candidate{
		{"GLM", linearLearner{}},
		{"GBM", gbmLearner{trees: 50, learningRate: 0.1, tree: treeParams{maxDepth: 3, minLeaf: 5}, seed: seed}},
		{"DRF", forestLearner{trees: 50, tree: treeParams{maxDepth: 12, minLeaf: 2, mtry: 2}, seed: seed + 1}},
		{"KNN", knnLearner{k: 10}},
		{"GBM", gbmLearner{trees: 100, learningRate: 0.05, tree: treeParams{maxDepth: 5, minLeaf: 10}, seed: seed + 2}},
		{"GLM", linearLearner{lambda: 0.1}},
		{"DRF", forestLearner{trees: 100, tree: treeParams{maxDepth: 8, minLeaf: 5, mtry: 3}, seed: seed + 3}},
		{"KNN", knnLearner{k: 25}},
		{"GBM", gbmLearner{trees: 200, learningRate: 0.05, tree: treeParams{maxDepth: 2, minLeaf: 10}, seed: seed + 4}},
		{"Mean", meanLearner{}},
		{"GBM", gbmLearner{trees: 150, learningRate: 0.1, tree: treeParams{maxDepth: 4, minLeaf: 20, mtry: 3}, seed: seed + 5}},
		{"DRF", forestLearner{trees: 25, tree: treeParams{maxDepth: 20, minLeaf: 1, mtry: 4}, seed: seed + 6}},
	}
}

// Search trains candidates under a model-count and wall-clock budget.
type Search struct {
	maxModels  int
	maxRuntime time.Duration
	seed       int64
	sortMetric string
	folds      int
	clock      clockwork.Clock
	runID      string
	logger     logger.Logger
	plan       func(seed int64) []candidate
}

// New constructs a Search with default configuration.
func New(opts ...Option) *Search {
	s := &Search{
		maxModels:  defaultMaxModels,
		maxRuntime: defaultMaxRuntime,
		seed:       defaultSeed,
		sortMetric: MetricRMSE,
		folds:      defaultFolds,
		clock:      clockwork.NewRealClock(),
		plan:       defaultPlan,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	if s.logger == nil {
		s.logger = logger.Named("automl")
	}
	return s
}

// SortMetric returns the metric the leaderboard is ordered by.
func (s *Search) SortMetric() string { return s.sortMetric }

// Result is the outcome of a search.
type Result struct {
	sortMetric string
	entries    []Entry
}

// Leader returns the best-ranked model.
func (r *Result) Leader() Model { return r.entries[0].Model }

// Entries returns the ranked candidates.
func (r *Result) Entries() []Entry { return append([]Entry(nil), r.entries...) }

// Leaderboard returns the ranked candidate table.
func (r *Result) Leaderboard() Leaderboard { return newLeaderboard(r.entries) }

// SortMetric returns the metric used for ranking.
func (r *Result) SortMetric() string { return r.sortMetric }

// Run trains candidates in plan order until MaxModels are built, the
// runtime budget elapses, or ctx is done. The budget never stops the first
// candidate, so a non-empty frame always yields a leader unless ctx is
// cancelled.
func (s *Search) Run(ctx context.Context, f *Frame) (*Result, error) {
	if f == nil || f.Len() == 0 {
		return nil, ErrEmptyFrame
	}
	start := s.clock.Now()
	deadline := start.Add(s.maxRuntime)
	folds := s.assignFolds(f.Len())
	counters := make(map[string]int)

	s.logger.Info(ctx, "model search started",
		logger.String("run_id", s.runID),
		logger.Int("rows", f.Len()),
		logger.Int("max_models", s.maxModels),
		logger.Duration("max_runtime", s.maxRuntime),
		logger.String("sort_metric", s.sortMetric),
	)

	var entries []Entry
	for _, c := range s.plan(s.seed) {
		if len(entries) >= s.maxModels {
			break
		}
		if len(entries) > 0 && !s.clock.Now().Before(deadline) {
			s.logger.Info(ctx, "runtime budget exhausted", logger.Int("models", len(entries)))
			break
		}
		if err := ctx.Err(); err != nil {
			if len(entries) == 0 {
				return nil, err
			}
			break
		}

		counters[c.algo]++
		id := fmt.Sprintf("%s_%d_AutoML_%s", c.algo, counters[c.algo], s.runID)
		entry, err := s.train(ctx, id, c, f, folds, deadline, len(entries) == 0)
		switch {
		case errors.Is(err, errBudget):
			s.logger.Info(ctx, "runtime budget exhausted during cross validation", logger.String("model_id", id))
		case err != nil && ctx.Err() != nil:
			if len(entries) == 0 {
				return nil, ctx.Err()
			}
			s.logger.Warn(ctx, "search interrupted", logger.Error(ctx.Err()))
		case err != nil:
			s.logger.Warn(ctx, "candidate failed", logger.String("model_id", id), logger.Error(err))
			continue
		default:
			entries = append(entries, entry)
			s.logger.Debug(ctx, "candidate trained",
				logger.String("model_id", id),
				logger.String("params", c.learner.params()),
				logger.Float64(s.sortMetric, entry.Metrics.metric(s.sortMetric)),
			)
			continue
		}
		break
	}
	if len(entries) == 0 {
		return nil, ErrNoModels
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return better(s.sortMetric, entries[a].Metrics.metric(s.sortMetric), entries[b].Metrics.metric(s.sortMetric))
	})

	s.logger.Info(ctx, "model search finished",
		logger.String("leader", entries[0].Model.ID()),
		logger.Int("models", len(entries)),
		logger.Duration("elapsed", s.clock.Since(start)),
	)
	return &Result{sortMetric: s.sortMetric, entries: entries}, nil
}

var errBudget = errors.New("runtime budget exhausted")

// train cross-validates a candidate and refits it on the whole frame.
// Unless exempt, the candidate is abandoned once the deadline passes.
func (s *Search) train(ctx context.Context, id string, c candidate, f *Frame, folds []int, deadline time.Time, exempt bool) (Entry, error) {
	began := s.clock.Now()
	oof := make([]float64, f.Len())
	k := 0
	for _, fold := range folds {
		k = max(k, fold+1)
	}

	if k < 2 {
		// Too few rows to hold any out; score on the training data.
		reg, err := c.learner.fit(ctx, f.X, f.Y)
		if err != nil {
			return Entry{}, err
		}
		for i, x := range f.X {
			oof[i] = reg.predict(x)
		}
		return s.entry(id, c, f, reg, oof, began), nil
	}

	for fold := 0; fold < k; fold++ {
		if !exempt && !s.clock.Now().Before(deadline) {
			return Entry{}, errBudget
		}
		var trainIdx, testIdx []int
		for i, assigned := range folds {
			if assigned == fold {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		xs, ys := take(f.X, f.Y, trainIdx)
		reg, err := c.learner.fit(ctx, xs, ys)
		if err != nil {
			return Entry{}, err
		}
		for _, i := range testIdx {
			oof[i] = reg.predict(f.X[i])
		}
	}

	if !exempt && !s.clock.Now().Before(deadline) {
		return Entry{}, errBudget
	}
	reg, err := c.learner.fit(ctx, f.X, f.Y)
	if err != nil {
		return Entry{}, err
	}
	return s.entry(id, c, f, reg, oof, began), nil
}

func (s *Search) entry(id string, c candidate, f *Frame, reg regressor, oof []float64, began time.Time) Entry {
	return Entry{
		Model: &trainedModel{
			id:       id,
			algo:     c.algo,
			params:   c.learner.params(),
			features: append([]string(nil), f.Columns...),
			reg:      reg,
		},
		Metrics:      score(oof, f.Y),
		TrainingTime: s.clock.Since(began).Milliseconds(),
	}
}

// assignFolds maps each row to a fold with a seeded permutation.
func (s *Search) assignFolds(n int) []int {
	k := min(s.folds, n)
	folds := make([]int, n)
	perm := rand.New(rand.NewSource(s.seed)).Perm(n) //nolint:gosec // reproducible fold assignment
	for i, row := range perm {
		if k < 2 {
			folds[row] = 0
			continue
		}
		folds[row] = i % k
	}
	return folds
}

// Evaluate scores a model against labeled rows.
func Evaluate(m Model, target string, rows []map[string]float64) (Metrics, error) {
	estimates := make([]float64, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		y, ok := row[target]
		if !ok {
			return Metrics{}, fmt.Errorf("row %d: %w: %s", i, ErrMissingColumn, target)
		}
		est, err := m.Predict(row)
		if err != nil {
			return Metrics{}, fmt.Errorf("row %d: %w", i, err)
		}
		estimates[i], values[i] = est, y
	}
	return score(estimates, values), nil
}
