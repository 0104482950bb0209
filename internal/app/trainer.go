// Package service turns fetched earthquake records into a trained model
// handle that the HTTP layer serves predictions from.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/quakeml/internal/domain/automl"
	"github.com/okian/quakeml/internal/domain/quake"
	"github.com/okian/quakeml/pkg/logger"
	"github.com/okian/quakeml/pkg/metrics"
)

// Trainer prepares the dataset and runs the model search.
type Trainer struct {
	seed         int64
	testFraction float64
	maxModels    int
	maxRuntime   time.Duration
	folds        int
	sortMetric   string
	clock        clockwork.Clock
	logger       logger.Logger
}

// NewTrainer constructs a Trainer with default configuration.
func NewTrainer(opts ...Option) *Trainer {
	t := &Trainer{
		seed:         42,
		testFraction: 0.2,
		maxModels:    10,
		maxRuntime:   60 * time.Second,
		folds:        5,
		sortMetric:   automl.MetricRMSE,
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Train drops incomplete records, splits the rest into training and holdout
// partitions, searches for the best model on the training partition and
// scores the leader on the holdout.
func (t *Trainer) Train(ctx context.Context, records []quake.Record) (*ModelHandle, error) {
	if t.logger == nil {
		t.logger = logger.Named("trainer")
	}
	began := t.clock.Now()

	samples := quake.DropIncomplete(records)
	dropped := len(records) - len(samples)
	metrics.RecordDroppedRecords(dropped)
	if dropped > 0 {
		t.logger.Info(ctx, "dropped incomplete records",
			logger.Int("dropped", dropped),
			logger.Int("kept", len(samples)),
		)
	}
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	train, holdout := quake.Split(samples, t.testFraction, t.seed)
	metrics.UpdateDatasetRows("train", len(train))
	metrics.UpdateDatasetRows("holdout", len(holdout))
	if len(train) == 0 {
		return nil, fmt.Errorf("%w: holdout consumed all %d samples", ErrNoData, len(samples))
	}

	frame, err := automl.NewFrame(quake.Features(), quake.Target, quake.Rows(train))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTraining, err)
	}

	search := automl.New(
		automl.WithSeed(t.seed),
		automl.WithMaxModels(t.maxModels),
		automl.WithMaxRuntime(t.maxRuntime),
		automl.WithFolds(t.folds),
		automl.WithSortMetric(t.sortMetric),
		automl.WithClock(t.clock),
		automl.WithLogger(t.logger.Named("automl")),
	)
	result, err := search.Run(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTraining, err)
	}

	var scored automl.Metrics
	if len(holdout) > 0 {
		scored, err = automl.Evaluate(result.Leader(), quake.Target, quake.Rows(holdout))
		if err != nil {
			return nil, fmt.Errorf("%w: holdout: %w", ErrTraining, err)
		}
	}

	entries := result.Entries()
	for _, e := range entries {
		metrics.RecordModelTrained(e.Model.Algo())
	}
	elapsed := t.clock.Since(began)
	metrics.RecordTraining(elapsed.Seconds(), entries[0].Metrics.RMSE)

	stats := Stats{
		Fetched:     len(records),
		Dropped:     dropped,
		TrainRows:   len(train),
		HoldoutRows: len(holdout),
		Models:      len(entries),
		LeaderID:    result.Leader().ID(),
		SortMetric:  result.SortMetric(),
		TrainedAt:   t.clock.Now(),
		Duration:    elapsed,
	}
	t.logger.Info(ctx, "model trained",
		logger.String("leader", stats.LeaderID),
		logger.Int("models", stats.Models),
		logger.Int("train_rows", stats.TrainRows),
		logger.Int("holdout_rows", stats.HoldoutRows),
		logger.Float64("holdout_rmse", scored.RMSE),
		logger.Float64("holdout_mae", scored.MAE),
		logger.Float64("holdout_r2", scored.R2),
		logger.Duration("took", elapsed),
	)

	return NewModelHandle(result, scored, stats), nil
}
