package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/quakeml/internal/domain/automl"
	"github.com/okian/quakeml/pkg/metrics"
)

// Stats summarises how a handle was built.
type Stats struct {
	Fetched     int
	Dropped     int
	TrainRows   int
	HoldoutRows int
	Models      int
	LeaderID    string
	SortMetric  string
	TrainedAt   time.Time
	Duration    time.Duration
}

// ModelHandle serves predictions from the search leader. It is read-only
// after construction and safe for concurrent use.
type ModelHandle struct {
	leader      automl.Model
	leaderboard automl.Leaderboard
	holdout     automl.Metrics
	stats       Stats
}

// NewModelHandle wraps a search result.
func NewModelHandle(result *automl.Result, holdout automl.Metrics, stats Stats) *ModelHandle {
	return &ModelHandle{
		leader:      result.Leader(),
		leaderboard: result.Leaderboard(),
		holdout:     holdout,
		stats:       stats,
	}
}

// Predict estimates the magnitude for one feature row.
func (h *ModelHandle) Predict(ctx context.Context, row map[string]float64) (float64, error) {
	if err := h.CheckReadiness(ctx); err != nil {
		metrics.RecordPredictionError("not_ready")
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := h.leader.Predict(row)
	if err != nil {
		metrics.RecordPredictionError("model")
		return 0, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	metrics.RecordPrediction()
	return v, nil
}

// Leaderboard returns the ranked table of every trained model.
func (h *ModelHandle) Leaderboard() automl.Leaderboard {
	if h == nil {
		return automl.Leaderboard{}
	}
	return h.leaderboard
}

// Features returns the feature names the leader expects.
func (h *ModelHandle) Features() []string {
	if h == nil || h.leader == nil {
		return nil
	}
	return h.leader.Features()
}

// Leader returns the model predictions are served from.
func (h *ModelHandle) Leader() automl.Model { return h.leader }

// HoldoutMetrics returns the leader's scores on the holdout partition.
func (h *ModelHandle) HoldoutMetrics() automl.Metrics { return h.holdout }

// Stats returns dataset and training statistics.
func (h *ModelHandle) Stats() Stats { return h.stats }

// CheckReadiness returns ErrNotReady until a leader is present.
func (h *ModelHandle) CheckReadiness(context.Context) error {
	if h == nil || h.leader == nil {
		return ErrNotReady
	}
	return nil
}
