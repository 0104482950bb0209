package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	service "github.com/okian/quakeml/internal/app"
	"github.com/okian/quakeml/internal/domain/automl"
	"github.com/okian/quakeml/internal/domain/quake"
	"github.com/okian/quakeml/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.InitWithWriter(io.Discard, "text"); err != nil {
		panic(err)
	}
}

func ptr(v float64) *float64 { return &v }

// syntheticRecords returns n complete records whose magnitude grows with
// depth, followed by the given number of incomplete records.
func syntheticRecords(n, incomplete int) []quake.Record {
	base := float64(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC).Unix())
	out := make([]quake.Record, 0, n+incomplete)
	for i := 0; i < n; i++ {
		depth := float64(i%40) * 5
		out = append(out, quake.Record{
			Time:      ptr(base + float64(i)*3600),
			Magnitude: ptr(4 + depth/100),
			Longitude: ptr(120 + float64(i%17)),
			Latitude:  ptr(10 + float64(i%23)),
			Depth:     ptr(depth),
		})
	}
	for i := 0; i < incomplete; i++ {
		out = append(out, quake.Record{Time: ptr(base), Longitude: ptr(130), Latitude: ptr(20)})
	}
	return out
}

func newTrainer(opts ...service.Option) *service.Trainer {
	return service.NewTrainer(append([]service.Option{
		service.WithLogger(logger.NewNop()),
		service.WithMaxModels(3),
	}, opts...)...)
}

func TestTrainer_Train(t *testing.T) {
	Convey("Given 60 complete and 5 incomplete records", t, func() {
		records := syntheticRecords(60, 5)
		ctx := context.Background()

		Convey("When training with the default split", func() {
			h, err := newTrainer().Train(ctx, records)
			So(err, ShouldBeNil)

			Convey("Then incomplete records are dropped before the 80/20 split", func() {
				stats := h.Stats()
				So(stats.Fetched, ShouldEqual, 65)
				So(stats.Dropped, ShouldEqual, 5)
				So(stats.TrainRows, ShouldEqual, 48)
				So(stats.HoldoutRows, ShouldEqual, 12)
				So(stats.Models, ShouldEqual, 3)
				So(stats.SortMetric, ShouldEqual, automl.MetricRMSE)
			})

			Convey("And the handle is ready and reports the training features", func() {
				So(h.CheckReadiness(ctx), ShouldBeNil)
				So(h.Features(), ShouldResemble, []string{"longitude", "latitude", "depth", "time"})
				So(h.Leader().ID(), ShouldEqual, h.Stats().LeaderID)
			})

			Convey("And the leaderboard has one row per model with the leader first", func() {
				lb := h.Leaderboard()
				So(lb.Len(), ShouldEqual, 3)
				So(lb.Rows[0][0], ShouldEqual, h.Leader().ID())
			})

			Convey("And the holdout metrics are finite", func() {
				m := h.HoldoutMetrics()
				So(m.RMSE, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(m.RMSE, ShouldBeLessThan, 1.0)
			})

			Convey("And predictions use the training feature names", func() {
				v, err := h.Predict(ctx, quake.FeatureRow(130, 20, 100, 1.755e9))
				So(err, ShouldBeNil)
				So(v, ShouldBeBetween, 3.0, 6.0)

				_, err = h.Predict(ctx, map[string]float64{"longitude": 130, "latitude": 20, "depth": 100, "timestamp": 1.755e9})
				So(errors.Is(err, service.ErrPredict), ShouldBeTrue)
				So(errors.Is(err, automl.ErrMissingFeature), ShouldBeTrue)
			})
		})

		Convey("When training twice with the same seed", func() {
			a, err := newTrainer(service.WithSeed(7)).Train(ctx, records)
			So(err, ShouldBeNil)
			b, err := newTrainer(service.WithSeed(7)).Train(ctx, records)
			So(err, ShouldBeNil)

			Convey("Then the holdout scores agree", func() {
				So(a.HoldoutMetrics().RMSE, ShouldAlmostEqual, b.HoldoutMetrics().RMSE, 1e-12)
			})
		})
	})

	Convey("Given only incomplete records", t, func() {
		_, err := newTrainer().Train(context.Background(), syntheticRecords(0, 3))

		Convey("Then training fails with ErrNoData", func() {
			So(err, ShouldEqual, service.ErrNoData)
		})
	})

	Convey("Given a single complete record", t, func() {
		_, err := newTrainer().Train(context.Background(), syntheticRecords(1, 0))

		Convey("Then the holdout takes it and training fails", func() {
			So(errors.Is(err, service.ErrNoData), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTrainer().Train(ctx, syntheticRecords(30, 0))

		Convey("Then training fails with the context error", func() {
			So(errors.Is(err, service.ErrTraining), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a fake clock", t, func() {
		clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC))
		h, err := newTrainer(service.WithClock(clock), service.WithMaxModels(1)).Train(context.Background(), syntheticRecords(20, 0))
		So(err, ShouldBeNil)

		Convey("Then the training timestamp comes from it", func() {
			So(h.Stats().TrainedAt.Equal(clock.Now()), ShouldBeTrue)
		})
	})
}

func TestModelHandle_NotReady(t *testing.T) {
	Convey("Given a nil handle", t, func() {
		var h *service.ModelHandle
		ctx := context.Background()

		Convey("Then readiness and prediction report ErrNotReady", func() {
			So(h.CheckReadiness(ctx), ShouldEqual, service.ErrNotReady)
			_, err := h.Predict(ctx, quake.FeatureRow(1, 2, 3, 4))
			So(err, ShouldEqual, service.ErrNotReady)
			So(h.Features(), ShouldBeNil)
			So(h.Leaderboard().Len(), ShouldEqual, 0)
		})
	})
}
