package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.predictions.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_predictions_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording predictions", func() {
			before := testutil.ToFloat64(globalManager.predictions)
			RecordPrediction()

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.predictions), ShouldEqual, before+1)
			})
		})

		Convey("When recording a prediction error kind", func() {
			c := globalManager.predictionErrors.WithLabelValues("bad_date_format")
			before := testutil.ToFloat64(c)
			RecordPredictionError("bad_date_format")

			Convey("Then only that label advances", func() {
				So(testutil.ToFloat64(c), ShouldEqual, before+1)
			})
		})

		Convey("When recording training", func() {
			RecordTraining(1.5, 0.42)
			RecordModelTrained("GBM")
			UpdateDatasetRows("train", 80)

			Convey("Then gauges reflect the latest values", func() {
				So(testutil.ToFloat64(globalManager.leaderRMSE), ShouldEqual, 0.42)
				So(testutil.ToFloat64(globalManager.trainingRows.WithLabelValues("train")), ShouldEqual, 80.0)
			})
		})

		Convey("Then the remaining recorders do not panic", func() {
			So(func() {
				RecordFeedFetch(0.3, 12)
				RecordDroppedRecords(2)
				RecordHTTPRequest("predict", "POST", "200")
				RecordHTTPRequestDuration("predict", "POST", "200", 3)
				RecordHTTPError("predict", "POST", "client_error")
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
