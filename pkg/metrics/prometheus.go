// Package metrics provides Prometheus metrics for the quakeml service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Feed ingestion
	feedFetchDuration prometheus.Histogram
	feedRecords       prometheus.Counter
	feedRecordsDrop   prometheus.Counter

	// Training
	trainingDuration prometheus.Histogram
	modelsTrained    *prometheus.CounterVec
	leaderRMSE       prometheus.Gauge
	trainingRows     *prometheus.GaugeVec

	// Serving
	predictions      prometheus.Counter
	predictionErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the exposition limited to what we register.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(collectors.NewGoCollector())
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "quakeml",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.feedFetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_fetch_duration_seconds",
		Help:      "Duration of the seismic feed query.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	m.feedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_records_total",
		Help:      "Earthquake records decoded from the feed.",
	})
	m.feedRecordsDrop = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_records_dropped_total",
		Help:      "Records dropped before training because a field was missing.",
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Wall-clock duration of the model search.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
	m.modelsTrained = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "models_trained_total",
		Help:      "Candidate models trained by the search, by algorithm.",
	}, []string{"algo"})
	m.leaderRMSE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leader_rmse",
		Help:      "Cross-validated RMSE of the leader model.",
	})
	m.trainingRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows",
		Help:      "Rows in each partition of the training data.",
	}, []string{"partition"})

	m.predictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Successful magnitude predictions.",
	})
	m.predictionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_errors_total",
		Help:      "Rejected or failed prediction requests by kind.",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "HTTP responses with status >= 400 by endpoint, method and error type.",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordFeedFetch records one feed query and the number of records it returned.
func RecordFeedFetch(seconds float64, records int) {
	globalManager.feedFetchDuration.Observe(seconds)
	globalManager.feedRecords.Add(float64(records))
}

// RecordDroppedRecords adds to the dropped record counter.
func RecordDroppedRecords(n int) {
	globalManager.feedRecordsDrop.Add(float64(n))
}

// RecordTraining records a completed search.
func RecordTraining(seconds, leaderRMSE float64) {
	globalManager.trainingDuration.Observe(seconds)
	globalManager.leaderRMSE.Set(leaderRMSE)
}

// RecordModelTrained increments the trained model counter for algo.
func RecordModelTrained(algo string) {
	globalManager.modelsTrained.WithLabelValues(algo).Inc()
}

// UpdateDatasetRows sets the row count of a partition ("train", "holdout").
func UpdateDatasetRows(partition string, rows int) {
	globalManager.trainingRows.WithLabelValues(partition).Set(float64(rows))
}

// RecordPrediction increments the successful prediction counter.
func RecordPrediction() {
	globalManager.predictions.Inc()
}

// RecordPredictionError increments the prediction error counter for kind.
func RecordPredictionError(kind string) {
	globalManager.predictionErrors.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an HTTP response with an error status.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom registry backing /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
