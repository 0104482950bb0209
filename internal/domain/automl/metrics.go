package automl

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics are regression quality scores. RMSLE is NaN when any target or
// estimate is <= -1; R2 is NaN when the targets have no variance.
type Metrics struct {
	RMSE  float64
	MSE   float64
	MAE   float64
	RMSLE float64
	R2    float64
}

// score compares estimates against observed values.
func score(estimates, values []float64) Metrics {
	n := float64(len(values))
	if n == 0 {
		nan := math.NaN()
		return Metrics{RMSE: nan, MSE: nan, MAE: nan, RMSLE: nan, R2: nan}
	}

	var sse, sae, ssle float64
	logDefined := true
	for i, v := range values {
		d := estimates[i] - v
		sse += d * d
		sae += math.Abs(d)
		if estimates[i] <= -1 || v <= -1 {
			logDefined = false
			continue
		}
		ld := math.Log1p(estimates[i]) - math.Log1p(v)
		ssle += ld * ld
	}

	m := Metrics{
		MSE:   sse / n,
		MAE:   sae / n,
		RMSLE: math.NaN(),
		R2:    stat.RSquaredFrom(estimates, values, nil),
	}
	m.RMSE = math.Sqrt(m.MSE)
	if logDefined {
		m.RMSLE = math.Sqrt(ssle / n)
	}
	if math.IsInf(m.R2, 0) || stat.Variance(values, nil) == 0 {
		m.R2 = math.NaN()
	}
	return m
}

// metric returns the named score; unknown names yield NaN.
func (m Metrics) metric(name string) float64 {
	switch name {
	case MetricRMSE:
		return m.RMSE
	case MetricMSE:
		return m.MSE
	case MetricMAE:
		return m.MAE
	case MetricR2:
		return m.R2
	default:
		return math.NaN()
	}
}

// better reports whether a ranks ahead of b under the named metric.
// NaN always ranks last.
func better(metric string, a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	case metric == MetricR2:
		return a > b
	default:
		return a < b
	}
}
