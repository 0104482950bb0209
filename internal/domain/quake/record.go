// Package quake models earthquake records and the feature schema the
// magnitude regressor is trained on.
package quake

import (
	"math"

	"github.com/paulmach/orb"
)

// Record is one earthquake as decoded from the feed. A nil field means the
// provider did not report that value.
type Record struct {
	Time      *float64 // seconds since epoch
	Magnitude *float64
	Longitude *float64
	Latitude  *float64
	Depth     *float64 // km
}

// Complete reports whether every field is present and finite.
func (r Record) Complete() bool {
	for _, v := range []*float64{r.Time, r.Magnitude, r.Longitude, r.Latitude, r.Depth} {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return false
		}
	}
	return true
}

// Sample is a complete record, the unit of training data.
type Sample struct {
	Time      float64
	Magnitude float64
	Longitude float64
	Latitude  float64
	Depth     float64
}

// Point returns the epicentre in lon/lat order.
func (s Sample) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// Row returns the feature and target values keyed by schema column name.
func (s Sample) Row() map[string]float64 {
	row := FeatureRow(s.Longitude, s.Latitude, s.Depth, s.Time)
	row[Target] = s.Magnitude
	return row
}

// DropIncomplete keeps only complete records, preserving order.
func DropIncomplete(records []Record) []Sample {
	out := make([]Sample, 0, len(records))
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		out = append(out, Sample{
			Time:      *r.Time,
			Magnitude: *r.Magnitude,
			Longitude: *r.Longitude,
			Latitude:  *r.Latitude,
			Depth:     *r.Depth,
		})
	}
	return out
}

// Rows converts samples into labeled rows.
func Rows(samples []Sample) []map[string]float64 {
	rows := make([]map[string]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Row()
	}
	return rows
}
