package quake

import (
	"fmt"
	"strings"
	"time"
)

// Column names. The same names are used when training and when assembling a
// row for prediction.
const (
	ColLongitude = "longitude"
	ColLatitude  = "latitude"
	ColDepth     = "depth"
	ColTime      = "time"

	Target = "magnitude"
)

// TimeInputLayout is the accepted form of user-supplied times.
const TimeInputLayout = "2006-01-02 15:04:05"

// Features returns the ordered feature columns.
func Features() []string {
	return []string{ColLongitude, ColLatitude, ColDepth, ColTime}
}

// FeatureRow assembles one prediction row. t is seconds since epoch.
func FeatureRow(longitude, latitude, depth, t float64) map[string]float64 {
	return map[string]float64{
		ColLongitude: longitude,
		ColLatitude:  latitude,
		ColDepth:     depth,
		ColTime:      t,
	}
}

// ParseTimeInput parses "YYYY-MM-DD HH:MM:SS" as UTC and returns seconds since epoch.
func ParseTimeInput(s string) (float64, error) {
	t, err := time.ParseInLocation(TimeInputLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return 0, fmt.Errorf("time %q does not match format YYYY-MM-DD HH:MM:SS", s)
	}
	return float64(t.Unix()), nil
}
