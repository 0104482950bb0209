package probe

import (
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/quakeml/internal/domain/quake"
)

// Form is one prediction submission.
type Form struct {
	Longitude float64
	Latitude  float64
	Depth     float64
	Time      string
	// Valid reports whether the service should accept the form.
	Valid bool
}

// Values encodes the form as the service expects it.
func (f Form) Values() url.Values {
	return url.Values{
		"longitude":  {strconv.FormatFloat(f.Longitude, 'f', 4, 64)},
		"latitude":   {strconv.FormatFloat(f.Latitude, 'f', 4, 64)},
		"depth":      {strconv.FormatFloat(f.Depth, 'f', 2, 64)},
		"time_input": {f.Time},
	}
}

// Generation bounds, matching the default training region and window.
var (
	windowStart = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	windowSpan  = 31 * 24 * time.Hour
)

const (
	minLongitude, maxLongitude = 25.0, 180.0
	minLatitude, maxLatitude   = -1.0, 80.0
	maxDepth                   = 700.0
)

// GenerateForms returns n forms. Roughly invalidFraction of them carry a
// malformed time.
func GenerateForms(n int, invalidFraction float64, seed int64) []Form {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible load
	forms := make([]Form, n)
	for i := range forms {
		at := windowStart.Add(time.Duration(rng.Int63n(int64(windowSpan))))
		f := Form{
			Longitude: minLongitude + rng.Float64()*(maxLongitude-minLongitude),
			Latitude:  minLatitude + rng.Float64()*(maxLatitude-minLatitude),
			Depth:     rng.Float64() * maxDepth,
			Time:      at.Format(quake.TimeInputLayout),
			Valid:     true,
		}
		if rng.Float64() < invalidFraction {
			f.Time = at.Format(time.RFC3339)
			f.Valid = false
		}
		forms[i] = f
	}
	return forms
}
