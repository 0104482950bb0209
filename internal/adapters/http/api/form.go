package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/quakeml/internal/domain/quake"
)

// Prediction form field names.
const (
	FieldLongitude = "longitude"
	FieldLatitude  = "latitude"
	FieldDepth     = "depth"
	FieldTime      = "time_input"
)

// ValidationKind enumerates why a prediction form was rejected.
type ValidationKind int

// Validation kinds.
const (
	MissingField ValidationKind = iota + 1
	NonNumericField
	BadDateFormat
)

func (k ValidationKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case NonNumericField:
		return "non_numeric_field"
	case BadDateFormat:
		return "bad_date_format"
	default:
		return "unknown"
	}
}

// ValidationError names the offending field and what was wrong with it.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s: field is required", e.Field)
	case NonNumericField:
		return fmt.Sprintf("%s: %q is not a number", e.Field, e.Value)
	case BadDateFormat:
		return fmt.Sprintf("%s: %q does not match %s", e.Field, e.Value, timeFormatHint)
	default:
		return fmt.Sprintf("%s: invalid value %q", e.Field, e.Value)
	}
}

// timeFormatHint is the user-facing spelling of quake.TimeInputLayout.
const timeFormatHint = "YYYY-MM-DD HH:MM:SS"

// PredictionRequest is a validated prediction form.
type PredictionRequest struct {
	Longitude float64
	Latitude  float64
	Depth     float64
	Time      float64 // seconds since epoch, UTC
}

// Row returns the feature row under the names the model was trained with.
func (p PredictionRequest) Row() map[string]float64 {
	return quake.FeatureRow(p.Longitude, p.Latitude, p.Depth, p.Time)
}

// ParsePredictionForm validates the submitted fields in form order and
// reports the first problem found.
func ParsePredictionForm(form url.Values) (PredictionRequest, *ValidationError) {
	var req PredictionRequest
	numeric := []struct {
		field string
		dst   *float64
	}{
		{FieldLongitude, &req.Longitude},
		{FieldLatitude, &req.Latitude},
		{FieldDepth, &req.Depth},
	}
	for _, f := range numeric {
		raw := strings.TrimSpace(form.Get(f.field))
		if raw == "" {
			return PredictionRequest{}, &ValidationError{Kind: MissingField, Field: f.field}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return PredictionRequest{}, &ValidationError{Kind: NonNumericField, Field: f.field, Value: raw}
		}
		*f.dst = v
	}

	raw := strings.TrimSpace(form.Get(FieldTime))
	if raw == "" {
		return PredictionRequest{}, &ValidationError{Kind: MissingField, Field: FieldTime}
	}
	t, err := quake.ParseTimeInput(raw)
	if err != nil {
		return PredictionRequest{}, &ValidationError{Kind: BadDateFormat, Field: FieldTime, Value: raw}
	}
	req.Time = t
	return req, nil
}
