package automl

import "errors"

// Sentinel kinds for AutoML errors.
var (
	ErrEmptyFrame     = errors.New("training frame is empty")
	ErrMissingColumn  = errors.New("row is missing a frame column")
	ErrMissingFeature = errors.New("row is missing a trained feature")
	ErrInvalidValue   = errors.New("row contains a non-finite value")
	ErrFit            = errors.New("model fit failed")
	ErrNoModels       = errors.New("no model finished within the budget")
)
