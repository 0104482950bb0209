package service

import "errors"

// Sentinel errors returned by the trainer and the model handle.
var (
	ErrNoData   = errors.New("no complete records to train on")
	ErrTraining = errors.New("model training failed")
	ErrNotReady = errors.New("model is not ready")
	ErrPredict  = errors.New("prediction failed")
)
