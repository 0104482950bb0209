package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrRequest = errors.New("feed request failed")
	ErrStatus  = errors.New("feed returned non-200 status")
	ErrDecode  = errors.New("feed response malformed")
)
