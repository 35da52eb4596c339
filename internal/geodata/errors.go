package geodata

import "errors"

// Sentinel errors shared by all provider clients. Callers classify
// failures with errors.Is rather than inspecting transport detail.
var (
	// ErrInvalidInput marks a malformed caller-supplied argument.
	// It is always returned before any network call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a place that genuinely resolved to nothing.
	ErrNotFound = errors.New("place not found")

	// ErrUnavailable marks a network error, timeout, 5xx response or
	// malformed body from an upstream service. It is distinct from an
	// empty result, which is a valid outcome.
	ErrUnavailable = errors.New("provider unavailable")
)
