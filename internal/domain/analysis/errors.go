package analysis

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned when a caller already has an analysis
// outstanding; a new one may not start until it settles.
var ErrInFlight = errors.New("analysis already in flight")

// RemoteError is an HTTP-level failure reported by the analysis
// endpoint: a response arrived, but with an error status.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote analysis error: status %d: %s", e.Status, e.Message)
}

// TransportError means no usable response arrived at all: network
// unreachable, timeout, connection reset. Transport failures are the
// only retryable class.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analysis transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ParseError means the model's reply was not valid JSON at all. The
// original raw text is preserved for diagnostics.
type ParseError struct {
	RawText string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("analysis response is not valid JSON: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SchemaError means the reply parsed as JSON but a required field is
// missing or mistyped. Field names exactly which one.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("analysis response schema violation: field %q %s", e.Field, e.Reason)
}
