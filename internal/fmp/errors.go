package fmp

import (
	"errors"
	"fmt"
)

// CallError is a non-2xx response from the provider. It is recorded in the
// audit log before being returned and is never retried here.
type CallError struct {
	StatusCode int
	Reason     string
	Endpoint   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("FMP API call failed with status %d: %s", e.StatusCode, e.Reason)
}

// TransportError is a network-level fault: timeout, DNS failure, connection
// reset. Recorded as both a failed call and a High-severity exception.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("FMP request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a 2xx response whose body did not match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("FMP response decode failed for %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a network-level fault that may succeed
// on a later attempt.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
