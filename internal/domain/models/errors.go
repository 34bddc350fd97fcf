package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures against the aggregation API.
type ErrorKind string

const (
	ErrKindNetwork ErrorKind = "network" // request never reached the server
	ErrKindHTTP    ErrorKind = "http"    // server responded non-2xx
	ErrKindDecode  ErrorKind = "decode"  // body did not match the expected shape
)

// FetchError is a classified aggregation API failure. None are fatal: every
// fetch failure is recoverable by a later revalidation.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrKindHTTP:
		return fmt.Sprintf("aggregator: unexpected status %d", e.Status)
	case ErrKindDecode:
		return fmt.Sprintf("aggregator: decode response: %v", e.Err)
	default:
		return fmt.Sprintf("aggregator: request failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, or "unknown" for unclassified errors.
func KindOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return "unknown"
}
