package pncp

import (
	"errors"
	"fmt"
)

// ErrRetryExhausted is returned once every attempt of a fetch has failed.
// The last underlying failure is wrapped and reachable with errors.As.
var ErrRetryExhausted = errors.New("pncp: retry budget exhausted")

// StatusError reports a non-2xx response. Detail holds the API's structured
// error body when the response carried one.
type StatusError struct {
	StatusCode int
	Detail     *APIError
}

func (e *StatusError) Error() string {
	if e.Detail != nil && e.Detail.Message != "" {
		return fmt.Sprintf("pncp: unexpected status %d: %s", e.StatusCode, e.Detail.Message)
	}
	return fmt.Sprintf("pncp: unexpected status %d", e.StatusCode)
}

// ParseError reports a response body that did not match the page envelope.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pncp: parse response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
