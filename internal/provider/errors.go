// Package provider holds the shared plumbing for calls to external services: a typed error,
// bounded retry with backoff, and a rate-limited JSON HTTP client.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error is a failed call to an external provider (embeddings, chat model, vector store).
type Error struct {
	Provider   string
	Op         string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Retryable  bool
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable
}

// IsNotFound reports whether err is a provider response with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status of a provider error, or 0.
func StatusCode(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
