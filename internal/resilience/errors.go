package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// TransientError marks an error as safe to retry, such as an HTTP 429 or
// 5xx from the provider.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient with an optional status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// Provider status codes are five digits: the HTTP class times 100 plus a
// detail code, e.g. 20000 ok, 40501 invalid field, 50000 internal error.
const statusClassServer = 50000

// StatusError is a non-ok status reported inside a 200 response, either on
// the envelope or on a single task.
type StatusError struct {
	Scope   string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Scope, e.Code, e.Message)
}

// Transient reports whether the provider failed on its side.
func (e *StatusError) Transient() bool {
	return e.Code >= statusClassServer
}

// IsTransient reports whether err, or any error in its chain, is worth
// retrying. Client-side provider statuses (4xxxx) such as an invalid target
// are permanent and never count against the upstream.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}

// IsTransientHTTPStatus reports whether a transport-level HTTP status is
// retryable.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
