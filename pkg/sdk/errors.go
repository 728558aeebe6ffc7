package coursedex

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the client. Use errors.Is() to check.
var (
	// ErrCircuitOpen is returned without issuing a request while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("coursedex: circuit breaker is open")

	// ErrTimeout is returned when a request exceeds the client timeout.
	ErrTimeout = errors.New("coursedex: request timed out")

	// ErrRequestSuperseded is returned when a request was canceled because
	// a newer request with the same key started.
	ErrRequestSuperseded = errors.New("coursedex: request superseded")
)

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string

	// body is the raw response for callers in this package that need more
	// than the envelope (degraded health reports).
	body []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coursedex: api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Retryable reports whether the error represents a transient server-side
// condition. Client errors (4xx) are never retryable.
func (e *APIError) Retryable() bool {
	return e.Status >= 500
}
