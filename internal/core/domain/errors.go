package domain

import (
	"errors"
	"fmt"
)

// ErrNotReady signals that the routing service has not finished loading its
// graph. Non-fatal: the caller waits and retries on the next readiness edge.
var ErrNotReady = errors.New("routing service not ready")

// ErrBusy signals that another remote-triggering action is still in flight.
// Advisory only; callers are expected to gate at the entry point.
var ErrBusy = errors.New("another operation is in progress")

// ValidationError reports a missing or malformed local field. It blocks the
// remote call before it is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteClientError is a definitive 4xx from a collaborator: the operation
// was rejected and the user must correct their input.
type RemoteClientError struct {
	Status int
	Body   string
}

func (e *RemoteClientError) Error() string {
	return fmt.Sprintf("remote rejected request (%d): %s", e.Status, e.Body)
}

// RemoteServerError is a definitive 5xx from a collaborator: transient, the
// user may retry.
type RemoteServerError struct {
	Status int
	Body   string
}

func (e *RemoteServerError) Error() string {
	return fmt.Sprintf("remote failed (%d): %s", e.Status, e.Body)
}

// NetworkError means no response was observed (timeout, connection loss).
// The outcome of the request is ambiguous: it may have been applied
// server-side.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: no response: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponse means the collaborator answered with an unexpected shape.
// Callers normalize it to an empty result rather than crashing rendering.
type MalformedResponse struct {
	Op     string
	Detail string
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Detail)
}

// IsAmbiguousOutcome reports whether the request may have been applied even
// though the client never saw a response.
func IsAmbiguousOutcome(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
