package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error surfaced by the engine matches exactly one of
// these through errors.Is.
var (
	ErrNotFound             = errors.New("job not found")
	ErrValidation           = errors.New("validation failed")
	ErrInvalidNote          = fmt.Errorf("%w: note text is empty", ErrValidation)
	ErrTransitionInProgress = errors.New("stage transition already in progress")
	ErrUnauthenticated      = errors.New("session is not authenticated")
	ErrForbidden            = errors.New("request forbidden")
	ErrNetworkUnavailable   = errors.New("network unavailable")
	ErrRemoteRejected       = errors.New("remote rejected the request")
	ErrReadOnly             = errors.New("board is in read-only mode")
	ErrNoSession            = errors.New("no active session")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func joinValidation(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return errors.Join(errs...)
}

// RemoteError carries the HTTP details of a failed remote call.
// Kind is one of the sentinel errors above.
type RemoteError struct {
	Kind    error
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Kind }

// KindForStatus maps an HTTP status code onto the error taxonomy.
func KindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRemoteRejected
	}
}
