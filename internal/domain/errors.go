package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBusy         = errors.New("submission already in progress")
	ErrEmptyPayload = errors.New("backend returned an empty body")
)

// ValidationError is raised before any network call, e.g. when no file is selected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError covers unreachable backends, non-2xx statuses and empty bodies.
type TransportError struct {
	StatusCode int    // 0 when no response was received
	Detail     string // error reported by the backend, if any
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.Detail)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("backend responded with status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProcessingError is what the user sees when a submission fails. The cause is
// kept for diagnostics only.
type ProcessingError struct {
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
