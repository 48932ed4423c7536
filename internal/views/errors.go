package views

import (
	"context"
	"errors"

	"uia-atlas/atlas-portal/internal/apiclient"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

// ErrorKind is how a failure is shown to the user.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	// ErrorUnauthorized sends the user back to the login screen.
	ErrorUnauthorized
	// ErrorNotFound is shown as a message with no retry.
	ErrorNotFound
	// ErrorValidation marks the offending fields; nothing was sent.
	ErrorValidation
	// ErrorFailure is a retryable banner. Prior data stays on screen.
	ErrorFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorUnauthorized:
		return "unauthorized"
	case ErrorNotFound:
		return "not_found"
	case ErrorValidation:
		return "validation"
	}
	return "failure"
}

// Retryable reports whether offering a retry makes sense.
func (k ErrorKind) Retryable() bool {
	return k == ErrorFailure
}

// ErrIllegalAction is returned when the review screen is asked for an
// action the current workflow status does not offer.
var ErrIllegalAction = errors.New("action not available for this project")

// Classify maps a controller or client error to its display kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, apiclient.ErrUnauthorized):
		return ErrorUnauthorized
	case errors.Is(err, apiclient.ErrNotFound):
		return ErrorNotFound
	case errors.Is(err, apiclient.ErrValidation),
		errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, workflows.ErrNoteRequired):
		return ErrorValidation
	}
	return ErrorFailure
}

// ViewError is the failure indicator a screen renders.
type ViewError struct {
	Kind ErrorKind
	Err  error
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
}

func newViewError(err error) *ViewError {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	ve := &ViewError{Kind: Classify(err), Err: err}
	var apiErr *apiclient.ValidationError
	var local catalog.ValidationErrors
	switch {
	case errors.As(err, &apiErr):
		ve.Fields = apiErr.Fields
	case errors.As(err, &local):
		ve.Fields = map[string]string(local)
	}
	return ve
}

func (e *ViewError) Error() string {
	return e.Err.Error()
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text for the failure.
func (e *ViewError) Message() string {
	switch e.Kind {
	case ErrorUnauthorized:
		return "Your session has expired. Please sign in again."
	case ErrorNotFound:
		return "The project could not be found."
	case ErrorValidation:
		return e.Err.Error()
	}
	return "Something went wrong. Please try again."
}
