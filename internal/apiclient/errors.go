package apiclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means the token is missing or no longer accepted.
	// The session has already been torn down when a call returns it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the project id or edit token is unknown.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is wrapped by an *APIError when the server refuses a
	// transition that is no longer legal.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports input the API (or the client, before sending)
// refused. Fields are keyed by canonical field name.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// APIError is a network or server failure. Nothing was applied locally and
// the caller may retry.
type APIError struct {
	Method     string
	Path       string
	StatusCode int // zero when the request never got a response
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Retryable() bool { return true }
