package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Backends wrap every failure so that errors.Is classifies it
// as exactly one of these.
var (
	// ErrAuth means the credential is missing, invalid or expired.
	ErrAuth = errors.New("not authenticated")

	// ErrNotFound means the task no longer exists on the store.
	ErrNotFound = errors.New("task not found")

	// ErrTransport covers network failures, server errors and rejected requests.
	ErrTransport = errors.New("backend error")
)

// RemoteError is a classified failure reported by a remote store.
type RemoteError struct {
	Kind    error  // ErrAuth, ErrNotFound or ErrTransport
	Status  int    // HTTP status, 0 for network failures
	Message string // server supplied message, if any
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	return msg
}

// Unwrap returns the error kind.
func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// FieldError is one failed field-level rule.
type FieldError struct {
	Field string // json name of the field, e.g. "title" or "tags[1]"
	Code  string // e.g. "required", "too_short", "invalid_choice", "invalid_date"
	Param string // rule parameter, e.g. the minimum length
}

func (fe FieldError) String() string {
	if fe.Param != "" {
		return fmt.Sprintf("%s: %s (%s)", fe.Field, fe.Code, fe.Param)
	}
	return fmt.Sprintf("%s: %s", fe.Field, fe.Code)
}

// ValidationError blocks a command before anything is sent to the store.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		parts[i] = fe.String()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Has reports whether field failed with code.
func (e *ValidationError) Has(field, code string) bool {
	for _, fe := range e.Fields {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}
