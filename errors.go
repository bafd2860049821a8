package printone

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	ErrRequestFailed           = errors.New("printone: request failed")
	ErrBadRequest              = errors.New("printone: bad request")
	ErrUnauthorized            = errors.New("printone: unauthorized")
	ErrNotFound                = errors.New("printone: not found")
	ErrServerError             = errors.New("printone: server error")
	ErrTimeout                 = errors.New("printone: timeout reached")
	ErrValidation              = errors.New("printone: validation failed")
	ErrTemplateNotLoaded       = errors.New("printone: template not loaded")
	ErrInvalidWebhookSignature = errors.New("printone: invalid webhook signature")
	ErrUnknownWebhookEvent     = errors.New("printone: unknown webhook event")
	ErrNotImplemented          = errors.New("printone: not implemented")
)

// APIError is returned for every response with a status code of 400 or higher.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Method == "" {
		return fmt.Sprintf("printone: api error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("printone: %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is maps the status code onto the sentinel kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrServerError:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// TimeoutError is returned when a polling budget runs out without success.
type TimeoutError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("printone: %s: timeout reached after %d attempts", e.Op, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.Last }

// ValidationError describes a request payload rejected before it was sent.
type ValidationError struct {
	Op     string
	Fields []FieldError
	Cause  error
}

// FieldError names a single rejected field.
type FieldError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("printone: %s: invalid request: %v", e.Op, e.Cause)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return fmt.Sprintf("printone: %s: invalid fields: %s", e.Op, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Cause }

// UnknownWebhookEventError is returned when a webhook body carries an event
// this package does not know how to decode.
type UnknownWebhookEventError struct {
	Event string
}

func (e *UnknownWebhookEventError) Error() string {
	return fmt.Sprintf("printone: unknown webhook event %q", e.Event)
}

func (e *UnknownWebhookEventError) Is(target error) bool { return target == ErrUnknownWebhookEvent }

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
