package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FallbackMessage is shown when neither the error object nor the envelope
// carries a message
const FallbackMessage = "An unexpected error occurred."

// Kind is the closed set of failures UI-facing code handles
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindAuth       Kind = "auth"
)

// Error is the normalized API failure
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	// Fields holds per-field messages for validation failures
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("API error: %d - %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a validation failure from per-field messages
func NewValidationError(message string, fields map[string]string) *Error {
	if message == "" {
		message = "Validation failed"
	}
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Normalize maps any error onto the closed error kinds. Context
// cancellation and unknown errors become transport failures.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	msg := FallbackMessage
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "Request timed out"
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// Message returns the human message for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	return Normalize(err).Message
}

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func errorFromResponse(status int, env *Envelope) *Error {
	e := &Error{
		Status:  status,
		Message: messageFrom(env),
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	default:
		e.Kind = KindTransport
	}

	if env != nil && env.Error != nil {
		e.Code = codeString(env.Error.Code)
		e.Fields = fieldErrors(env.Error.Details)
	}
	if e.Code == "" {
		e.Code = http.StatusText(status)
	}

	return e
}

// messageFrom applies the precedence error.message, message, fallback
func messageFrom(env *Envelope) string {
	if env == nil {
		return FallbackMessage
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if env.Message != "" {
		return env.Message
	}
	return FallbackMessage
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprint(v)
	}
}

// fieldErrors reads validation details shaped either as {"field": "msg"}
// or as [{"field": "...", "message": "..."}].
func fieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var byField map[string]string
	if err := json.Unmarshal(raw, &byField); err == nil && len(byField) > 0 {
		return byField
	}

	var list []struct {
		Field    string `json:"field"`
		Property string `json:"property"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil
	}

	out := make(map[string]string, len(list))
	for _, item := range list {
		name := item.Field
		if name == "" {
			name = item.Property
		}
		if name == "" {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = item.Message
		}
	}
	return out
}
