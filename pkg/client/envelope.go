package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoData is returned when decoding an envelope that carries no data
var ErrNoData = errors.New("response carries no data")

// Envelope is the backend response wrapper
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	Error     *APIError       `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Path      string          `json:"path,omitempty"`

	hasSuccess bool
}

// APIError is the structured error carried by failed envelopes
type APIError struct {
	Code    any             `json:"code,omitempty"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// DecodeData unmarshals the data payload into v
func (e *Envelope) DecodeData(v any) error {
	if e == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return ErrNoData
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// DecodeMeta unmarshals the meta payload into v. A missing meta is not an
// error; v is left untouched.
func (e *Envelope) DecodeMeta(v any) error {
	if e == nil || len(e.Meta) == 0 || string(e.Meta) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Meta, v); err != nil {
		return fmt.Errorf("failed to unmarshal meta: %w", err)
	}
	return nil
}

// parseEnvelope unwraps a response body. Bodies without a success flag
// (health probes, plain JSON) are treated as the data payload itself.
func parseEnvelope(body []byte) *Envelope {
	env := &Envelope{}
	if len(body) == 0 {
		return env
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		if json.Valid(body) {
			env.Data = json.RawMessage(body)
		} else {
			env.Message = string(body)
		}
		return env
	}

	if _, ok := probe["success"]; !ok {
		env.Data = json.RawMessage(body)
		if raw, ok := probe["message"]; ok {
			_ = json.Unmarshal(raw, &env.Message)
		}
		if raw, ok := probe["error"]; ok {
			env.Error = decodeAPIError(raw)
		}
		return env
	}

	if err := json.Unmarshal(body, env); err != nil {
		env.Data = json.RawMessage(body)
		return env
	}
	env.hasSuccess = true
	return env
}

// decodeAPIError accepts both the structured {code,message} object and a
// bare error string.
func decodeAPIError(raw json.RawMessage) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		return &apiErr
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return &APIError{Message: msg}
	}
	return nil
}
