package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terra-clan/backoffice/pkg/client"
)

// ErrSubmitting is returned when a submit is already in flight
var ErrSubmitting = errors.New("form is already submitting")

// Mode selects between creating a new entity and editing an existing one
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// SubmitFunc sends the validated form value
type SubmitFunc[T any] func(ctx context.Context, data T) error

// Draft is the in-progress state of one entity form. A Draft is owned by
// one editor and is not safe for concurrent use.
//
// Errors is always the validator's output for FormData. Errors reported by
// the server are kept apart in ServerErrors.
type Draft[T any] struct {
	FormData     T
	Errors       Errors
	ServerErrors Errors
	Submitting   bool
	Mode       Mode
	EntityID   string

	initial  T
	validate Validator[T]
}

// NewDraft starts a draft from initial. The validator is picked once, here,
// from the mode.
func NewDraft[T any](mode Mode, entityID string, initial T, pick func(Mode) Validator[T]) *Draft[T] {
	if mode != ModeEdit {
		mode = ModeCreate
		entityID = ""
	}
	return &Draft[T]{
		FormData:     clone(initial),
		Errors:       Errors{},
		ServerErrors: Errors{},
		Mode:         mode,
		EntityID:     entityID,
		initial:      clone(initial),
		validate:     pick(mode),
	}
}

// Fixed adapts a mode independent validator for NewDraft
func Fixed[T any](v Validator[T]) func(Mode) Validator[T] {
	return func(Mode) Validator[T] { return v }
}

// SetField sets one field by its JSON name and clears that field's errors.
// Dotted names address nested objects ("salaryRange.currency"). Sibling
// fields are kept.
func (d *Draft[T]) SetField(name string, value any) error {
	raw, err := json.Marshal(d.FormData)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode form: %w", err)
	}

	parts := strings.Split(name, ".")
	node := doc
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", name, err)
	}

	d.FormData = next
	delete(d.Errors, name)
	delete(d.ServerErrors, name)
	return nil
}

// Update applies fn to the form data in place
func (d *Draft[T]) Update(fn func(*T)) {
	fn(&d.FormData)
}

// SetError records a field error reported by the server
func (d *Draft[T]) SetError(field, message string) {
	d.ServerErrors[field] = message
}

// FieldError returns the error shown for a field. Validation errors win
// over server errors.
func (d *Draft[T]) FieldError(field string) string {
	if msg, ok := d.Errors[field]; ok {
		return msg
	}
	return d.ServerErrors[field]
}

// ClearErrors drops every field error
func (d *Draft[T]) ClearErrors() {
	d.Errors = Errors{}
	d.ServerErrors = Errors{}
}

// Validate runs the validator, replacing Errors. ServerErrors are kept.
func (d *Draft[T]) Validate() bool {
	d.Errors = d.validate(d.FormData)
	if d.Errors == nil {
		d.Errors = Errors{}
	}
	return len(d.Errors) == 0
}

// Hydrate loads an existing entity's values into the draft
func (d *Draft[T]) Hydrate(data T) {
	d.FormData = data
	d.ClearErrors()
}

// Reset returns the draft to its initial values
func (d *Draft[T]) Reset() {
	d.FormData = clone(d.initial)
	d.ClearErrors()
	d.Submitting = false
}

// Submit validates the draft and hands it to fn. Field errors from the
// server replace ServerErrors.
func (d *Draft[T]) Submit(ctx context.Context, fn SubmitFunc[T]) error {
	if d.Submitting {
		return ErrSubmitting
	}
	if !d.Validate() {
		return client.NewValidationError("Please fix the errors in the form", d.Errors)
	}

	d.Submitting = true
	defer func() { d.Submitting = false }()
	d.ServerErrors = Errors{}

	if err := fn(ctx, d.FormData); err != nil {
		apiErr := client.Normalize(err)
		for field, msg := range apiErr.Fields {
			d.ServerErrors[field] = msg
		}
		slog.Debug("form submit failed", "mode", d.Mode, "entity_id", d.EntityID, "error", err)
		return apiErr
	}
	return nil
}

// clone deep copies v so edits to the draft never reach the initial value
func clone[T any](v T) T {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
