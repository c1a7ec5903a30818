package errorx

import (
	"fmt"

	"github.com/amoylab/catalog/internal/common/cnst"
)

// ReasonRequired marks a FieldError for a missing value
const ReasonRequired = "required"

// FieldError reports a problem with one input field.
// Err is the sentinel it matches; cnst.ErrInvalidInput when nil.
type FieldError struct {
	Field  string
	Reason string
	Value  any
	Err    error
}

// NewFieldError returns a validation error for field
func NewFieldError(field, reason string, value any) *FieldError {
	return &FieldError{Field: field, Reason: reason, Value: value}
}

// Required returns a validation error for a missing field
func Required(field string) *FieldError {
	return &FieldError{Field: field, Reason: ReasonRequired}
}

// Duplicate returns a conflict on a unique field
func Duplicate(field string, value any) *FieldError {
	return &FieldError{Field: field, Reason: "already exists", Value: value, Err: cnst.ErrConflict}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	if e.Err == nil {
		return cnst.ErrInvalidInput
	}
	return e.Err
}

// ErrorDetails exposes the field to API error rendering
func (e *FieldError) ErrorDetails() map[string]any {
	d := map[string]any{"field": e.Field, "reason": e.Reason}
	if e.Value != nil {
		d["value"] = e.Value
	}
	return d
}

// resourceError names the kind of resource an error is about
type resourceError struct {
	kind string
	err  error
}

// WithResource tags err with the resource kind it concerns
func WithResource(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &resourceError{kind: kind, err: err}
}

func (e *resourceError) Error() string { return e.kind + ": " + e.err.Error() }

func (e *resourceError) Unwrap() error { return e.err }

func (e *resourceError) ErrorDetails() map[string]any {
	return map[string]any{"resource_type": e.kind}
}
