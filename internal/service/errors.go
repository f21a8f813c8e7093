package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"dietcascade/portal-api/internal/validation"
)

// --- Error Definitions ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrProgressNotFound = errors.New("progress entry not found")
	ErrDietPlanNotFound = errors.New("diet plan not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAccessDenied     = errors.New("access denied")
)

// ValidationError reports rejected input, keyed by field. It is always
// returned before any store is touched.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// validateStruct runs the struct tags of in and converts failures into a ValidationError.
func validateStruct(v *validation.Validator, in interface{}) error {
	if err := v.Struct(in); err != nil {
		fields := validation.FormatValidationErrors(err)
		if len(fields) == 0 {
			return err
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

// StoreError wraps a data store or object store failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
