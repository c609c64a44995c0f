package validation

import (
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/beankit/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects failed checks so a caller can report every problem
// with a definition or config section at once.
type Validator struct {
	fields []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failed check.
func (v *Validator) AddError(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool      { return len(v.fields) > 0 }
func (v *Validator) Errors() []FieldError { return v.fields }

// Custom records message for field unless ok holds.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Required rejects empty and blank strings.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// NotNil rejects nil and typed nil values (func, pointer, interface, map,
// slice, chan).
func (v *Validator) NotNil(field string, value any) *Validator {
	return v.Custom(!isNil(value), field, "is required")
}

// OptionalUUID rejects a non-empty value that does not parse as a UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	_, err := uuid.Parse(value)
	return v.Custom(err == nil, field, "must be a valid UUID")
}

// Validate returns the collected failures as one INVALID_INPUT error with
// the field list under the "fields" detail, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	parts := make([]string, len(v.fields))
	for i, f := range v.fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", v.fields)
}

// Err is Validate as a plain error, nil when every check passed.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

