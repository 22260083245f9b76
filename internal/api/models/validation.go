package models

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Validator collects field errors for one request body.
type Validator struct {
	errs []FieldError
}

// Add records a field error.
func (v *Validator) Add(field, code, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message, Code: code})
}

// Check records a field error when ok is false.
func (v *Validator) Check(ok bool, field, code, message string) {
	if !ok {
		v.Add(field, code, message)
	}
}

// Required records an error when value is blank.
func (v *Validator) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "REQUIRED", "is required")
		return false
	}
	return true
}

// MaxLen records an error when value is longer than n characters.
func (v *Validator) MaxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, "TOO_LONG", fmt.Sprintf("must be at most %d characters", n))
	}
}

// MinLen records an error when value is shorter than n characters.
func (v *Validator) MinLen(field, value string, n int) {
	if utf8.RuneCountInString(value) < n {
		v.Add(field, "TOO_SHORT", fmt.Sprintf("must be at least %d characters", n))
	}
}

// Email records an error when value is not a bare email address.
func (v *Validator) Email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "INVALID_EMAIL", "must be a valid email address")
	}
}

// Positive records an error when id is not a positive identifier.
func (v *Validator) Positive(field string, id int64) {
	if id <= 0 {
		v.Add(field, "REQUIRED", "must be a positive id")
	}
}

// Err returns a *ValidationError when any field failed, nil otherwise.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}
