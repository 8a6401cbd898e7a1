package shortener

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidURL         = errors.New("invalid url")
	ErrInvalidValidity    = errors.New("invalid validity")
	ErrInvalidCodeFormat  = errors.New("invalid short code format")
	ErrCodeCollision      = errors.New("short code already in use")
	ErrNotFound           = errors.New("short url not found")
	ErrExpired            = errors.New("short url has expired")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEmptyBatch         = errors.New("batch contains no submissions")
	ErrBatchTooLarge      = errors.New("batch exceeds maximum size")
	ErrBatchAborted       = errors.New("batch aborted before this submission")
)

// Submission field names, as reported in Violations.
const (
	FieldOriginalURL = "originalUrl"
	FieldValidity    = "validityMinutes"
	FieldCustomCode  = "customCode"
)

// Violations maps a submission field to the rule it broke. An empty map means the submission is valid.
type Violations map[string]error

// Fields returns the violated field names in a stable order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// Messages renders each violation as text keyed by field.
func (v Violations) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Error()
	}

	return out
}

// ValidationError is returned by Create when a submission is rejected.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, field := range e.Violations.Fields() {
		parts = append(parts, field+": "+e.Violations[field].Error())
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes every violation so errors.Is matches any of them.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Violations))
	for _, field := range e.Violations.Fields() {
		errs = append(errs, e.Violations[field])
	}

	return errs
}
