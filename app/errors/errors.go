// Package errors provides structured application errors that carry metadata
// rendered as slog fields.
package errors

import (
	"errors"
	"log/slog"
	"maps"
	"sort"
)

// StructuredError enhances an error with structured metadata and a cause,
// which can be rendered as fields by slog.
type StructuredError struct {
	err      error
	metadata map[string]any
	cause    error
}

// Error implements the error interface.
func (e StructuredError) Error() string {
	return e.err.Error()
}

// Unwrap allows errors.Is and errors.As to work.
func (e StructuredError) Unwrap() []error {
	var errs []error
	if e.err != nil {
		errs = append(errs, e.err)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Cause returns the cause error of this error.
func (e StructuredError) Cause() error {
	return e.cause
}

// Metadata returns a copy of the metadata map.
func (e StructuredError) Metadata() map[string]any {
	if e.metadata == nil {
		return nil
	}
	result := make(map[string]any, len(e.metadata))
	maps.Copy(result, e.metadata)
	return result
}

// NewWith creates a new StructuredError from a message string with optional
// metadata.
func NewWith(msg string, fields ...any) *StructuredError {
	return With(errors.New(msg), fields...)
}

// NewWithCause creates a new StructuredError from a message string with a
// cause and optional metadata.
func NewWithCause(msg string, cause error, fields ...any) *StructuredError {
	return WithCause(errors.New(msg), cause, fields...)
}

// With adds metadata to an error. If the error is already a StructuredError,
// it merges the metadata. Otherwise, it creates a new StructuredError.
func With(err error, fields ...any) *StructuredError {
	return newStructured(err, nil, false, fields)
}

// WithCause creates a StructuredError with a cause and optional metadata.
func WithCause(err error, cause error, fields ...any) *StructuredError {
	return newStructured(err, cause, true, fields)
}

func newStructured(err, cause error, setCause bool, fields []any) *StructuredError {
	if len(fields)%2 != 0 {
		panic("an even number of fields is required")
	}

	metadata := make(map[string]any, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			panic("keys must be strings")
		}
		metadata[key] = fields[i+1]
	}

	if se, ok := err.(*StructuredError); ok {
		combined := make(map[string]any, len(se.metadata)+len(metadata))
		maps.Copy(combined, se.metadata)
		maps.Copy(combined, metadata) // newer metadata overwrites older
		if !setCause {
			cause = se.cause
		}
		return &StructuredError{err: se.err, metadata: combined, cause: cause}
	}

	return &StructuredError{err: err, metadata: metadata, cause: cause}
}

// Log logs an error using the default slog logger, extracting metadata if
// it's a StructuredError.
func Log(err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		slog.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	slog.Error(serr.Error(), args...)
}
