// Package errors provides custom error types for the cryoscan system.
// These errors enable programmatic error checking and keep per-item
// failures (one path, one subtree, one file) distinguishable from
// configuration-level problems that must abort an operation.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the cryoscan system.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrVariableMissing indicates the requested variable is absent from a file
	ErrVariableMissing = errors.New("variable missing")

	// ErrDecode indicates a file failed to open or decode
	ErrDecode = errors.New("decode failed")

	// ErrList indicates a remote directory listing failed
	ErrList = errors.New("listing failed")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// DecodeError represents a failure to open or decode a scientific data file.
type DecodeError struct {
	URL      string
	Variable string
	Err      error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("decoding %s of %s: %v", e.Variable, e.URL, e.Err)
	}
	return fmt.Sprintf("decoding %s: %v", e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError creates a new DecodeError
func NewDecodeError(url, variable string, err error) *DecodeError {
	return &DecodeError{URL: url, Variable: variable, Err: err}
}

// VariableMissingError indicates the requested variable is not present
// in an otherwise readable file.
type VariableMissingError struct {
	Variable string
	URL      string
}

// Error implements the error interface
func (e *VariableMissingError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("variable %s not found in %s", e.Variable, e.URL)
	}
	return fmt.Sprintf("variable %s not found", e.Variable)
}

// Is implements errors.Is support
func (e *VariableMissingError) Is(target error) bool {
	return target == ErrVariableMissing
}

// ListError represents a failed remote directory listing. A ListError for
// an intermediate level of the store hierarchy is logged and the branch
// skipped; it never aborts a whole catalog build.
type ListError struct {
	Prefix string
	Err    error
}

// Error implements the error interface
func (e *ListError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Prefix, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ListError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ListError) Is(target error) bool {
	return target == ErrList
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "parquet", "yaml", "path", etc.
	Input   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("parse error in %s input %s: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error. Unlike the per-item error
// types above, a ConfigError crosses component boundaries and fails the
// whole operation.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsVariableMissing checks if an error indicates a missing variable
func IsVariableMissing(err error) bool {
	return errors.Is(err, ErrVariableMissing)
}

// IsDecode checks if an error is a decode error
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, input string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Input: input, Message: err.Error(), Err: err}
}

// WrapList wraps an error as a ListError
func WrapList(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return &ListError{Prefix: prefix, Err: err}
}
