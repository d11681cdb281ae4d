// Package errors provides custom error types for the coursemap system.
// These errors enable programmatic error checking with errors.Is and
// errors.As while keeping human-readable messages for the CLI.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Join returns an error wrapping the non-nil errors, or nil if there are none.
var Join = errors.Join

// Common sentinel errors for the coursemap system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record with the same identity already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials indicates a failed login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorageRead indicates the device key-value store could not be read or parsed
	ErrStorageRead = errors.New("storage read failure")

	// ErrStorageWrite indicates the device key-value store rejected a write
	ErrStorageWrite = errors.New("storage write failure")

	// ErrRemoteUnavailable indicates the remote document store could not be reached
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AlreadyExistsError represents a create that collided with an existing record
type AlreadyExistsError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with ID %s already exists", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// AuthenticationError represents a failed login or session lookup
type AuthenticationError struct {
	Email   string
	Message string
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	return e.Message
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(email, message string) *AuthenticationError {
	return &AuthenticationError{Email: email, Message: message}
}

// StorageError represents a failure of the device key-value store
type StorageError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StorageError) Is(target error) bool {
	switch e.Op {
	case "read":
		return target == ErrStorageRead
	case "write", "delete":
		return target == ErrStorageWrite
	}
	return false
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// RemoteError represents a failed call against the remote document store
type RemoteError struct {
	Collection string
	Op         string
	Err        error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(collection, op string, err error) *RemoteError {
	return &RemoteError{Collection: collection, Op: op, Err: err}
}

// ConfigError represents a configuration error
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

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out after %s", e.Operation, e.Duration)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration string) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidCredentials checks if an error is a failed login
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsStorageFailure checks if an error came from the device key-value store
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageRead) || errors.Is(err, ErrStorageWrite)
}

// IsRemoteUnavailable checks if an error indicates the remote store could not serve a call
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper wrapping functions for common patterns

// WrapStorage wraps an error as a StorageError
func WrapStorage(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return NewStorageError(op, key, err)
}

// WrapRemote wraps an error as a RemoteError
func WrapRemote(collection, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewRemoteError(collection, op, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
