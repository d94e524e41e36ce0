/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a document or registered component is not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned when a slug or driver is unknown to the configuration
	ErrConfiguration = errors.New("configuration error")

	// ErrStorage is returned when the underlying storage driver fails
	ErrStorage = errors.New("storage error")

	// ErrTransactionNotFound is returned when a transaction id has no live transaction
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrForeignTransaction is returned when a transaction is used against a driver that did not open it
	ErrForeignTransaction = errors.New("transaction belongs to another driver")

	// ErrDriverNotFound is returned when an entity names a storage driver that is not configured
	ErrDriverNotFound = errors.New("storage driver not found")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigurationError represents a slug that the entity registry cannot resolve
type ConfigurationError struct {
	Slug   string
	Kind   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s %q: %s", e.Kind, e.Slug, e.Reason)
	}
	return fmt.Sprintf("%q: %s", e.Slug, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// StorageError wraps a failure reported by a storage driver
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %q failed: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(slug, kind, reason string) error {
	return &ConfigurationError{Slug: slug, Kind: kind, Reason: reason}
}

// NewStorageError creates a new StorageError
func NewStorageError(op, table string, err error) error {
	return &StorageError{Op: op, Table: table, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsStorage checks if an error was reported by a storage driver
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
