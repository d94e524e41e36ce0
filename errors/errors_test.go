/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("posts", "123")

	expected := `posts with key "123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "limit",
			message:  "must not be negative",
			expected: `validation failed for field "limit": must not be negative`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing slug",
			expected: "validation failed: missing slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("pages", "collection", "not registered")

	expected := `collection "pages": not registered`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConfiguration(err) {
		t.Error("IsConfiguration should return true for ConfigurationError")
	}

	if IsNotFound(err) {
		t.Error("ConfigurationError must not match ErrNotFound")
	}
}

func TestStorageError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewStorageError("find", "posts", cause)

	expected := `find on "posts" failed: context deadline exceeded`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsStorage(err) {
		t.Error("IsStorage should return true for StorageError")
	}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("StorageError should unwrap to the driver error")
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewConfigurationError("settings", "global", "not registered")
	wrapped := fmt.Errorf("resolve failed: %w", original)

	if !IsConfiguration(wrapped) {
		t.Error("IsConfiguration should work with wrapped errors")
	}

	var cfgErr *ConfigurationError
	if !errors.As(wrapped, &cfgErr) || cfgErr.Slug != "settings" {
		t.Errorf("Expected to unwrap ConfigurationError for settings, got %v", cfgErr)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrConfiguration,
		ErrStorage,
		ErrTransactionNotFound,
		ErrForeignTransaction,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
