/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestDocumentNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "without partition key",
			expected: `document "dbs/ItemDb/colls/ItemCollection/docs/docid1" not found`,
		},
		{
			name:     "with partition key",
			key:      `["partkey3"]`,
			expected: `document "dbs/ItemDb/colls/ItemCollection/docs/docid1" with partition key ["partkey3"] not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDocumentNotFoundError("dbs/ItemDb/colls/ItemCollection/docs/docid1", tt.key)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !errors.Is(err, ErrNotFound) {
				t.Error("DocumentNotFoundError should match ErrNotFound")
			}

			if !IsNotFound(err) {
				t.Error("IsNotFound should return true for DocumentNotFoundError")
			}
		})
	}
}

func TestValidationErrorKeepsRuleVerbatim(t *testing.T) {
	msg := "'Id' cannot be specified when binding to an IEnumerable property."
	err := NewValidationError("Id", msg)

	if err.Error() != msg {
		t.Errorf("Expected error message %q, got %q", msg, err.Error())
	}

	if !IsValidationError(err) {
		t.Error("IsValidationError should return true for ValidationError")
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("MyConnection", "missing connection string")

	expected := `missing connection string (setting "MyConnection")`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsConfigurationError(err) {
		t.Error("IsConfigurationError should return true for ConfigurationError")
	}

	bare := NewConfigurationError("", "missing connection string")
	if bare.Error() != "missing connection string" {
		t.Errorf("Unexpected message %q", bare.Error())
	}
}

func TestBindingResolutionError(t *testing.T) {
	err := NewBindingResolutionError("OrderId", "{OrderId}")

	expected := `no value for named parameter "OrderId" in "{OrderId}"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsBindingResolution(err) {
		t.Error("IsBindingResolution should return true for BindingResolutionError")
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	err := NewTransportError("ReadDocument", io.ErrUnexpectedEOF)

	if !IsTransport(err) {
		t.Error("IsTransport should return true for TransportError")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("TransportError should unwrap to the driver error")
	}
}

func TestIndexingErrorWrapsRule(t *testing.T) {
	rule := NewValidationError("Id", "'Id' is required when binding to a JObject property.")
	err := NewIndexingError("ReadItem", "item", rule)

	expected := `error indexing function "ReadItem": cannot bind parameter "item": 'Id' is required when binding to a JObject property.`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsIndexing(err) || !IsValidationError(err) {
		t.Error("IndexingError should match both ErrIndexing and the wrapped rule")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != rule.Error() {
		t.Error("errors.As should reach the inner ValidationError")
	}
}

func TestErrorWrapping(t *testing.T) {
	original := NewDocumentNotFoundError("dbs/a/colls/b/docs/c", "")
	wrapped := fmt.Errorf("binding item: %w", original)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrConfiguration,
		ErrBindingResolution,
		ErrTransport,
		ErrIndexing,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
