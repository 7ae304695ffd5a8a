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
	// ErrNotFound is returned when a point read finds no document
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput is returned when a binding declaration violates a rule
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned when a required setting cannot be resolved
	ErrConfiguration = errors.New("configuration error")

	// ErrBindingResolution is returned when a template token has no value
	ErrBindingResolution = errors.New("binding resolution failed")

	// ErrTransport is returned when the underlying document service call fails
	ErrTransport = errors.New("transport error")

	// ErrIndexing is returned when a function cannot be registered with the host
	ErrIndexing = errors.New("function indexing failed")
)

// DocumentNotFoundError represents a point read that found nothing
type DocumentNotFoundError struct {
	Address      string
	PartitionKey string
}

func (e *DocumentNotFoundError) Error() string {
	if e.PartitionKey != "" {
		return fmt.Sprintf("document %q with partition key %s not found", e.Address, e.PartitionKey)
	}
	return fmt.Sprintf("document %q not found", e.Address)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an illegal attribute/type combination.
// Error returns Message verbatim; callers match on the exact rule text.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigurationError represents a setting that could not be resolved
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("%s (setting %q)", e.Message, e.Setting)
	}
	return e.Message
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// BindingResolutionError represents a {Field} or %Name% token with no value
type BindingResolutionError struct {
	Token    string
	Template string
}

func (e *BindingResolutionError) Error() string {
	return fmt.Sprintf("no value for named parameter %q in %q", e.Token, e.Template)
}

func (e *BindingResolutionError) Is(target error) bool {
	return target == ErrBindingResolution
}

// TransportError wraps a failed document service call
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IndexingError wraps the rule that stopped a function from being registered
type IndexingError struct {
	Function  string
	Parameter string
	Err       error
}

func (e *IndexingError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("error indexing function %q: cannot bind parameter %q: %v", e.Function, e.Parameter, e.Err)
	}
	return fmt.Sprintf("error indexing function %q: %v", e.Function, e.Err)
}

func (e *IndexingError) Is(target error) bool {
	return target == ErrIndexing
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(address, partitionKey string) error {
	return &DocumentNotFoundError{Address: address, PartitionKey: partitionKey}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(setting, message string) error {
	return &ConfigurationError{Setting: setting, Message: message}
}

// NewBindingResolutionError creates a new BindingResolutionError
func NewBindingResolutionError(token, template string) error {
	return &BindingResolutionError{Token: token, Template: template}
}

// NewTransportError creates a new TransportError
func NewTransportError(operation string, err error) error {
	return &TransportError{Operation: operation, Err: err}
}

// NewIndexingError creates a new IndexingError
func NewIndexingError(function, parameter string, err error) error {
	return &IndexingError{Function: function, Parameter: parameter, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsBindingResolution checks if an error is a binding resolution error
func IsBindingResolution(err error) bool {
	return errors.Is(err, ErrBindingResolution)
}

// IsTransport checks if an error is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsIndexing checks if an error is an indexing error
func IsIndexing(err error) bool {
	return errors.Is(err, ErrIndexing)
}
