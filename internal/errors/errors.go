// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeConfigurationMissing indicates an economy value was read before settings were attached
	TypeConfigurationMissing Type = "CONFIGURATION_MISSING"

	// TypePricingMissing indicates a shop or powder value was read before purchases were attached
	TypePricingMissing Type = "PRICING_MISSING"

	// TypeNoAffordableTier indicates no price table row fits the budget
	TypeNoAffordableTier Type = "NO_AFFORDABLE_TIER"

	// TypeLifecycle indicates a snapshot stage was attached twice
	TypeLifecycle Type = "LIFECYCLE_ERROR"

	// TypeNotFound indicates a stored record does not exist
	TypeNotFound Type = "NOT_FOUND"

	// TypeRateLimited indicates a client sent too many requests
	TypeRateLimited Type = "RATE_LIMITED"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasType reports whether the error is of type t
func (e *Error) HasType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType reports whether err, or any error it wraps, is a domain error of type t
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// ConfigurationMissing creates the error returned when settings are not attached
func ConfigurationMissing(accessor string) *Error {
	return Newf(TypeConfigurationMissing, "%s requires settings to be attached", accessor).
		WithContext("accessor", accessor)
}

// PricingMissing creates the error returned when shop purchases are not attached
func PricingMissing(accessor string) *Error {
	return Newf(TypePricingMissing, "%s requires shop purchases to be attached", accessor).
		WithContext("accessor", accessor)
}

// NoAffordableTier creates the error returned by a price table lookup that finds nothing
func NoAffordableTier(category string, budget string) *Error {
	return Newf(TypeNoAffordableTier, "no %s tier is affordable with %s quarks", category, budget).
		WithContext("category", category).
		WithContext("budget", budget)
}

// Lifecycle creates a lifecycle error
func Lifecycle(message string) *Error {
	return New(TypeLifecycle, message)
}

// NotFound creates the error returned when a stored record does not exist
func NotFound(kind, id string) *Error {
	return Newf(TypeNotFound, "%s %s not found", kind, id).
		WithContext(kind, id)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
