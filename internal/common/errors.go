package common

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError indicates invalid input data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UnauthorizedError indicates missing or invalid authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// UnavailableError indicates the mail transport failed its handshake and the
// service is refusing sends rather than incurring transport timeouts.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	if e.Message == "" {
		return "email service is not ready"
	}
	return e.Message
}

// NewUnavailableError creates a new UnavailableError.
func NewUnavailableError(message string) *UnavailableError {
	return &UnavailableError{Message: message}
}

// TransportError indicates a mail transport failure during a send attempt.
type TransportError struct {
	Operation string
	Message   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %s", e.Operation, e.Message)
}

// NewTransportError creates a new TransportError.
func NewTransportError(operation, message string) *TransportError {
	return &TransportError{Operation: operation, Message: message}
}
