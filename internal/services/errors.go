package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorFormInactive ErrorCode = "form_inactive"
)

// ServiceError is the taxonomy surfaced by every service operation.
// Handlers translate the code to an HTTP status; anything that is not a
// ServiceError is treated as an internal failure.
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error      { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error     { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error     { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewFormInactiveError(msg string) error { return &ServiceError{Code: ErrorFormInactive, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
