// Package errors defines the error taxonomy of the maintenance engine.
//
// ValidationError and ErrNotFound are actionable precondition failures;
// ImportRowError is collected per record during bulk imports instead of
// aborting the batch; anything else is wrapped into a DomainError carrying
// the original cause for logging.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("registro no encontrado")
	ErrConflict   = errors.New("el registro ya existe")
	ErrBadRequest = errors.New("solicitud inválida")
)

// ValidationError signals invalid caller input (missing equipment code,
// unknown recurrence interval, week-mask length mismatch). It never wraps
// an inner cause beyond its diagnostic message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ImportRowError describes one rejected record of a bulk import. Rows are
// collected and reported together; the batch itself continues.
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (e *ImportRowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("fila %d, columna %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("fila %d: %s", e.Row, e.Message)
}

// DomainError wraps an unexpected failure with the original cause so the
// boundary can log it with full context while reporting generically.
type DomainError struct {
	Op  string
	Err error
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *DomainError) Unwrap() error { return e.Err }

func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DomainError{Op: op, Err: err}
}

// HttpError carries an HTTP status, a user-facing message and the internal
// cause plus logging context for the HTTP boundary.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}
