// Package apierror provides standardized error types and response structures
// for the API. All errors returned to clients go through this package to
// ensure consistency and to prevent leaking internal details (stack traces,
// DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Hint carries actionable context for the POS front end, e.g. the list
	// of valid mesa numbers when one was not found, or the blocking mesa
	// state on a conflict.
	Hint string `json:"hint,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError signals malformed input. Surfaced as 400/422 with
// field-level messages where available.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Detail }

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError signals that a referenced entity does not exist for the
// tenant. Alternativas, when set, lists valid alternatives (e.g. available
// mesa numbers for the sucursal).
type NotFoundError struct {
	Detail       string
	Alternativas string
}

func (e *NotFoundError) Error() string { return e.Detail }

func NotFoundf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Detail: fmt.Sprintf(format, args...)}
}

// ConflictError signals that an entity is in a state incompatible with the
// requested transition. EstadoActual names the blocking state so the front
// end can show actionable guidance ("mesa 4 pendiente de cobro").
type ConflictError struct {
	Detail       string
	EstadoActual string
}

func (e *ConflictError) Error() string { return e.Detail }

func Conflictf(estadoActual, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Detail: fmt.Sprintf(format, args...), EstadoActual: estadoActual}
}

// PersistenceError wraps an underlying database failure. Surfaced as 500;
// the wrapped error is logged server-side, never sent to the client.
type PersistenceError struct {
	Detail string
	Err    error
}

func (e *PersistenceError) Error() string { return e.Detail }
func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(err error) *PersistenceError {
	return &PersistenceError{Detail: "Error de base de datos", Err: err}
}

// StatusAndBody maps a service-layer error to the HTTP status code and
// response envelope defined by the error taxonomy. Unknown errors are treated
// as internal failures and get a generic 500 body.
func StatusAndBody(err error) (int, interface{}) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, &APIError{Detail: nf.Detail, Hint: nf.Alternativas}
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, &APIError{Detail: ce.Detail, Hint: "Estado actual: " + ce.EstadoActual}
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError, &APIError{Detail: pe.Detail}
	}
	return http.StatusInternalServerError, New("Error interno del servidor")
}
