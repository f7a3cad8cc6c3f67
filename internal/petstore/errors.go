package petstore

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: el caller pasó datos inválidos; no hubo request.
	ErrValidation = errors.New("validation failed")
	// ErrBackend: el gateway falló (red o backend).
	ErrBackend = errors.New("backend error")
	// ErrStale: la respuesta llegó después de un Init/Dispose y se descartó.
	ErrStale = errors.New("store re-initialised, result discarded")
	// ErrNoGateway: el store se construyó sin gateway.
	ErrNoGateway = errors.New("store: gateway required")
)

// BackendError envuelve una falla del gateway con la operación que la causó.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

func backendErr(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
