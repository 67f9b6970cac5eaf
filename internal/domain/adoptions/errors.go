package adoptions

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("adoption request not found")
	ErrAnimalNotFound = errors.New("animal not found")
	ErrForbidden      = errors.New("forbidden")

	// ErrDuplicateApplication lo devuelve el storage cuando la constraint
	// de unicidad gana la carrera que el service no alcanzó a ver.
	ErrDuplicateApplication = errors.New("duplicate application")

	// ErrStaleState lo devuelve el storage cuando el re-chequeo bajo lock
	// encuentra un estado distinto al que vio el service.
	ErrStaleState = errors.New("adoption state changed")
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError lleva mensajes 409 con contexto ("ya tenés una solicitud
// pending para este animal").
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func conflictf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}
