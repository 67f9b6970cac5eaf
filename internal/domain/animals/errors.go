package animals

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("animal not found")
	ErrImageNotFound = errors.New("image not found")
	ErrForbidden     = errors.New("forbidden")
)

// ValidationError lleva un mensaje accionable para el caller (400).
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
