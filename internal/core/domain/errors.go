package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderRejected   = errors.New("order rejected")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type FieldError struct {
	Field   string
	Message string
}

// A ValidationError collects user input problems. It is reported
// back to the caller and never reaches the state stores.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{field, msg})
}

func (e ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
