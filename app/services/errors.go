package services

import (
	"errors"
	"fmt"

	"tasktime/app/store"
)

// Kinds of validation failure. Each matches with errors.Is against a
// *ValidationError of that kind.
var (
	ErrStructural = errors.New("structural violation")
	ErrUniqueness = errors.New("uniqueness violation")
	ErrInput      = errors.New("input violation")
)

// ErrNotFound is returned for missing rows and rows owned by another user.
var ErrNotFound = fmt.Errorf("resource %w", store.ErrNotFound)

// ValidationError rejects a write before anything is persisted.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func structural(field, format string, args ...any) error {
	return &ValidationError{Kind: ErrStructural, Field: field, Message: fmt.Sprintf(format, args...)}
}

func uniqueness(field, format string, args ...any) error {
	return &ValidationError{Kind: ErrUniqueness, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Kind: ErrInput, Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound maps a backend miss to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
