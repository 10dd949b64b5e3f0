package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidField     = errors.New("invalid field value")
	ErrTableNotFound    = errors.New("table not found or inactive")
	ErrCapacityExceeded = errors.New("guest count exceeds table capacity")
	ErrPastDateTime     = errors.New("date and time slot are in the past")
	ErrSlotConflict     = errors.New("table is already booked for this slot")
	ErrTransition       = errors.New("illegal booking status change")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("you do not have permission")
	ErrDuplicateTable   = errors.New("table number already exists")
)

// ValidationError carries the violated rule (Kind) and a user-facing message.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return e.Kind.Error()
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func newError(kind error, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns a stable snake_case code for a known error kind, or "" otherwise.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidField):
		return "invalid_field"
	case errors.Is(err, ErrTableNotFound):
		return "table_not_found"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrPastDateTime):
		return "past_date_time"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, ErrTransition):
		return "transition_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrDuplicateTable):
		return "duplicate_table"
	}
	return ""
}

// isUniqueViolation recognises a unique-constraint failure from any of the supported drivers.
// gorm's TranslateError covers it when enabled; the message check catches the rest.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
