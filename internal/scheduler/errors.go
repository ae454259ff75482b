package scheduler

import (
	"fmt"

	"github.com/cronbackhq/cronback/internal/models"
)

// ValidationError represents user-facing validation issues.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// NewValidationError creates a new validation error.
func NewValidationError(format string, args ...interface{}) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that a trigger or run does not exist in the
// caller's project.
type NotFoundError struct {
	msg string
}

func (e NotFoundError) Error() string {
	return e.msg
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(format string, args ...interface{}) error {
	return NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// AlreadyExistsError reports a name collision on trigger creation.
type AlreadyExistsError struct {
	msg string
}

func (e AlreadyExistsError) Error() string {
	return e.msg
}

// NewAlreadyExistsError creates a new already-exists error.
func NewAlreadyExistsError(format string, args ...interface{}) error {
	return AlreadyExistsError{msg: fmt.Sprintf(format, args...)}
}

// InvalidStatusError reports an operation attempted against a trigger
// whose current status forbids it, e.g. pausing a cancelled trigger.
type InvalidStatusError struct {
	Operation string
	Status    models.TriggerStatus
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("cannot %s trigger in status %q", e.Operation, e.Status)
}

// NewInvalidStatusError creates a new invalid-status error.
func NewInvalidStatusError(operation string, status models.TriggerStatus) error {
	return InvalidStatusError{Operation: operation, Status: status}
}
