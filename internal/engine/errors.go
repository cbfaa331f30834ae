package engine

import (
	"errors"
	"strconv"
	"strings"
)

var ErrValidation = errors.New("engine: validation failed")

// ValidationError is a caller input that fails a precondition. Message is
// the corrective prompt shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "engine: invalid " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

const (
	msgEmptyContent   = "Please provide a task description."
	msgBadPosition    = "Please provide a valid inbox task number."
	msgBadDestination = "Please specify where to move this task: nextaction, project, waiting, someday, or done"
	msgNoProjectName  = "Please specify a project name."
)

// ParsePosition reads a 1-based inbox position typed by the user.
func ParsePosition(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, invalid("position", msgBadPosition)
	}
	return n, nil
}
