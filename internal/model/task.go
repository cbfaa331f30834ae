package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidStatus = errors.New("model: invalid task status")
	ErrInvalidTask   = errors.New("model: invalid task")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Status string

const (
	StatusInbox   Status = "inbox"
	StatusNext    Status = "next"
	StatusProject Status = "project"
	StatusWaiting Status = "waiting"
	StatusSomeday Status = "someday"
	StatusDone    Status = "done"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusInbox, StatusNext, StatusProject, StatusWaiting, StatusSomeday, StatusDone:
		return true
	default:
		return false
	}
}

// Task is one unit of work. Which collection of a Document owns it is
// determined by Status.
type Task struct {
	ID         int64      `json:"id" yaml:"id" validate:"required,gt=0"`
	Content    string     `json:"content" yaml:"content" validate:"required"`
	Created    time.Time  `json:"created" yaml:"created" validate:"required"`
	Status     Status     `json:"status" yaml:"status" validate:"required"`
	Project    string     `json:"project,omitempty" yaml:"project,omitempty"`
	WaitingFor string     `json:"waitingFor,omitempty" yaml:"waitingFor,omitempty"`
	Completed  *time.Time `json:"completed,omitempty" yaml:"completed,omitempty"`
}

func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("%w: content is blank", ErrInvalidTask)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.Status == StatusDone && t.Completed == nil {
		return fmt.Errorf("%w: completed is required when status is done", ErrInvalidTask)
	}
	if t.Status != StatusDone && t.Completed != nil {
		return fmt.Errorf("%w: completed must be empty when status is %s", ErrInvalidTask, t.Status)
	}
	if t.Status == StatusProject && strings.TrimSpace(t.Project) == "" {
		return fmt.Errorf("%w: project name is required when status is project", ErrInvalidTask)
	}
	if t.Status != StatusProject && t.Project != "" {
		return fmt.Errorf("%w: project must be empty when status is %s", ErrInvalidTask, t.Status)
	}
	if t.Status != StatusWaiting && t.WaitingFor != "" {
		return fmt.Errorf("%w: waitingFor must be empty when status is %s", ErrInvalidTask, t.Status)
	}
	return nil
}
