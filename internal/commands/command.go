package commands

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultPrefix = "!gtd"

// ErrNotCommand marks chat messages that are not addressed to the bot.
var ErrNotCommand = errors.New("commands: message does not start with the command prefix")

const (
	NameAdd       = "add"
	NameCapture   = "capture"
	NameInbox     = "inbox"
	NameProcess   = "process"
	NameNext      = "next"
	NameProjects  = "projects"
	NameProject   = "project"
	NameWaiting   = "waiting"
	NameSomeday   = "someday"
	NameDone      = "done"
	NameCompleted = "completed"
	NameWeekly    = "weekly"
	NameLogs      = "logs"
	NameStats     = "stats"
	NameHelp      = "help"
)

var aliases = map[string]string{
	NameCapture:   NameAdd,
	NameCompleted: NameDone,
}

// Canonical folds aliases onto the name they stand for.
func Canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Invocation is one parsed chat command.
type Invocation struct {
	Name string
	Args []string
	Raw  string
}

// Parse splits a chat message into a lower-cased command name and its
// space separated arguments.
func Parse(input, prefix string) (Invocation, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	raw := strings.TrimSpace(input)
	if !strings.HasPrefix(raw, prefix) {
		return Invocation{}, ErrNotCommand
	}
	parts := strings.Fields(strings.TrimPrefix(raw, prefix))
	if len(parts) == 0 {
		return Invocation{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	return Invocation{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
		Raw:  raw,
	}, nil
}

// NewInvocation builds an invocation from an already split command, as the
// HTTP and CLI front ends receive it.
func NewInvocation(prefix, name string, args []string) (Invocation, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Invocation{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.ContainsAny(name, " \t\n") {
		return Invocation{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("command name %q contains whitespace", name)}
	}
	raw := strings.Join(append([]string{prefix, name}, args...), " ")
	return Invocation{Name: name, Args: args, Raw: raw}, nil
}
