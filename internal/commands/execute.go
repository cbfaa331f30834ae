package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salama135/discord-bots/internal/engine"
	"github.com/salama135/discord-bots/internal/keylock"
	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/stats"
)

type Kind string

const (
	KindSuccess         Kind = "success"
	KindValidationError Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindUnknownCommand  Kind = "unknown_command"
	KindError           Kind = "error"
)

const (
	MsgUnknownCommand = "Unknown command. Type `%s help` to see available commands."
	MsgFailure        = "There was an error executing that command."
	MsgNoActivity     = "No activity logs found."
	MsgBadStatsWindow = "Please provide a positive number of days."
)

// Outcome is what the dispatcher hands to a renderer.
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Command string `json:"command"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// TaskList is the payload of the inbox, next, waiting and someday views.
type TaskList struct {
	View  string       `json:"view"`
	Tasks []model.Task `json:"tasks"`
}

type Engine interface {
	Capture(ctx context.Context, userID, content string) (model.Task, error)
	Inbox(ctx context.Context, userID string) ([]model.Task, error)
	NextActions(ctx context.Context, userID string) ([]model.Task, error)
	Waiting(ctx context.Context, userID string) ([]model.Task, error)
	Someday(ctx context.Context, userID string) ([]model.Task, error)
	Projects(ctx context.Context, userID string) ([]engine.ProjectSummary, error)
	Project(ctx context.Context, userID, name string) (engine.ProjectView, error)
	Completed(ctx context.Context, userID string, limit int) (engine.CompletedView, error)
	Process(ctx context.Context, userID string, position int, dest, info string) (engine.ProcessResult, error)
	WeeklyReview(ctx context.Context, userID string) (engine.ReviewSummary, error)
	Stats(ctx context.Context, userID string, windowDays int) (stats.Report, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]model.LogEntry, error)
	Help(ctx context.Context, userID string) []engine.HelpEntry
}

type Recorder interface {
	Record(ctx context.Context, actorID string, details model.Details) model.LogEntry
}

type handlerFunc func(ctx context.Context, userID string, args []string) (Outcome, error)

// Dispatcher runs one command at a time per user and turns every result,
// including failures and panics, into an Outcome.
type Dispatcher struct {
	engine     Engine
	recorder   Recorder
	logger     *slog.Logger
	prefix     string
	windowDays int
	locks      *keylock.Map
	handlers   map[string]handlerFunc
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			d.prefix = prefix
		}
	}
}

func WithStatsWindow(days int) Option {
	return func(d *Dispatcher) {
		if days > 0 {
			d.windowDays = days
		}
	}
}

func NewDispatcher(eng Engine, recorder Recorder, opts ...Option) (*Dispatcher, error) {
	if eng == nil || recorder == nil {
		return nil, errors.New("commands: engine and recorder are required")
	}
	d := &Dispatcher{
		engine:     eng,
		recorder:   recorder,
		logger:     slog.Default(),
		prefix:     DefaultPrefix,
		windowDays: stats.DefaultWindowDays,
		locks:      keylock.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handlerFunc{
		NameAdd:      d.add,
		NameInbox:    d.listView(NameInbox, eng.Inbox),
		NameProcess:  d.process,
		NameNext:     d.listView(NameNext, eng.NextActions),
		NameProjects: d.projects,
		NameProject:  d.project,
		NameWaiting:  d.listView(NameWaiting, eng.Waiting),
		NameSomeday:  d.listView(NameSomeday, eng.Someday),
		NameDone:     d.completed,
		NameWeekly:   d.weekly,
		NameLogs:     d.logs,
		NameStats:    d.stats,
		NameHelp:     d.help,
	}
	return d, nil
}

func (d *Dispatcher) Prefix() string { return d.prefix }

// DispatchText parses a raw chat message and dispatches it. The second
// result is false when the message is not a command at all.
func (d *Dispatcher) DispatchText(ctx context.Context, userID, text string) (Outcome, bool) {
	inv, err := Parse(text, d.prefix)
	if errors.Is(err, ErrNotCommand) {
		return Outcome{}, false
	}
	if err != nil {
		inv = Invocation{Raw: strings.TrimSpace(text)}
	}
	return d.Dispatch(ctx, userID, inv), true
}

// Dispatch runs inv for userID. Commands from the same user are serialized;
// different users run in parallel. A command that started runs to
// completion even if ctx is cancelled meanwhile, so its task change and
// activity entry are never split.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, inv Invocation) (out Outcome) {
	ctx = context.WithoutCancel(ctx)
	unlock := d.locks.Lock(userID)
	defer unlock()

	name := Canonical(inv.Name)
	logger := d.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("user", userID),
		slog.String("command", name),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out = d.fail(ctx, logger, userID, name, fmt.Errorf("panic: %v", r), string(debug.Stack()))
		}
		logger.DebugContext(ctx, "command dispatched",
			slog.String("kind", string(out.Kind)),
			slog.Duration("elapsed", time.Since(start)))
	}()

	handler, ok := d.handlers[name]
	if !ok {
		d.recorder.Record(ctx, userID, model.UnknownCommand{Command: inv.Name, FullMessage: inv.Raw})
		return Outcome{
			Kind:    KindUnknownCommand,
			Command: inv.Name,
			Message: fmt.Sprintf(MsgUnknownCommand, d.prefix),
		}
	}

	out, err := handler(ctx, userID, inv.Args)
	if err != nil {
		var ve *engine.ValidationError
		if errors.As(err, &ve) {
			logger.InfoContext(ctx, "command rejected", slog.String("field", ve.Field))
			return Outcome{Kind: KindValidationError, Command: name, Message: ve.Message}
		}
		return d.fail(ctx, logger, userID, name, err, string(debug.Stack()))
	}
	out.Command = name
	return out
}

func (d *Dispatcher) fail(ctx context.Context, logger *slog.Logger, userID, name string, err error, stack string) Outcome {
	logger.ErrorContext(ctx, "command failed", slog.Any("error", err))
	d.recorder.Record(ctx, userID, model.CommandFailed{Command: name, Error: err.Error(), Stack: stack})
	return Outcome{Kind: KindError, Command: name, Message: MsgFailure}
}

func success(payload any) Outcome {
	return Outcome{Kind: KindSuccess, Payload: payload}
}

func (d *Dispatcher) add(ctx context.Context, userID string, args []string) (Outcome, error) {
	task, err := d.engine.Capture(ctx, userID, strings.Join(args, " "))
	if err != nil {
		return Outcome{}, err
	}
	return success(task), nil
}

func (d *Dispatcher) listView(view string, list func(context.Context, string) ([]model.Task, error)) handlerFunc {
	return func(ctx context.Context, userID string, _ []string) (Outcome, error) {
		tasks, err := list(ctx, userID)
		if err != nil {
			return Outcome{}, err
		}
		return success(TaskList{View: view, Tasks: tasks}), nil
	}
}

func (d *Dispatcher) process(ctx context.Context, userID string, args []string) (Outcome, error) {
	var rawPos, dest string
	if len(args) > 0 {
		rawPos = args[0]
	}
	if len(args) > 1 {
		dest = args[1]
	}
	info := ""
	if len(args) > 2 {
		info = strings.Join(args[2:], " ")
	}
	position, err := engine.ParsePosition(rawPos)
	if err != nil {
		return Outcome{}, err
	}
	res, err := d.engine.Process(ctx, userID, position, dest, info)
	if err != nil {
		return Outcome{}, err
	}
	return success(res), nil
}

func (d *Dispatcher) projects(ctx context.Context, userID string, _ []string) (Outcome, error) {
	list, err := d.engine.Projects(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	return success(list), nil
}

func (d *Dispatcher) project(ctx context.Context, userID string, args []string) (Outcome, error) {
	view, err := d.engine.Project(ctx, userID, strings.Join(args, " "))
	if err != nil {
		return Outcome{}, err
	}
	if len(view.Tasks) == 0 {
		return Outcome{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("No tasks found for project %q.", view.Name),
			Payload: view,
		}, nil
	}
	return success(view), nil
}

func (d *Dispatcher) completed(ctx context.Context, userID string, _ []string) (Outcome, error) {
	view, err := d.engine.Completed(ctx, userID, engine.DefaultCompletedLimit)
	if err != nil {
		return Outcome{}, err
	}
	return success(view), nil
}

func (d *Dispatcher) weekly(ctx context.Context, userID string, _ []string) (Outcome, error) {
	summary, err := d.engine.WeeklyReview(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	return success(summary), nil
}

func (d *Dispatcher) logs(ctx context.Context, userID string, _ []string) (Outcome, error) {
	entries, err := d.engine.RecentActivity(ctx, userID, 10)
	if err != nil {
		return Outcome{}, err
	}
	if len(entries) == 0 {
		return Outcome{Kind: KindNotFound, Message: MsgNoActivity, Payload: entries}, nil
	}
	return success(entries), nil
}

// stats takes an optional window in days; the configured window otherwise.
func (d *Dispatcher) stats(ctx context.Context, userID string, args []string) (Outcome, error) {
	days := d.windowDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Outcome{}, &engine.ValidationError{Field: "days", Message: MsgBadStatsWindow}
		}
		days = n
	}
	report, err := d.engine.Stats(ctx, userID, days)
	if err != nil {
		return Outcome{}, err
	}
	return success(report), nil
}

func (d *Dispatcher) help(ctx context.Context, userID string, _ []string) (Outcome, error) {
	return success(d.engine.Help(ctx, userID)), nil
}
