// Package engine implements the GTD task lifecycle: capture, the fixed list
// views, and processing inbox items into their destination collections.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/stats"
)

const DefaultCompletedLimit = 10

type TaskStore interface {
	Load(ctx context.Context, userID string) (*model.Document, error)
	Save(ctx context.Context, userID string, doc *model.Document) error
}

type ActivityLog interface {
	Record(ctx context.Context, actorID string, details model.Details) model.LogEntry
	Recent(ctx context.Context, actorID string, n int) ([]model.LogEntry, error)
}

type StatsReporter interface {
	Report(ctx context.Context, userID string, doc *model.Document, windowDays int) (stats.Report, error)
}

type Engine struct {
	tasks TaskStore
	log   ActivityLog
	stats StatsReporter
	now   func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(tasks TaskStore, log ActivityLog, reporter StatsReporter, opts ...Option) (*Engine, error) {
	if tasks == nil || log == nil || reporter == nil {
		return nil, errors.New("engine: task store, activity log and stats reporter are required")
	}
	e := &Engine{
		tasks: tasks,
		log:   log,
		stats: reporter,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) clock() time.Time {
	return e.now().UTC().Round(0)
}

func (e *Engine) Capture(ctx context.Context, userID, content string) (model.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Task{}, invalid("content", msgEmptyContent)
	}
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return model.Task{}, err
	}
	task := newTask(doc, content, e.clock())
	doc.Inbox = append(doc.Inbox, task)
	if err := e.tasks.Save(ctx, userID, doc); err != nil {
		return model.Task{}, err
	}
	e.log.Record(ctx, userID, model.TaskCaptured{TaskID: task.ID, Content: task.Content})
	return task, nil
}

func (e *Engine) Inbox(ctx context.Context, userID string) ([]model.Task, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.log.Record(ctx, userID, model.InboxViewed{Count: len(doc.Inbox)})
	return doc.Inbox, nil
}

func (e *Engine) NextActions(ctx context.Context, userID string) ([]model.Task, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.log.Record(ctx, userID, model.NextActionsViewed{Count: len(doc.NextActions)})
	return doc.NextActions, nil
}

func (e *Engine) Waiting(ctx context.Context, userID string) ([]model.Task, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.log.Record(ctx, userID, model.WaitingViewed{Count: len(doc.Waiting)})
	return doc.Waiting, nil
}

func (e *Engine) Someday(ctx context.Context, userID string) ([]model.Task, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.log.Record(ctx, userID, model.SomedayViewed{Count: len(doc.Someday)})
	return doc.Someday, nil
}

type ProjectSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Projects lists project buckets by name.
func (e *Engine) Projects(ctx context.Context, userID string) ([]ProjectSummary, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := doc.ProjectNames()
	e.log.Record(ctx, userID, model.ProjectsViewed{Count: len(names), ProjectNames: names})
	out := make([]ProjectSummary, 0, len(names))
	for _, name := range names {
		out = append(out, ProjectSummary{Name: name, Count: len(doc.Projects[name])})
	}
	return out, nil
}

type ProjectView struct {
	Name   string       `json:"name"`
	Exists bool         `json:"exists"`
	Tasks  []model.Task `json:"tasks"`
}

// Project returns one bucket. An unknown name yields an empty view, not an
// error; the attempt is still logged.
func (e *Engine) Project(ctx context.Context, userID, name string) (ProjectView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProjectView{}, invalid("project", msgNoProjectName)
	}
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return ProjectView{}, err
	}
	tasks, exists := doc.Projects[name]
	if tasks == nil {
		tasks = []model.Task{}
	}
	e.log.Record(ctx, userID, model.ProjectViewed{ProjectName: name, Exists: exists, TaskCount: len(tasks)})
	return ProjectView{Name: name, Exists: exists, Tasks: tasks}, nil
}

type CompletedView struct {
	Tasks []model.Task `json:"tasks"`
	Total int          `json:"total"`
}

// Completed returns up to limit completed tasks, most recently completed first.
func (e *Engine) Completed(ctx context.Context, userID string, limit int) (CompletedView, error) {
	if limit <= 0 {
		limit = DefaultCompletedLimit
	}
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return CompletedView{}, err
	}
	all := doc.Completed
	start := max(len(all)-limit, 0)
	recent := make([]model.Task, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		recent = append(recent, all[i])
	}
	e.log.Record(ctx, userID, model.CompletedViewed{RecentCount: len(recent), TotalCount: len(all)})
	return CompletedView{Tasks: recent, Total: len(all)}, nil
}

type ProcessResult struct {
	Task           model.Task        `json:"task"`
	Destination    model.Destination `json:"destination"`
	RemainingInbox int               `json:"remainingInbox"`
}

// Process moves the inbox item at the 1-based position to dest. All input
// is validated before anything is logged or removed, so a rejected call
// leaves the document untouched. Items after position renumber down by one.
func (e *Engine) Process(ctx context.Context, userID string, position int, dest, info string) (ProcessResult, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return ProcessResult{}, err
	}
	if position < 1 || position > len(doc.Inbox) {
		return ProcessResult{}, invalid("position", msgBadPosition)
	}
	destination, err := model.ParseDestination(dest)
	if err != nil {
		return ProcessResult{}, invalid("destination", msgBadDestination)
	}
	info = strings.TrimSpace(info)
	if destination == model.DestinationProject && info == "" {
		return ProcessResult{}, invalid("project", msgNoProjectName)
	}

	idx := position - 1
	task := doc.Inbox[idx]
	e.log.Record(ctx, userID, model.TaskProcessing{
		TaskID:         task.ID,
		Content:        task.Content,
		Destination:    destination,
		AdditionalInfo: info,
	})

	doc.Inbox = append(doc.Inbox[:idx:idx], doc.Inbox[idx+1:]...)
	oldStatus := task.Status
	moved := moveTask(doc, task, destination, info, e.clock())

	if err := e.tasks.Save(ctx, userID, doc); err != nil {
		return ProcessResult{}, fmt.Errorf("save after processing task %d: %w", task.ID, err)
	}
	e.log.Record(ctx, userID, model.TaskProcessed{
		TaskID:      moved.ID,
		OldStatus:   oldStatus,
		NewStatus:   moved.Status,
		Destination: destination,
	})
	return ProcessResult{Task: moved, Destination: destination, RemainingInbox: len(doc.Inbox)}, nil
}

type ReviewStep struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

var ReviewSteps = []ReviewStep{
	{Title: "Get Clear", Items: []string{"Collect loose papers & materials", "Process all notes", "Check !gtd inbox"}},
	{Title: "Get Current", Items: []string{"Review Next Actions lists", "Review Previous calendar data", "Review Upcoming calendar", "Review Waiting For list", "Review Project lists"}},
	{Title: "Get Creative", Items: []string{"Review Someday/Maybe list", "Be creative & courageous"}},
}

type ReviewSummary struct {
	Counts model.Counts `json:"counts"`
	Steps  []ReviewStep `json:"steps"`
}

// WeeklyReview is read-only: it snapshots every collection's size.
func (e *Engine) WeeklyReview(ctx context.Context, userID string) (ReviewSummary, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return ReviewSummary{}, err
	}
	counts := doc.Counts()
	e.log.Record(ctx, userID, model.WeeklyReviewStarted{
		InboxCount:       counts.Inbox,
		NextActionsCount: counts.NextActions,
		ProjectsCount:    counts.Projects,
		WaitingCount:     counts.Waiting,
		SomedayCount:     counts.Someday,
	})
	return ReviewSummary{Counts: counts, Steps: ReviewSteps}, nil
}

func (e *Engine) Stats(ctx context.Context, userID string, windowDays int) (stats.Report, error) {
	doc, err := e.tasks.Load(ctx, userID)
	if err != nil {
		return stats.Report{}, err
	}
	report, err := e.stats.Report(ctx, userID, doc, windowDays)
	if err != nil {
		return stats.Report{}, err
	}
	e.log.Record(ctx, userID, model.StatsViewed{
		Period:         report.Period(),
		TasksAdded:     report.Counters.TasksAdded,
		TasksCompleted: report.Counters.TasksCompleted,
		InboxProcessed: report.Counters.InboxProcessed,
	})
	return report, nil
}

// RecentActivity reads the user's own log and records nothing.
func (e *Engine) RecentActivity(ctx context.Context, userID string, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return e.log.Recent(ctx, userID, limit)
}

type HelpEntry struct {
	Usage       string `json:"usage"`
	Description string `json:"description"`
}

var CommandReference = []HelpEntry{
	{"add [task]", "Capture a new task to inbox"},
	{"inbox", "View tasks in your inbox"},
	{"process [#] [destination] [info]", "Process inbox item to: nextaction, project, waiting, someday, or done"},
	{"next", "View your next actions"},
	{"projects", "List all your projects"},
	{"project [name]", "View tasks in a specific project"},
	{"waiting", "View tasks waiting on others"},
	{"someday", "View someday/maybe list"},
	{"done", "View recently completed tasks"},
	{"weekly", "Start weekly review process"},
	{"logs", "View your recent activity logs"},
	{"stats [days]", "View your productivity statistics"},
}

func (e *Engine) Help(ctx context.Context, userID string) []HelpEntry {
	e.log.Record(ctx, userID, model.HelpViewed{})
	return CommandReference
}
