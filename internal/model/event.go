package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SystemActor is the user id recorded for events no user triggered.
const SystemActor = "SYSTEM"

type EventType string

const (
	EventTaskCaptured            EventType = "TASK_CAPTURED"
	EventInboxViewed             EventType = "INBOX_VIEWED"
	EventTaskProcessing          EventType = "TASK_PROCESSING"
	EventTaskProcessed           EventType = "TASK_PROCESSED"
	EventNextActionsViewed       EventType = "NEXT_ACTIONS_VIEWED"
	EventProjectsViewed          EventType = "PROJECTS_VIEWED"
	EventProjectViewed           EventType = "PROJECT_VIEWED"
	EventWaitingViewed           EventType = "WAITING_VIEWED"
	EventSomedayViewed           EventType = "SOMEDAY_VIEWED"
	EventCompletedViewed         EventType = "COMPLETED_VIEWED"
	EventWeeklyReviewStarted     EventType = "WEEKLY_REVIEW_STARTED"
	EventStatsViewed             EventType = "STATS_VIEWED"
	EventHelpViewed              EventType = "HELP_VIEWED"
	EventUnknownCommand          EventType = "UNKNOWN_COMMAND"
	EventError                   EventType = "ERROR"
	EventWeeklyReminderScheduled EventType = "WEEKLY_REMINDER_SCHEDULED"
	EventBotStarted              EventType = "BOT_STARTED"
)

// Details is the payload of one log entry. Each event type has its own
// struct carrying only the fields that event needs.
type Details interface {
	EventType() EventType
}

type TaskCaptured struct {
	TaskID  int64  `json:"taskId"`
	Content string `json:"content"`
}

type InboxViewed struct {
	Count int `json:"count"`
}

type TaskProcessing struct {
	TaskID         int64       `json:"taskId"`
	Content        string      `json:"content"`
	Destination    Destination `json:"destination"`
	AdditionalInfo string      `json:"additionalInfo"`
}

type TaskProcessed struct {
	TaskID      int64       `json:"taskId"`
	OldStatus   Status      `json:"oldStatus"`
	NewStatus   Status      `json:"newStatus"`
	Destination Destination `json:"destination"`
}

type NextActionsViewed struct {
	Count int `json:"count"`
}

type ProjectsViewed struct {
	Count        int      `json:"count"`
	ProjectNames []string `json:"projectNames"`
}

type ProjectViewed struct {
	ProjectName string `json:"projectName"`
	Exists      bool   `json:"exists"`
	TaskCount   int    `json:"taskCount"`
}

type WaitingViewed struct {
	Count int `json:"count"`
}

type SomedayViewed struct {
	Count int `json:"count"`
}

type CompletedViewed struct {
	RecentCount int `json:"recentCount"`
	TotalCount  int `json:"totalCount"`
}

type WeeklyReviewStarted struct {
	InboxCount       int `json:"inboxCount"`
	NextActionsCount int `json:"nextActionsCount"`
	ProjectsCount    int `json:"projectsCount"`
	WaitingCount     int `json:"waitingCount"`
	SomedayCount     int `json:"somedayCount"`
}

type StatsViewed struct {
	Period         string `json:"period"`
	TasksAdded     int    `json:"tasksAdded"`
	TasksCompleted int    `json:"tasksCompleted"`
	InboxProcessed int    `json:"inboxProcessed"`
}

type HelpViewed struct{}

type UnknownCommand struct {
	Command     string `json:"command"`
	FullMessage string `json:"fullMessage"`
}

type CommandFailed struct {
	Command string `json:"command"`
	Error   string `json:"error"`
	Stack   string `json:"stack"`
}

type WeeklyReminderScheduled struct {
	TargetUserID string `json:"targetUserId"`
}

type BotStarted struct {
	BotUsername string    `json:"botUsername"`
	StartTime   time.Time `json:"startTime"`
}

// RawDetails holds the payload of an event type this build does not know.
type RawDetails struct {
	Type EventType
	Raw  json.RawMessage
}

func (TaskCaptured) EventType() EventType            { return EventTaskCaptured }
func (InboxViewed) EventType() EventType             { return EventInboxViewed }
func (TaskProcessing) EventType() EventType          { return EventTaskProcessing }
func (TaskProcessed) EventType() EventType           { return EventTaskProcessed }
func (NextActionsViewed) EventType() EventType       { return EventNextActionsViewed }
func (ProjectsViewed) EventType() EventType          { return EventProjectsViewed }
func (ProjectViewed) EventType() EventType           { return EventProjectViewed }
func (WaitingViewed) EventType() EventType           { return EventWaitingViewed }
func (SomedayViewed) EventType() EventType           { return EventSomedayViewed }
func (CompletedViewed) EventType() EventType         { return EventCompletedViewed }
func (WeeklyReviewStarted) EventType() EventType     { return EventWeeklyReviewStarted }
func (StatsViewed) EventType() EventType             { return EventStatsViewed }
func (HelpViewed) EventType() EventType              { return EventHelpViewed }
func (UnknownCommand) EventType() EventType          { return EventUnknownCommand }
func (CommandFailed) EventType() EventType           { return EventError }
func (WeeklyReminderScheduled) EventType() EventType { return EventWeeklyReminderScheduled }
func (BotStarted) EventType() EventType              { return EventBotStarted }
func (r RawDetails) EventType() EventType            { return r.Type }

func (r RawDetails) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("{}"), nil
	}
	return r.Raw, nil
}

func newDetails(t EventType) (Details, bool) {
	switch t {
	case EventTaskCaptured:
		return &TaskCaptured{}, true
	case EventInboxViewed:
		return &InboxViewed{}, true
	case EventTaskProcessing:
		return &TaskProcessing{}, true
	case EventTaskProcessed:
		return &TaskProcessed{}, true
	case EventNextActionsViewed:
		return &NextActionsViewed{}, true
	case EventProjectsViewed:
		return &ProjectsViewed{}, true
	case EventProjectViewed:
		return &ProjectViewed{}, true
	case EventWaitingViewed:
		return &WaitingViewed{}, true
	case EventSomedayViewed:
		return &SomedayViewed{}, true
	case EventCompletedViewed:
		return &CompletedViewed{}, true
	case EventWeeklyReviewStarted:
		return &WeeklyReviewStarted{}, true
	case EventStatsViewed:
		return &StatsViewed{}, true
	case EventHelpViewed:
		return &HelpViewed{}, true
	case EventUnknownCommand:
		return &UnknownCommand{}, true
	case EventError:
		return &CommandFailed{}, true
	case EventWeeklyReminderScheduled:
		return &WeeklyReminderScheduled{}, true
	case EventBotStarted:
		return &BotStarted{}, true
	default:
		return nil, false
	}
}

// LogEntry is one immutable activity log record.
type LogEntry struct {
	Timestamp time.Time
	UserID    string
	EventType EventType
	Details   Details
}

type logEntryJSON struct {
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId"`
	EventType EventType       `json:"eventType"`
	Details   json.RawMessage `json:"details"`
}

func NewLogEntry(ts time.Time, userID string, details Details) LogEntry {
	return LogEntry{Timestamp: ts, UserID: userID, EventType: details.EventType(), Details: details}
}

// DetailsJSON encodes the payload alone, as it appears in exports.
func (e LogEntry) DetailsJSON() ([]byte, error) {
	if e.Details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Details)
}

func (e LogEntry) MarshalJSON() ([]byte, error) {
	raw, err := e.DetailsJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", e.EventType, err)
	}
	return json.Marshal(logEntryJSON{
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		EventType: e.EventType,
		Details:   raw,
	})
}

func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var aux logEntryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Timestamp = aux.Timestamp
	e.UserID = aux.UserID
	e.EventType = aux.EventType

	details, known := newDetails(aux.EventType)
	if !known {
		e.Details = RawDetails{Type: aux.EventType, Raw: append(json.RawMessage(nil), aux.Details...)}
		return nil
	}
	if len(aux.Details) > 0 && string(aux.Details) != "null" {
		if err := json.Unmarshal(aux.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", aux.EventType, err)
		}
	}
	e.Details = deref(details)
	return nil
}

// deref turns the pointer used for decoding back into the value type the
// rest of the code switches on.
func deref(d Details) Details {
	switch v := d.(type) {
	case *TaskCaptured:
		return *v
	case *InboxViewed:
		return *v
	case *TaskProcessing:
		return *v
	case *TaskProcessed:
		return *v
	case *NextActionsViewed:
		return *v
	case *ProjectsViewed:
		return *v
	case *ProjectViewed:
		return *v
	case *WaitingViewed:
		return *v
	case *SomedayViewed:
		return *v
	case *CompletedViewed:
		return *v
	case *WeeklyReviewStarted:
		return *v
	case *StatsViewed:
		return *v
	case *HelpViewed:
		return *v
	case *UnknownCommand:
		return *v
	case *CommandFailed:
		return *v
	case *WeeklyReminderScheduled:
		return *v
	case *BotStarted:
		return *v
	default:
		return d
	}
}
