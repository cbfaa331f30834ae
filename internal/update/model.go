package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/spf13/afero"

	"github.com/salama135/discord-bots/internal/commands"
)

// Dispatcher is the slice of commands.Dispatcher the chat client needs.
type Dispatcher interface {
	DispatchText(ctx context.Context, userID, text string) (commands.Outcome, bool)
	Prefix() string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type KeyMap struct {
	Send        string
	HistoryPrev string
	HistoryNext string
	Clear       string
	Help        string
	Quit        string
}

// Entry is one line of the transcript: either something the user typed or
// the rendered bot reply.
type Entry struct {
	Author string
	Body   string
	Reply  bool
	At     time.Time
}

type Model struct {
	UserID         string
	Transcript     []Entry
	History        []string
	Status         StatusBar
	Keys           KeyMap
	HelpVisible    bool
	Pending        bool
	Quitting       bool
	LastError      error
	Notifications  []Notification
	DesktopEnabled bool

	dispatcher   Dispatcher
	notifier     DesktopNotifier
	reminders    <-chan string
	fs           afero.Fs
	historyPath  string
	historyLimit int
	historyPos   int
	width        int
	height       int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	helpModel  help.Model
}

type NotifyLevel string

const (
	NotifyInfo  NotifyLevel = "info"
	NotifyError NotifyLevel = "error"
)

type Notification struct {
	Title string
	Body  string
	Level NotifyLevel
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ExecDesktopNotifier shells out to notify-send on Linux and osascript on macOS.
type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, appleScriptEscaper.Replace(n.Body), appleScriptEscaper.Replace(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SendMsg sends Text as if the user had typed it.
type SendMsg struct {
	Text string
}

type ReplyMsg struct {
	Request string
	Outcome commands.Outcome
	Handled bool
}

type ReminderDueMsg struct {
	UserID string
}

type Option func(*Model)

func WithDesktopNotifier(n DesktopNotifier) Option {
	return func(m *Model) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithReminders(ch <-chan string) Option {
	return func(m *Model) { m.reminders = ch }
}

func WithFs(fs afero.Fs) Option {
	return func(m *Model) {
		if fs != nil {
			m.fs = fs
		}
	}
}

func NewModel(d Dispatcher, cfg ChatConfig, opts ...Option) Model {
	cfg = cfg.normalized()
	m := Model{
		UserID:         cfg.UserID,
		DesktopEnabled: cfg.DesktopNotifications,
		Keys: KeyMap{
			Send:        "enter",
			HistoryPrev: "up",
			HistoryNext: "down",
			Clear:       "ctrl+l",
			Help:        "f1",
			Quit:        "esc",
		},
		dispatcher:   d,
		notifier:     NoopDesktopNotifier{},
		fs:           afero.NewOsFs(),
		historyPath:  cfg.HistoryPath,
		historyLimit: cfg.HistoryLimit,
		width:        80,
		height:       24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if history, err := loadHistory(m.fs, m.historyPath); err == nil {
		m.History = history
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("history unreadable: %v", err), IsError: true}
	}
	m.historyPos = len(m.History)
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = m.prefix() + " help"
	m.input.CharLimit = 2000
	m.input.Focus()

	m.transcript = viewport.New(m.width-4, m.transcriptHeight())
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.helpModel = help.New()
	m.syncTranscript()
}

func (m Model) prefix() string {
	if m.dispatcher == nil || m.dispatcher.Prefix() == "" {
		return commands.DefaultPrefix
	}
	return m.dispatcher.Prefix()
}

func (m Model) transcriptHeight() int {
	h := m.height - 9
	if m.HelpVisible {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	return h
}
