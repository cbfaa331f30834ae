package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForReminderCmd(m.reminders))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = typed.Width, typed.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case SendMsg:
		return m.send(typed.Text)
	case ReplyMsg:
		m.Pending = false
		m.applyReply(typed)
		return m, nil
	case spinner.TickMsg:
		if m.Pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.Pending = false
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), NotifyError)
		}
		return m, nil
	case ReminderDueMsg:
		m.applyReminder(typed, time.Now().UTC())
		return m, waitForReminderCmd(m.reminders)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		m.resize()
		return m, nil
	case m.Keys.Clear:
		m.Transcript = nil
		m.syncTranscript()
		m.Status = StatusBar{Text: "transcript cleared"}
		return m, nil
	case m.Keys.HistoryPrev:
		m.recall(-1)
		return m, nil
	case m.Keys.HistoryNext:
		m.recall(1)
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	case m.Keys.Send:
		text := m.input.Value()
		m.input.SetValue("")
		return m.send(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) send(text string) (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(text)
	if line == "" {
		return m, nil
	}
	if m.Pending {
		m.Status = StatusBar{Text: "still waiting for the previous reply"}
		return m, nil
	}
	m.remember(line)
	request := m.qualify(line)
	m.appendEntry(Entry{Author: m.UserID, Body: request, At: time.Now().UTC()})
	m.Pending = true
	m.Status = StatusBar{Text: "sending"}
	return m, tea.Batch(m.spinner.Tick, dispatchCmd(m.dispatcher, m.UserID, request))
}

// qualify lets users type "inbox" instead of "!gtd inbox".
func (m Model) qualify(line string) string {
	prefix := m.prefix()
	if strings.HasPrefix(line, prefix) {
		return line
	}
	return prefix + " " + line
}

func dispatchCmd(d Dispatcher, userID, text string) tea.Cmd {
	return func() tea.Msg {
		if d == nil {
			return AppErrorMsg{Err: errors.New("chat: no dispatcher configured")}
		}
		out, ok := d.DispatchText(context.Background(), userID, text)
		return ReplyMsg{Request: text, Outcome: out, Handled: ok}
	}
}

func (m *Model) applyReply(msg ReplyMsg) {
	body := fmt.Sprintf("Commands start with `%s`.", m.prefix())
	if msg.Handled {
		body = views.RenderReply(msg.Outcome, m.prefix())
	}
	m.appendEntry(Entry{Author: botAuthor, Body: body, Reply: true, At: time.Now().UTC()})

	switch msg.Outcome.Kind {
	case commands.KindSuccess:
		m.Status = StatusBar{Text: msg.Outcome.Command}
	case commands.KindError:
		m.Status = StatusBar{Text: msg.Outcome.Message, IsError: true}
		m.notify("Error", msg.Outcome.Message, NotifyError)
	default:
		m.Status = StatusBar{Text: string(msg.Outcome.Kind)}
	}
}

func (m *Model) appendEntry(e Entry) {
	m.Transcript = append(m.Transcript, e)
	if len(m.Transcript) > m.historyLimit*2 {
		m.Transcript = m.Transcript[len(m.Transcript)-m.historyLimit*2:]
	}
	m.syncTranscript()
}

func (m *Model) syncTranscript() {
	parts := make([]string, 0, len(m.Transcript))
	for _, e := range m.Transcript {
		if e.Reply {
			parts = append(parts, views.RenderMarkdown(e.Body))
			continue
		}
		parts = append(parts, views.RenderUserLine(e.Author, e.Body))
	}
	m.transcript.SetContent(strings.Join(parts, "\n\n"))
	m.transcript.GotoBottom()
}

func (m *Model) resize() {
	m.transcript.Width = m.width - 4
	m.transcript.Height = m.transcriptHeight()
	m.input.Width = m.width - 8
	m.syncTranscript()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.Pending {
		status = strings.TrimSpace(m.spinner.View() + " " + status)
	}
	input := m.input.View()
	if m.HelpVisible {
		input += "\n" + m.renderHelpView()
	}
	return views.RenderChat(views.ChatFrame{
		Header:     fmt.Sprintf("gtdbot | user: %s | prefix: %s", m.UserID, m.prefix()),
		Transcript: m.transcript.View(),
		Input:      input,
		StatusLine: status,
		Footer:     m.footer(),
		Width:      m.width,
	})
}
