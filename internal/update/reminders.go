package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const botAuthor = "gtdbot"

var ErrFeedFull = errors.New("chat: reminder feed full")

// ReminderFeed receives weekly review reminders from the scheduler and
// hands them to a running chat client.
type ReminderFeed struct {
	ch chan string
}

func NewReminderFeed(buffer int) *ReminderFeed {
	if buffer <= 0 {
		buffer = 8
	}
	return &ReminderFeed{ch: make(chan string, buffer)}
}

func (f *ReminderFeed) NotifyWeeklyReview(ctx context.Context, userID string) error {
	select {
	case f.ch <- userID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFeedFull
	}
}

func (f *ReminderFeed) C() <-chan string { return f.ch }

func waitForReminderCmd(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		userID, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{UserID: userID}
	}
}

// applyReminder posts the nudge into the transcript when it targets the
// user at the keyboard.
func (m *Model) applyReminder(msg ReminderDueMsg, now time.Time) {
	if msg.UserID != m.UserID {
		return
	}
	text := fmt.Sprintf("Time for your weekly GTD review! Type `%s weekly` to start.", m.prefix())
	m.appendEntry(Entry{Author: botAuthor, Body: text, Reply: true, At: now})
	m.Status = StatusBar{Text: "weekly review reminder"}
	m.notify("Weekly review", text, NotifyInfo)
}

func (m *Model) notify(title, body string, level NotifyLevel) {
	if body == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}
