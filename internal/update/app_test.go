package update

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/salama135/discord-bots/internal/commands"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	texts []string
	out   commands.Outcome
}

func (f *fakeDispatcher) DispatchText(_ context.Context, _ string, text string) (commands.Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.out, strings.HasPrefix(text, commands.DefaultPrefix)
}

func (f *fakeDispatcher) Prefix() string { return commands.DefaultPrefix }

func newTestModel(t *testing.T, d Dispatcher, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithFs(afero.NewMemMapFs())}, opts...)
	return NewModel(d, DefaultChatConfig(), opts...)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	if m.UserID != DefaultChatUser {
		t.Fatalf("expected default user %q, got %q", DefaultChatUser, m.UserID)
	}
	if m.Keys.Quit != "esc" || m.Keys.Send != "enter" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if !strings.Contains(m.View(), "user: local") {
		t.Fatalf("header missing from view:\n%s", m.View())
	}
}

func TestSendPrefixesAndRendersReply(t *testing.T) {
	d := &fakeDispatcher{out: commands.Outcome{
		Kind:    commands.KindSuccess,
		Command: commands.NameInbox,
		Payload: commands.TaskList{View: commands.NameInbox},
	}}
	m := newTestModel(t, d)

	updated, cmd := m.Update(SendMsg{Text: "  inbox "})
	next := updated.(Model)
	if cmd == nil || !next.Pending {
		t.Fatal("expected a pending dispatch")
	}
	if len(next.Transcript) != 1 || next.Transcript[0].Body != "!gtd inbox" {
		t.Fatalf("unexpected transcript: %+v", next.Transcript)
	}
	if len(next.History) != 1 || next.History[0] != "inbox" {
		t.Fatalf("unexpected history: %v", next.History)
	}

	msg := dispatchCmd(d, next.UserID, "!gtd inbox")()
	updated, _ = next.Update(msg)
	next = updated.(Model)
	if next.Pending {
		t.Fatal("reply should clear pending")
	}
	last := next.Transcript[len(next.Transcript)-1]
	if !last.Reply || last.Body != "Your inbox is empty. Great job processing everything!" {
		t.Fatalf("unexpected reply entry: %+v", last)
	}
	if next.Status.Text != commands.NameInbox || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
}

func TestSendIgnoresBlankAndBusy(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	updated, cmd := m.Update(SendMsg{Text: "   "})
	if cmd != nil || len(updated.(Model).Transcript) != 0 {
		t.Fatal("blank input should be ignored")
	}

	m.Pending = true
	updated, cmd = m.Update(SendMsg{Text: "inbox"})
	next := updated.(Model)
	if cmd != nil || len(next.Transcript) != 0 || !strings.Contains(next.Status.Text, "still waiting") {
		t.Fatalf("expected busy rejection, got %+v", next.Status)
	}
}

func TestErrorOutcomeSetsErrorStatus(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	m.Pending = true
	updated, _ := m.Update(ReplyMsg{
		Request: "!gtd inbox",
		Handled: true,
		Outcome: commands.Outcome{Kind: commands.KindError, Command: commands.NameInbox, Message: commands.MsgFailure},
	})
	next := updated.(Model)
	if !next.Status.IsError || next.Status.Text != commands.MsgFailure {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	if len(next.Notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(next.Notifications))
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" || !next.Status.IsError {
		t.Fatalf("unexpected error state: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestNilDispatcherReportsError(t *testing.T) {
	msg := dispatchCmd(nil, "local", "!gtd inbox")()
	if _, ok := msg.(AppErrorMsg); !ok {
		t.Fatalf("expected AppErrorMsg, got %T", msg)
	}
}

func TestHistoryRecall(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	m.remember("add one")
	m.remember("inbox")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	next := updated.(Model)
	if next.input.Value() != "inbox" {
		t.Fatalf("expected latest history entry, got %q", next.input.Value())
	}
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyUp})
	next = updated.(Model)
	if next.input.Value() != "add one" {
		t.Fatalf("expected older history entry, got %q", next.input.Value())
	}
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.(Model).Update(tea.KeyMsg{Type: tea.KeyDown})
	if v := updated.(Model).input.Value(); v != "" {
		t.Fatalf("expected empty input past newest entry, got %q", v)
	}
}

func TestHistoryPersistsAcrossSessions(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultChatConfig()
	cfg.HistoryPath = "/home/u/.gtdbot/history.json"
	cfg.HistoryLimit = 2

	m := NewModel(&fakeDispatcher{}, cfg, WithFs(fs))
	m.remember("add a")
	m.remember("add b")
	m.remember("add b")
	m.remember("inbox")

	reloaded := NewModel(&fakeDispatcher{}, cfg, WithFs(fs))
	if len(reloaded.History) != 2 || reloaded.History[0] != "add b" || reloaded.History[1] != "inbox" {
		t.Fatalf("unexpected reloaded history: %v", reloaded.History)
	}
	if reloaded.Status.IsError {
		t.Fatalf("unexpected status: %+v", reloaded.Status)
	}
}

func TestReminderFeed(t *testing.T) {
	feed := NewReminderFeed(1)
	m := newTestModel(t, &fakeDispatcher{}, WithReminders(feed.C()))

	if err := feed.NotifyWeeklyReview(t.Context(), "someone-else"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := feed.NotifyWeeklyReview(t.Context(), "local"); !errors.Is(err, ErrFeedFull) {
		t.Fatalf("expected full feed, got %v", err)
	}

	updated, cmd := m.Update(waitForReminderCmd(feed.C())())
	next := updated.(Model)
	if cmd == nil || len(next.Transcript) != 0 {
		t.Fatal("reminders for other users must be ignored but keep listening")
	}

	if err := feed.NotifyWeeklyReview(t.Context(), "local"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	updated, _ = next.Update(waitForReminderCmd(feed.C())())
	next = updated.(Model)
	if len(next.Transcript) != 1 || !strings.Contains(next.Transcript[0].Body, "!gtd weekly") {
		t.Fatalf("unexpected transcript: %+v", next.Transcript)
	}
}

func TestQuitAndClear(t *testing.T) {
	m := newTestModel(t, &fakeDispatcher{})
	m.appendEntry(Entry{Author: "local", Body: "!gtd inbox"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if n := len(updated.(Model).Transcript); n != 0 {
		t.Fatalf("expected cleared transcript, got %d entries", n)
	}

	updated, cmd := updated.(Model).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
