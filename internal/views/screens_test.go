package views

import (
	"strings"
	"testing"
	"time"

	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/engine"
	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/stats"
)

func ok(payload any) commands.Outcome {
	return commands.Outcome{Kind: commands.KindSuccess, Payload: payload}
}

func TestRenderReplyEmptyViews(t *testing.T) {
	cases := []struct {
		out  commands.Outcome
		want string
	}{
		{ok(commands.TaskList{View: commands.NameInbox}), "Your inbox is empty. Great job processing everything!"},
		{ok(commands.TaskList{View: commands.NameNext}), "You have no next actions. Process some tasks from your inbox!"},
		{ok(commands.TaskList{View: commands.NameWaiting}), "You have no tasks in the waiting list."},
		{ok(commands.TaskList{View: commands.NameSomeday}), "You have no tasks in the Someday/Maybe list."},
		{ok([]engine.ProjectSummary{}), "You have no active projects."},
		{ok(engine.CompletedView{}), "You have no completed tasks yet."},
	}
	for _, tc := range cases {
		if got := RenderReply(tc.out, ""); got != tc.want {
			t.Fatalf("payload %#v rendered %q, want %q", tc.out.Payload, got, tc.want)
		}
	}
}

func TestRenderReplyNonSuccessUsesMessage(t *testing.T) {
	out := commands.Outcome{Kind: commands.KindValidationError, Message: "Please provide a task description."}
	if got := RenderReply(out, "!gtd"); got != out.Message {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestRenderReplyTaskViews(t *testing.T) {
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	done := created.Add(time.Hour)

	reply := RenderReply(ok(commands.TaskList{View: commands.NameWaiting, Tasks: []model.Task{
		{ID: 1, Content: "Contract", Status: model.StatusWaiting, WaitingFor: "Legal", Created: created},
		{ID: 2, Content: "Invoice", Status: model.StatusWaiting, Created: created},
	}}), "")
	for _, want := range []string{"⏳ Waiting For", "**#1**", "Contract (Waiting for: Legal)", "**#2**", "Invoice"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("waiting reply missing %q:\n%s", want, reply)
		}
	}

	reply = RenderReply(ok(engine.CompletedView{Tasks: []model.Task{
		{ID: 3, Content: "Ship", Status: model.StatusDone, Created: created, Completed: &done},
	}, Total: 1}), "")
	if !strings.Contains(reply, "Ship (Completed: 2026-02-09)") {
		t.Fatalf("unexpected completed reply:\n%s", reply)
	}

	reply = RenderReply(ok([]engine.ProjectSummary{{Name: "Home", Count: 1}, {Name: "Q3", Count: 2}}), "")
	if !strings.Contains(reply, "1 task\n") || !strings.Contains(reply, "2 tasks") {
		t.Fatalf("unexpected projects reply:\n%s", reply)
	}
}

func TestRenderReplyProcessMessages(t *testing.T) {
	task := model.Task{Content: "Buy milk", Project: "Errands"}
	cases := map[model.Destination]string{
		model.DestinationNextAction: `✅ Task moved to Next Actions: "Buy milk"`,
		model.DestinationProject:    `✅ Task added to project "Errands": "Buy milk"`,
		model.DestinationWaiting:    `✅ Task moved to Waiting: "Buy milk"`,
		model.DestinationSomeday:    `✅ Task moved to Someday/Maybe: "Buy milk"`,
		model.DestinationDone:       `🎉 Task completed: "Buy milk"`,
	}
	for dest, want := range cases {
		got := RenderReply(ok(engine.ProcessResult{Task: task, Destination: dest}), "")
		if got != want {
			t.Fatalf("%s: got %q, want %q", dest, got, want)
		}
	}
	if got := RenderReply(ok(task), ""); got != `✅ Task captured: "Buy milk"` {
		t.Fatalf("unexpected capture reply %q", got)
	}
}

func TestRenderReplyStatsAndHelp(t *testing.T) {
	report := stats.Report{
		WindowDays: 7,
		Counters:   stats.Counters{TasksAdded: 4, TasksCompleted: 1, InboxProcessed: 2},
		Current:    model.Counts{Inbox: 2, NextActions: 1, Projects: 1},
	}
	reply := RenderReply(ok(report), "")
	for _, want := range []string{"📈 GTD Statistics (Last 7 Days)", "Tasks Captured", "Inbox Items Processed", "Inbox: 2 items"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("stats reply missing %q:\n%s", want, reply)
		}
	}

	reply = RenderReply(ok(engine.CommandReference), "!todo")
	if !strings.Contains(reply, "GTD Bot - Help") || !strings.Contains(reply, "!todo add [task]") {
		t.Fatalf("unexpected help reply:\n%s", reply)
	}
}

func TestDetailText(t *testing.T) {
	ts := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		details model.Details
		want    string
	}{
		{model.TaskCaptured{TaskID: 1, Content: "Buy milk"}, `Added task: "Buy milk"`},
		{model.TaskProcessed{TaskID: 1, OldStatus: model.StatusInbox, NewStatus: model.StatusDone}, "Processed task from inbox to done"},
		{model.NextActionsViewed{Count: 2}, "Viewed next_actions"},
		{model.HelpViewed{}, "HELP_VIEWED"},
	}
	for _, tc := range cases {
		if got := DetailText(model.NewLogEntry(ts, "U1", tc.details)); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestActivityTable(t *testing.T) {
	ts := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	out := ActivityTable([]model.LogEntry{
		model.NewLogEntry(ts, "U1", model.TaskCaptured{TaskID: 1, Content: "Buy milk"}),
		model.NewLogEntry(ts, "U1", model.InboxViewed{Count: 1}),
	})
	for _, want := range []string{"TASK_CAPTURED", "Viewed inbox", "2026-02-09 12:00:00 UTC"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestUserTable(t *testing.T) {
	ts := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	out := UserTable([]UserRow{{ID: "42", UpdatedAt: ts}, {ID: "43"}})
	for _, want := range []string{"Last Updated", "42", "2026-02-09 12:00:00 UTC", "43", "unknown"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChat(t *testing.T) {
	out := RenderChat(ChatFrame{Header: "gtdbot", Transcript: RenderUserLine("U1", "!gtd inbox"), Input: "> ", StatusLine: "ready", Width: 60})
	if !strings.Contains(out, "gtdbot") || !strings.Contains(out, "!gtd inbox") {
		t.Fatalf("unexpected frame:\n%s", out)
	}
	if RenderMarkdown("   ") != "" {
		t.Fatal("blank markdown should render empty")
	}
}
