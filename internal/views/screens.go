package views

import (
	"fmt"
	"strings"

	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/engine"
	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/stats"
)

const (
	emptyInbox     = "Your inbox is empty. Great job processing everything!"
	emptyNext      = "You have no next actions. Process some tasks from your inbox!"
	emptyProjects  = "You have no active projects."
	emptyWaiting   = "You have no tasks in the waiting list."
	emptySomeday   = "You have no tasks in the Someday/Maybe list."
	emptyCompleted = "You have no completed tasks yet."

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05 UTC"
)

// RenderReply turns a dispatch outcome into the markdown reply a chat user
// sees. Non-success outcomes carry their own message.
func RenderReply(out commands.Outcome, prefix string) string {
	if out.Kind != commands.KindSuccess {
		return out.Message
	}
	if prefix == "" {
		prefix = commands.DefaultPrefix
	}

	switch p := out.Payload.(type) {
	case model.Task:
		return fmt.Sprintf("✅ Task captured: %q", p.Content)
	case commands.TaskList:
		return renderTaskList(p)
	case engine.ProcessResult:
		return renderProcessed(p)
	case []engine.ProjectSummary:
		return renderProjects(p)
	case engine.ProjectView:
		return section("Project: "+p.Name, "", numbered(p.Tasks, plainContent))
	case engine.CompletedView:
		return renderCompleted(p)
	case engine.ReviewSummary:
		return renderReview(p)
	case []model.LogEntry:
		return renderActivity(p)
	case stats.Report:
		return renderStats(p)
	case []engine.HelpEntry:
		return renderHelp(p, prefix)
	}
	return out.Message
}

func section(title, description string, fields []string) string {
	var b strings.Builder
	b.WriteString("### " + title + "\n")
	if description != "" {
		b.WriteString(description + "\n")
	}
	for _, f := range fields {
		b.WriteString("\n" + f)
	}
	return strings.TrimSpace(b.String())
}

func field(name, value string) string {
	return "**" + name + "**  \n" + value + "\n"
}

func plainContent(t model.Task) string { return t.Content }

func numbered(tasks []model.Task, value func(model.Task) string) []string {
	fields := make([]string, 0, len(tasks))
	for i, t := range tasks {
		fields = append(fields, field(fmt.Sprintf("#%d", i+1), value(t)))
	}
	return fields
}

func renderTaskList(list commands.TaskList) string {
	switch list.View {
	case commands.NameInbox:
		if len(list.Tasks) == 0 {
			return emptyInbox
		}
		return section("📥 Inbox", "Tasks waiting to be processed:", numbered(list.Tasks, plainContent))
	case commands.NameNext:
		if len(list.Tasks) == 0 {
			return emptyNext
		}
		return section("⚡ Next Actions", "Tasks you can do now:", numbered(list.Tasks, plainContent))
	case commands.NameWaiting:
		if len(list.Tasks) == 0 {
			return emptyWaiting
		}
		return section("⏳ Waiting For", "", numbered(list.Tasks, func(t model.Task) string {
			if t.WaitingFor == "" {
				return t.Content
			}
			return fmt.Sprintf("%s (Waiting for: %s)", t.Content, t.WaitingFor)
		}))
	case commands.NameSomeday:
		if len(list.Tasks) == 0 {
			return emptySomeday
		}
		return section("🔮 Someday/Maybe", "", numbered(list.Tasks, plainContent))
	}
	return ""
}

func renderProcessed(res engine.ProcessResult) string {
	content := res.Task.Content
	switch res.Destination {
	case model.DestinationNextAction:
		return fmt.Sprintf("✅ Task moved to Next Actions: %q", content)
	case model.DestinationProject:
		return fmt.Sprintf("✅ Task added to project %q: %q", res.Task.Project, content)
	case model.DestinationWaiting:
		return fmt.Sprintf("✅ Task moved to Waiting: %q", content)
	case model.DestinationSomeday:
		return fmt.Sprintf("✅ Task moved to Someday/Maybe: %q", content)
	case model.DestinationDone:
		return fmt.Sprintf("🎉 Task completed: %q", content)
	}
	return fmt.Sprintf("✅ Task processed: %q", content)
}

func renderProjects(list []engine.ProjectSummary) string {
	if len(list) == 0 {
		return emptyProjects
	}
	fields := make([]string, 0, len(list))
	for _, p := range list {
		unit := "tasks"
		if p.Count == 1 {
			unit = "task"
		}
		fields = append(fields, field(p.Name, fmt.Sprintf("%d %s", p.Count, unit)))
	}
	return section("📂 Projects", "", fields)
}

func renderCompleted(view engine.CompletedView) string {
	if len(view.Tasks) == 0 {
		return emptyCompleted
	}
	return section("✅ Completed Tasks", "", numbered(view.Tasks, func(t model.Task) string {
		if t.Completed == nil {
			return t.Content
		}
		return fmt.Sprintf("%s (Completed: %s)", t.Content, t.Completed.Format(dateLayout))
	}))
}

func renderReview(summary engine.ReviewSummary) string {
	fields := make([]string, 0, len(summary.Steps)+1)
	for i, step := range summary.Steps {
		fields = append(fields, field(fmt.Sprintf("%d. %s", i+1, step.Title), strings.Join(step.Items, "  \n")))
	}
	c := summary.Counts
	fields = append(fields, field("Current System", fmt.Sprintf(
		"Inbox: %d items  \nNext Actions: %d items  \nProjects: %d  \nWaiting For: %d items  \nSomeday/Maybe: %d items",
		c.Inbox, c.NextActions, c.Projects, c.Waiting, c.Someday)))
	return section("🔄 Weekly Review", "Follow these steps for your weekly review:", fields)
}

func renderActivity(entries []model.LogEntry) string {
	fields := make([]string, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, field(e.Timestamp.UTC().Format(dateTimeLayout), DetailText(e)))
	}
	return section("📊 Recent Activity", fmt.Sprintf("Your recent GTD activity (last %d events):", len(entries)), fields)
}

// DetailText is the one-line human summary of a log entry.
func DetailText(e model.LogEntry) string {
	switch d := e.Details.(type) {
	case model.TaskCaptured:
		return fmt.Sprintf("Added task: %q", d.Content)
	case model.TaskProcessed:
		return fmt.Sprintf("Processed task from inbox to %s", d.NewStatus)
	}
	name := string(e.EventType)
	if strings.HasSuffix(name, "_VIEWED") {
		return "Viewed " + strings.ToLower(strings.TrimSuffix(name, "_VIEWED"))
	}
	return name
}

func renderStats(r stats.Report) string {
	c := r.Current
	return section(fmt.Sprintf("📈 GTD Statistics (Last %d Days)", r.WindowDays), "", []string{
		field("Tasks Captured", fmt.Sprint(r.Counters.TasksAdded)),
		field("Tasks Completed", fmt.Sprint(r.Counters.TasksCompleted)),
		field("Inbox Items Processed", fmt.Sprint(r.Counters.InboxProcessed)),
		field("Current System Status", fmt.Sprintf(
			"Inbox: %d items  \nNext Actions: %d items  \nProjects: %d  \nWaiting For: %d items",
			c.Inbox, c.NextActions, c.Projects, c.Waiting)),
	})
}

func renderHelp(entries []engine.HelpEntry, prefix string) string {
	fields := make([]string, 0, len(entries))
	for _, h := range entries {
		fields = append(fields, field(prefix+" "+h.Usage, h.Description))
	}
	return section("GTD Bot - Help", "Getting Things Done productivity bot", fields)
}
