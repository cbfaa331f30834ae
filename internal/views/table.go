package views

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/salama135/discord-bots/internal/model"
)

// ActivityTable renders log entries as a terminal table, one row per entry
// in the order given.
func ActivityTable(entries []model.LogEntry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("Time"),
		text.FgGreen.Sprintf("Event"),
		text.FgGreen.Sprintf("Detail"),
	})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Timestamp.UTC().Format(dateTimeLayout),
			eventColor(e.EventType).Sprintf("%s", e.EventType),
			DetailText(e),
		})
	}
	return t.Render()
}

// UserRow is one stored user and when their tasks last changed. A zero
// UpdatedAt renders as unknown.
type UserRow struct {
	ID        string
	UpdatedAt time.Time
}

func UserTable(rows []UserRow) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("User"),
		text.FgGreen.Sprintf("Last Updated"),
	})
	for _, r := range rows {
		updated := "unknown"
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.UTC().Format(dateTimeLayout)
		}
		t.AppendRow(table.Row{r.ID, updated})
	}
	return t.Render()
}

func eventColor(et model.EventType) text.Color {
	switch et {
	case model.EventTaskCaptured:
		return text.FgHiBlue
	case model.EventTaskProcessed:
		return text.FgHiGreen
	case model.EventError, model.EventUnknownCommand:
		return text.FgHiRed
	}
	return text.FgHiWhite
}
