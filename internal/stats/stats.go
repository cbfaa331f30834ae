// Package stats derives rolling activity counters from the activity log.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salama135/discord-bots/internal/model"
)

const DefaultWindowDays = 7

// Counters are windowed counts over the activity log.
type Counters struct {
	TasksAdded     int `json:"tasksAdded"`
	TasksCompleted int `json:"tasksCompleted"`
	InboxProcessed int `json:"inboxProcessed"`
}

// Report pairs windowed counters with the unwindowed document snapshot.
type Report struct {
	WindowDays int          `json:"windowDays"`
	Since      time.Time    `json:"since"`
	Counters   Counters     `json:"counters"`
	Current    model.Counts `json:"current"`
}

// Period is the label STATS_VIEWED records for the window.
func (r Report) Period() string {
	return fmt.Sprintf("%ddays", r.WindowDays)
}

// Count tallies entries with a timestamp strictly after now-window.
func Count(entries []model.LogEntry, now time.Time, window time.Duration) Counters {
	cutoff := now.Add(-window)
	var c Counters
	for _, e := range entries {
		if !e.Timestamp.After(cutoff) {
			continue
		}
		switch d := e.Details.(type) {
		case model.TaskCaptured:
			c.TasksAdded++
		case model.TaskProcessed:
			c.InboxProcessed++
			if d.NewStatus == model.StatusDone {
				c.TasksCompleted++
			}
		}
	}
	return c
}

type EntrySource interface {
	Entries(ctx context.Context, actorID string) ([]model.LogEntry, error)
}

type Aggregator struct {
	source EntrySource
	now    func() time.Time
}

func NewAggregator(source EntrySource, now func() time.Time) (*Aggregator, error) {
	if source == nil {
		return nil, errors.New("stats: nil entry source")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Aggregator{source: source, now: now}, nil
}

func (a *Aggregator) Report(ctx context.Context, userID string, doc *model.Document, windowDays int) (Report, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	entries, err := a.source.Entries(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("read activity for %s: %w", userID, err)
	}
	now := a.now()
	window := time.Duration(windowDays) * 24 * time.Hour
	report := Report{
		WindowDays: windowDays,
		Since:      now.Add(-window),
		Counters:   Count(entries, now, window),
	}
	if doc != nil {
		report.Current = doc.Counts()
	}
	return report, nil
}
