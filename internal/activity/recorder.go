// Package activity keeps each user's append-only event journal.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/salama135/discord-bots/internal/keylock"
	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/storage"
)

var (
	ErrNoLog         = errors.New("activity: no log for user")
	ErrUnknownFormat = errors.New("activity: unknown export format")
)

// Recorder appends entries to per-actor logs. Recording is best effort: a
// corrupt or unwritable log is reported on the operational logger and never
// fails the caller. Only a log that exists but does not decode is replaced;
// any other read failure skips the write so history is never overwritten.
type Recorder struct {
	backend storage.Backend
	logger  *slog.Logger
	now     func() time.Time

	locks *keylock.Map
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRecorder(backend storage.Backend, opts ...Option) (*Recorder, error) {
	if backend == nil {
		return nil, errors.New("activity: nil backend")
	}
	r := &Recorder{
		backend: backend,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
		locks:   keylock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Recorder) Record(ctx context.Context, actorID string, details model.Details) model.LogEntry {
	entry := model.NewLogEntry(r.now().UTC().Round(0), actorID, details)

	unlock := r.locks.Lock(actorID)
	defer unlock()

	r.appendEntry(ctx, actorID, entry)

	detailsJSON, _ := entry.DetailsJSON()
	r.logger.InfoContext(ctx, "activity",
		slog.String("user", actorID),
		slog.String("event", string(entry.EventType)),
		slog.String("details", string(detailsJSON)))
	return entry
}

func (r *Recorder) appendEntry(ctx context.Context, actorID string, entry model.LogEntry) {
	entries, err := r.load(ctx, actorID)
	if err != nil {
		var corrupt *storage.CorruptionError
		if !errors.As(err, &corrupt) {
			r.logger.ErrorContext(ctx, "activity log read failed, entry not persisted",
				slog.String("user", actorID), slog.String("event", string(entry.EventType)), slog.Any("error", err))
			return
		}
		r.logger.WarnContext(ctx, "activity log corrupt, starting fresh",
			slog.String("user", actorID), slog.Any("error", err))
		entries = nil
	}
	entries = append(entries, entry)

	if err := r.store(ctx, actorID, entries); err != nil {
		r.logger.ErrorContext(ctx, "activity log write failed",
			slog.String("user", actorID), slog.String("event", string(entry.EventType)), slog.Any("error", err))
	}
}

// Entries returns the actor's full log, oldest first. A missing log is
// empty; a corrupt one is an error.
func (r *Recorder) Entries(ctx context.Context, actorID string) ([]model.LogEntry, error) {
	entries, err := r.load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return entries, nil
}

// Recent returns up to n entries, most recent first.
func (r *Recorder) Recent(ctx context.Context, actorID string, n int) ([]model.LogEntry, error) {
	entries, err := r.Entries(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]model.LogEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

func (r *Recorder) load(ctx context.Context, actorID string) ([]model.LogEntry, error) {
	data, err := r.backend.Read(ctx, storage.KindActivity, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &storage.CorruptionError{Kind: storage.KindActivity, Key: actorID, Err: err}
	}
	return entries, nil
}

func (r *Recorder) store(ctx context.Context, actorID string, entries []model.LogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode activity log: %w", err)
	}
	return r.backend.Write(ctx, storage.KindActivity, actorID, data)
}
