package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/salama135/discord-bots/internal/model"
)

const (
	KindWeeklyReview      = "weekly_review"
	DefaultReminderPeriod = 24 * time.Hour
)

type UserLister interface {
	Users(ctx context.Context) ([]string, error)
}

type Recorder interface {
	Record(ctx context.Context, actorID string, details model.Details) model.LogEntry
}

// Notifier delivers the weekly review nudge to one user.
type Notifier interface {
	NotifyWeeklyReview(ctx context.Context, userID string) error
}

// NopNotifier delivers nothing. Sweeps only record that a reminder would
// have gone out.
type NopNotifier struct{}

func (NopNotifier) NotifyWeeklyReview(context.Context, string) error { return nil }

// WeeklyReminder sweeps every stored user once per period.
type WeeklyReminder struct {
	users    UserLister
	recorder Recorder
	notifier Notifier
	logger   *slog.Logger
	period   time.Duration
	now      func() time.Time
}

type WeeklyOption func(*WeeklyReminder)

func WithPeriod(d time.Duration) WeeklyOption {
	return func(w *WeeklyReminder) {
		if d > 0 {
			w.period = d
		}
	}
}

func WithNotifier(n Notifier) WeeklyOption {
	return func(w *WeeklyReminder) {
		if n != nil {
			w.notifier = n
		}
	}
}

func WithLogger(logger *slog.Logger) WeeklyOption {
	return func(w *WeeklyReminder) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWeeklyReminder(users UserLister, recorder Recorder, opts ...WeeklyOption) (*WeeklyReminder, error) {
	if users == nil || recorder == nil {
		return nil, errors.New("scheduler: user lister and recorder are required")
	}
	w := &WeeklyReminder{
		users:    users,
		recorder: recorder,
		notifier: NopNotifier{},
		logger:   slog.Default(),
		period:   DefaultReminderPeriod,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Sweep records WEEKLY_REMINDER_SCHEDULED for every user with stored tasks
// and hands each to the notifier. It returns how many users were swept.
func (w *WeeklyReminder) Sweep(ctx context.Context) (int, error) {
	users, err := w.users.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	for _, userID := range users {
		w.logger.InfoContext(ctx, "weekly review reminder due", slog.String("user", userID))
		w.recorder.Record(ctx, model.SystemActor, model.WeeklyReminderScheduled{TargetUserID: userID})
		if err := w.notifier.NotifyWeeklyReview(ctx, userID); err != nil {
			w.logger.WarnContext(ctx, "weekly review notification failed",
				slog.String("user", userID), slog.Any("error", err))
		}
	}
	return len(users), nil
}

// Run sweeps once per period until ctx is cancelled. The first sweep
// happens one period after Run starts.
func (w *WeeklyReminder) Run(ctx context.Context) error {
	engine := NewEngine(1)
	engine.Start(ctx)
	defer engine.Stop()

	next := Job{ID: KindWeeklyReview, Kind: KindWeeklyReview, TriggerAt: w.now().Add(w.period)}
	if err := engine.Schedule(next); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "weekly reminder scheduled", slog.Time("at", next.TriggerAt))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-engine.C():
			if !ok {
				return ctx.Err()
			}
			if job.Kind != KindWeeklyReview {
				continue
			}
			n, err := w.Sweep(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "weekly reminder sweep failed", slog.Any("error", err))
			} else {
				w.logger.InfoContext(ctx, "weekly reminder sweep done", slog.Int("users", n))
			}
			job.TriggerAt = job.TriggerAt.Add(w.period)
			if err := engine.Schedule(job); err != nil {
				return err
			}
		}
	}
}
