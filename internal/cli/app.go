package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/salama135/discord-bots/internal/activity"
	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/config"
	"github.com/salama135/discord-bots/internal/engine"
	"github.com/salama135/discord-bots/internal/scheduler"
	"github.com/salama135/discord-bots/internal/stats"
	"github.com/salama135/discord-bots/internal/storage"
	"github.com/salama135/discord-bots/internal/taskstore"
)

// app is the fully wired bot behind every subcommand.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	backend    storage.Backend
	tasks      *taskstore.Store
	recorder   *activity.Recorder
	engine     *engine.Engine
	dispatcher *commands.Dispatcher
}

func openBackend(cfg *config.Config, codec storage.Codec) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return storage.OpenSQLite(cfg.Storage.SQLitePath)
	case "file", "":
		return storage.NewFileBackend(afero.NewOsFs(), cfg.Storage.Root, storage.WithTaskExtension(codec.Extension()))
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	codec, err := storage.NewCodec(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(cfg, codec)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, backend: backend}
	if err := a.wire(codec); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(codec storage.Codec) error {
	var err error
	if a.tasks, err = taskstore.New(a.backend, codec); err != nil {
		return err
	}
	if a.recorder, err = activity.NewRecorder(a.backend, activity.WithLogger(a.logger)); err != nil {
		return err
	}
	agg, err := stats.NewAggregator(a.recorder, func() time.Time { return time.Now().UTC() })
	if err != nil {
		return err
	}
	if a.engine, err = engine.New(a.tasks, a.recorder, agg); err != nil {
		return err
	}
	a.dispatcher, err = commands.NewDispatcher(a.engine, a.recorder,
		commands.WithLogger(a.logger),
		commands.WithPrefix(a.cfg.Prefix),
		commands.WithStatsWindow(a.cfg.Stats.WindowDays),
	)
	return err
}

func (a *app) weeklyReminder(notifier scheduler.Notifier) (*scheduler.WeeklyReminder, error) {
	return scheduler.NewWeeklyReminder(a.tasks, a.recorder,
		scheduler.WithPeriod(a.cfg.Reminder.Interval),
		scheduler.WithNotifier(notifier),
		scheduler.WithLogger(a.logger),
	)
}

func (a *app) Close() error {
	if a == nil || a.backend == nil {
		return nil
	}
	return a.backend.Close()
}
