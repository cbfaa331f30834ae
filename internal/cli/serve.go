package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/model"
	"github.com/salama135/discord-bots/internal/web"
)

func newServeCmd(state *rootState) *cobra.Command {
	var (
		addr    string
		botName string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bot endpoint and the weekly reminder",
		Example: `  gtdbot serve
  gtdbot serve --addr :9090 --name gtdbot#0001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a.recorder.Record(ctx, model.SystemActor, model.BotStarted{
				BotUsername: botName,
				StartTime:   time.Now().UTC(),
			})
			a.logger.Info("bot started", slog.String("bot", botName), slog.String("prefix", a.cfg.Prefix))

			if a.cfg.Reminder.Enabled {
				reminder, err := a.weeklyReminder(nil)
				if err != nil {
					return err
				}
				go func() {
					if err := ignoreCanceled(reminder.Run(ctx)); err != nil {
						a.logger.Error("weekly reminder stopped", slog.Any("error", err))
					}
				}()
			}

			srv := web.NewServer(a.dispatcher, a.recorder, a.logger)
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&botName, "name", "gtdbot", "bot username recorded in BOT_STARTED")
	return cmd
}
