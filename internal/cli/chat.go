package cli

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/logging"
	"github.com/salama135/discord-bots/internal/update"
)

func newChatCmd(state *rootState) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in an interactive terminal session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the TUI owns the terminal, so operational logs are dropped
			state.logger = logging.Discard()
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			chatCfg := update.ChatConfig{
				UserID:               a.cfg.Chat.User,
				DesktopNotifications: a.cfg.Chat.DesktopNotifications,
				HistoryLimit:         a.cfg.Chat.HistoryLimit,
				HistoryPath:          a.cfg.Chat.HistoryFile,
			}
			if user != "" {
				chatCfg.UserID = user
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			opts := []update.Option{update.WithDesktopNotifier(update.ExecDesktopNotifier{})}
			if a.cfg.Reminder.Enabled {
				feed := update.NewReminderFeed(8)
				reminder, err := a.weeklyReminder(feed)
				if err != nil {
					return err
				}
				go func() {
					if err := ignoreCanceled(reminder.Run(ctx)); err != nil {
						a.logger.Error("weekly reminder stopped", slog.Any("error", err))
					}
				}()
				opts = append(opts, update.WithReminders(feed.C()))
			}

			program := tea.NewProgram(update.NewModel(a.dispatcher, chatCfg, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id to chat as (overrides chat.user)")
	return cmd
}
