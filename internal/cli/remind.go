package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/storage"
	"github.com/salama135/discord-bots/internal/views"
)

func newRemindCmd(state *rootState) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the weekly review reminder sweep",
		Long:  "Without --once the sweep repeats every reminder.interval until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			reminder, err := a.weeklyReminder(nil)
			if err != nil {
				return err
			}
			if !once {
				return ignoreCanceled(reminder.Run(cmd.Context()))
			}
			n, err := reminder.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "weekly reminder scheduled for %d user(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "sweep a single time and exit")
	return cmd
}

func newUsersCmd(state *rootState) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users with stored tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.tasks.Users(cmd.Context())
			if err != nil {
				return err
			}
			if !long {
				for _, u := range users {
					fmt.Fprintln(cmd.OutOrStdout(), u)
				}
				return nil
			}

			rows := make([]views.UserRow, 0, len(users))
			for _, u := range users {
				updated, err := a.tasks.UpdatedAt(cmd.Context(), u)
				if err != nil && !errors.Is(err, storage.ErrNotFound) {
					return err
				}
				rows = append(rows, views.UserRow{ID: u, UpdatedAt: updated})
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.UserTable(rows))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show when each user's tasks last changed")
	return cmd
}
