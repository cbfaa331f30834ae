package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/views"
)

func newRunCmd(state *rootState) *cobra.Command {
	var (
		user  string
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a single bot command as a user",
		Example: `  gtdbot run --user 42 add Buy milk
  gtdbot run --user 42 process 1 project Q3 Launch
  gtdbot run --user 42 --plain inbox`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			inv, err := commands.NewInvocation(a.cfg.Prefix, args[0], args[1:])
			if err != nil {
				return err
			}
			out := a.dispatcher.Dispatch(cmd.Context(), user, inv)

			reply := views.RenderReply(out, a.dispatcher.Prefix())
			if !plain {
				reply = views.RenderMarkdown(reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			if out.Kind == commands.KindError {
				return errors.New(out.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the reply as raw markdown")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
