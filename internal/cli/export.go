package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/activity"
	"github.com/salama135/discord-bots/internal/views"
)

func newExportCmd(state *rootState) *cobra.Command {
	var (
		user   string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's activity log as JSON or CSV",
		Example: `  gtdbot export --user 42
  gtdbot export --user 42 --format csv --output 42.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.recorder.Export(cmd.Context(), user, format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s log for %s to %s\n", format, user, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&format, "format", "f", activity.FormatJSON, "json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newLogsCmd(state *rootState) *cobra.Command {
	var (
		user  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show a user's most recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := state.open()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.recorder.Recent(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity logs found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.ActivityTable(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries, newest first")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
