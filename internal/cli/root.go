package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/salama135/discord-bots/internal/config"
	"github.com/salama135/discord-bots/internal/logging"
)

var version = "0.1.0"

// rootState carries what PersistentPreRunE resolved to the subcommands.
type rootState struct {
	cfgFile string
	envFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

func (s *rootState) open() (*app, error) {
	if s.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return openApp(s.cfg, s.logger)
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	state := &rootState{}

	rootCmd := &cobra.Command{
		Use:     "gtdbot",
		Short:   "A Getting Things Done chat bot.",
		Long:    "gtdbot captures tasks, walks you through processing your inbox and keeps an activity log of everything you do.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFiles := []string{}
			if state.envFile != "" {
				envFiles = append(envFiles, state.envFile)
			}
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := config.Load(state.cfgFile)
			if err != nil {
				return err
			}
			if state.verbose {
				cfg.Log.Level = "debug"
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&state.cfgFile, "config", "c", "", "config file (default is ./gtdbot.yaml or $HOME/.gtdbot/gtdbot.yaml)")
	rootCmd.PersistentFlags().StringVar(&state.envFile, "env-file", "", "dotenv file to load (default is ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(state),
		newChatCmd(state),
		newRunCmd(state),
		newExportCmd(state),
		newLogsCmd(state),
		newRemindCmd(state),
		newUsersCmd(state),
	)
	return rootCmd
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
