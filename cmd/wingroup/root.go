package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/tmux"
)

// Version is set during build
var Version = "0.1.0-dev"

var (
	configFlag  string
	sessionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "wingroup",
	Short: "Grouped window list for tmux",
	Long: `wingroup shows the windows of a tmux server as one button per application.
Buttons carry a window count, progress and attention state; clicking them
activates, minimizes or cycles the windows behind them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "tmux session id (default: the current session)")

	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(ctlCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.DefaultConfigPath()
}

// sessionID returns the --session flag or asks tmux for the session of the
// calling client.
func sessionID(ctx context.Context, r tmux.Runner) (string, error) {
	if sessionFlag != "" {
		return sessionFlag, nil
	}
	return tmux.CurrentSession(ctx, r)
}
