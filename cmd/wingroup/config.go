package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/b/wingroup/pkg/colors"
	"github.com/b/wingroup/pkg/config"
)

var forceFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wingroup configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with every default filled in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !forceFlag {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.SaveConfig(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse and validate the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d favorites, %d rules)\n", path, len(cfg.Favorites), len(cfg.Rules))
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the built-in theme presets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range colors.ListPresets() {
			t := colors.Presets[name]
			swatch := lipgloss.NewStyle().
				Foreground(lipgloss.Color(t.FocusedFg)).
				Background(lipgloss.Color(t.FocusedBg)).
				Padding(0, 1).
				Render("vim")
			plain := lipgloss.NewStyle().
				Foreground(lipgloss.Color(t.Fg)).
				Background(lipgloss.Color(t.Bg)).
				Padding(0, 1).
				Render("htop")
			fmt.Fprintf(out, "%-16s %s%s\n", name, swatch, plain)
		}
		fmt.Fprintf(out, "%-16s follows the terminal background\n", config.ThemeAuto)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceFlag, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configThemesCmd)
}
