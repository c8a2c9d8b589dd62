package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/b/wingroup/pkg/colors"
	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/daemon"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/panel"
	"github.com/b/wingroup/pkg/paths"
	"github.com/b/wingroup/pkg/perf"
	"github.com/b/wingroup/pkg/tmux"
)

var errNoTerminal = errors.New("panel needs a terminal; run it in a tmux pane")

var perfFlag bool

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Run the window list in the current pane",
	Long: `Run the window list in the current pane. The panel polls tmux, reloads its
config when the file changes and refreshes at once on SIGUSR1.`,
	Args: cobra.NoArgs,
	RunE: runPanel,
}

func init() {
	panelCmd.Flags().BoolVar(&perfFlag, "perf", false, "log hot path timings to the panel log (same as WINGROUP_PERF=1)")
}

// enableTracing turns timing on when asked for by flag or environment.
// Timings are logged at debug level, so tracing raises the log level.
func enableTracing(on bool) {
	if on {
		perf.SetEnabled(true)
	}
	if perf.IsEnabled() {
		logger.SetLevel("debug")
	}
}

func runPanel(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	path := configPath()
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		logger.SetLevel(cfg.LogLevel)
	}

	// The terminal belongs to the UI from here on.
	if _, err := paths.EnsureStateDir(); err != nil {
		return err
	}
	logFile, err := logger.ToFile(paths.StatePath("panel.log"))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	enableTracing(perfFlag)

	runner := tmux.Exec{}
	session, err := sessionID(cmd.Context(), runner)
	if err != nil {
		return fmt.Errorf("find tmux session: %w", err)
	}

	lipgloss.SetColorProfile(termenv.ANSI256)

	var m *panel.Model
	launcher := tmux.NewLauncher(runner, tmux.FavoriteCommands(func() *config.Config { return m.Config() }))
	m = panel.New(panel.Options{
		Backend:    tmux.NewManager(runner, tmux.NewResolver(cfg.Rules)),
		Launcher:   launcher,
		Config:     cfg,
		ConfigPath: path,
		Background: colors.NewBackgroundDetector(),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	m.Attach(p.Send)

	server := daemon.NewServer(session, panel.Forward(p.Send))
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if stop, err := config.Watch(path, func() { p.Send(panel.ConfigChangedMsg{}) }); err != nil {
		logger.Warn("config watch unavailable", "path", path, "err", err)
	} else {
		defer stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			p.Send(panel.RefreshMsg{})
		}
	}()

	logger.Info("panel started", "session", session, "config", path)
	_, err = p.Run()
	return err
}
