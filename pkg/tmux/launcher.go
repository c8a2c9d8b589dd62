package tmux

import (
	"context"
	"strings"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/wm"
)

// OffloadEnv is added to the environment of offloaded launches so they
// render on the secondary GPU.
const OffloadEnv = "DRI_PRIME=1"

// Launcher starts apps in new tmux windows.
type Launcher struct {
	run     Runner
	command func(app wm.AppID) string
}

var _ wm.Launcher = (*Launcher)(nil)

// NewLauncher returns a launcher. command maps an app to the shell command
// that starts it; nil runs the app id itself.
func NewLauncher(r Runner, command func(app wm.AppID) string) *Launcher {
	return &Launcher{run: r, command: command}
}

// FavoriteCommands resolves commands from the favorites in cfg.
func FavoriteCommands(cfg func() *config.Config) func(wm.AppID) string {
	return func(app wm.AppID) string {
		if f := config.FindFavorite(cfg(), string(app)); f != nil && f.Command != "" {
			return f.Command
		}
		return string(app)
	}
}

// Launch opens a window running the app's command and tags it with the app
// id so it joins the right group even if the command differs.
func (l *Launcher) Launch(app wm.AppID, offload bool) error {
	cmd := string(app)
	if l.command != nil {
		cmd = l.command(app)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	args := []string{"new-window", "-P", "-F", "#{window_id}"}
	if offload {
		args = append(args, "-e", OffloadEnv)
	}
	args = append(args, cmd)
	out, err := l.run.Run(ctx, args...)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return nil
	}
	if _, err := l.run.Run(ctx, "set-option", "-w", "-t", id, OptApp, string(app)); err != nil {
		logger.Warn("tagging launched window failed", "window", id, "app", app, "err", err)
	}
	return nil
}
