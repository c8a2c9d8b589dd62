// Package paths provides centralized path resolution for wingroup's config and state files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/wingroup/config.yaml   (override: WINGROUP_CONFIG_DIR)
//	State:   ~/.local/state/wingroup/         (override: WINGROUP_STATE_DIR)
//	Runtime: /tmp/wingroup-*                  (socket and pidfile)
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	configDirOnce   sync.Once
	configDirCached string

	stateDirOnce   sync.Once
	stateDirCached string
)

// ConfigDir resolves the config directory.
// Priority: WINGROUP_CONFIG_DIR env > ~/.config/wingroup/
func ConfigDir() string {
	configDirOnce.Do(func() {
		configDirCached = resolve("WINGROUP_CONFIG_DIR", ".config", "wingroup")
	})
	return configDirCached
}

// StateDir resolves the state directory.
// Priority: WINGROUP_STATE_DIR env > ~/.local/state/wingroup/
func StateDir() string {
	stateDirOnce.Do(func() {
		stateDirCached = resolve("WINGROUP_STATE_DIR", ".local", "state", "wingroup")
	})
	return stateDirCached
}

func resolve(env string, rel ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{home}, rel...)...)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StatePath returns the full path to a state file (e.g. "panel.log").
func StatePath(filename string) string {
	return filepath.Join(StateDir(), filename)
}

// SocketPath returns the control socket path for a tmux session.
func SocketPath(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return fmt.Sprintf("/tmp/wingroup-%s.sock", sessionID)
}

// PidPath returns the pidfile path for a tmux session.
func PidPath(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return fmt.Sprintf("/tmp/wingroup-%s.pid", sessionID)
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureStateDir creates the state directory if it doesn't exist and returns its path.
func EnsureStateDir() (string, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
	stateDirOnce = sync.Once{}
	stateDirCached = ""
}
