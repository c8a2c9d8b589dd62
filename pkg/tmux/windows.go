package tmux

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// ansiEscapeRegex matches ANSI escape sequences
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\].*?(?:\x07|\x1b\\)`)

// stripANSI removes ANSI escape sequences from a string
func stripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Window options the panel reads and writes.
const (
	OptApp       = "@wingroup_app"
	OptProgress  = "@wingroup_progress"
	OptMinimized = "@wingroup_minimized"
)

// Window is one tmux window as list-windows reports it.
type Window struct {
	ID        string
	Index     int
	Name      string
	Active    bool // active window of its session
	Bell      bool
	SessionID string
	Session   string
	Command   string // command of the active pane
	PaneTitle string
	Host      string
	App       string // OptApp
	Progress  string // OptProgress
	Minimized bool   // OptMinimized
}

// Title is the pane title when a program set one, the window name otherwise.
// tmux defaults pane titles to the host name.
func (w Window) Title() string {
	if w.PaneTitle != "" && w.PaneTitle != w.Host {
		return w.PaneTitle
	}
	return w.Name
}

var windowFields = []string{
	"#{window_id}",
	"#{window_index}",
	"#{window_name}",
	"#{window_active}",
	"#{window_bell_flag}",
	"#{session_id}",
	"#{session_name}",
	"#{pane_current_command}",
	"#{pane_title}",
	"#{host}",
	"#{" + OptApp + "}",
	"#{" + OptProgress + "}",
	"#{" + OptMinimized + "}",
}

// ListWindows returns the windows of every session.
func ListWindows(ctx context.Context, r Runner) ([]Window, error) {
	out, err := r.Run(ctx, "list-windows", "-a", "-F", strings.Join(windowFields, "\x1f"))
	if err != nil {
		return nil, err
	}
	return parseWindows(out), nil
}

func parseWindows(out string) []Window {
	var windows []Window
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < len(windowFields) {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			ID:        parts[0],
			Index:     index,
			Name:      stripANSI(parts[2]),
			Active:    parts[3] == "1",
			Bell:      parts[4] == "1",
			SessionID: parts[5],
			Session:   parts[6],
			Command:   stripANSI(parts[7]),
			PaneTitle: stripANSI(parts[8]),
			Host:      parts[9],
			App:       strings.TrimSpace(parts[10]),
			Progress:  strings.TrimSpace(parts[11]),
			Minimized: parts[12] == "1",
		})
	}
	return windows
}

// CurrentSession returns the id of the session of the calling client.
func CurrentSession(ctx context.Context, r Runner) (string, error) {
	out, err := r.Run(ctx, "display-message", "-p", "#{session_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// sessionNumber turns a session id like "$3" into 3.
func sessionNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "$"))
	if err != nil {
		return -1
	}
	return n
}

func parseProgress(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return min(v, 100)
}
