package tmux

import (
	"path"
	"regexp"
	"strings"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/wm"
)

type rule struct {
	re  *regexp.Regexp
	app wm.AppID
}

// Resolver decides which app a window belongs to. An explicit OptApp wins,
// then the first rule matching the pane command or window name, then the
// pane command itself.
type Resolver struct {
	rules []rule
}

func NewResolver(rules []config.Rule) *Resolver {
	res := &Resolver{}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			logger.Warn("skipping rule", "pattern", r.Pattern, "err", err)
			continue
		}
		res.rules = append(res.rules, rule{re: re, app: wm.AppID(r.App)})
	}
	return res
}

func (r *Resolver) Resolve(w Window) wm.AppID {
	if w.App != "" {
		return wm.AppID(w.App)
	}
	for _, rl := range r.rules {
		if rl.re.MatchString(w.Command) || rl.re.MatchString(w.Name) {
			return rl.app
		}
	}
	return normalizeCommand(w.Command)
}

// normalizeCommand strips the login-shell dash and any directory.
func normalizeCommand(cmd string) wm.AppID {
	cmd = strings.TrimPrefix(strings.TrimSpace(cmd), "-")
	if cmd == "" {
		return ""
	}
	return wm.AppID(path.Base(cmd))
}

// Convert maps a tmux window to the window-manager view. current is the
// session id of the attached client; only its active window has focus.
func (r *Resolver) Convert(w Window, current string) wm.Window {
	return wm.Window{
		ID:        wm.WindowID(w.ID),
		App:       r.Resolve(w),
		Title:     w.Title(),
		Focused:   w.Active && w.SessionID == current && !w.Minimized,
		Minimized: w.Minimized,
		Workspace: sessionNumber(w.SessionID),
		Session:   w.Session,
		Index:     w.Index,
		Progress:  parseProgress(w.Progress),
		Attention: w.Bell,
	}
}
