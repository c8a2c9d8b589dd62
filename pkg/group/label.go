package group

import "github.com/b/wingroup/pkg/wm"

type LabelMode string

const (
	LabelNone         LabelMode = "none"
	LabelTitle        LabelMode = "title"
	LabelApplication  LabelMode = "application"
	LabelFocusedTitle LabelMode = "focused_title"
)

// Label is the policy decision for a button's text. Visible is the
// preference; the layout pass may still decline to draw it.
type Label struct {
	Text    string
	Visible bool
}

// FocusContext is pushed in by the registry on every focus change so the
// label policy never has to query global state.
type FocusContext struct {
	GroupHasFocus bool
	FocusedApp    wm.AppID // app of the globally focused window, "" if none
	FocusedKnown  bool     // FocusedApp belongs to a group the panel tracks
}

type LabelInputs struct {
	Mode        LabelMode
	App         wm.AppID
	AppName     string
	WindowCount int
	Title       string // title of the last-focused window
	Focus       FocusContext
}

// ComputeLabel is the label policy. It depends on nothing but its input.
func ComputeLabel(in LabelInputs) Label {
	if in.WindowCount == 0 {
		return Label{}
	}
	switch in.Mode {
	case LabelTitle:
		return Label{Text: in.Title, Visible: true}
	case LabelApplication:
		return Label{Text: in.AppName, Visible: true}
	case LabelFocusedTitle:
		l := Label{Text: in.Title}
		f := in.Focus
		if f.FocusedApp != "" && f.FocusedApp != in.App && !f.FocusedKnown {
			return l
		}
		l.Visible = f.GroupHasFocus
		return l
	}
	return Label{}
}

func (c *Controller) labelInputs() LabelInputs {
	in := LabelInputs{
		Mode:        c.settings.LabelMode,
		App:         c.app,
		AppName:     c.name,
		WindowCount: len(c.windows),
		Focus:       c.focusCtx,
	}
	in.Focus.GroupHasFocus = c.focusCtx.GroupHasFocus || c.hasFocus
	if w, ok := c.lookup(c.lastFocused); ok {
		in.Title = w.Title
	}
	return in
}

func (c *Controller) label() Label {
	return ComputeLabel(c.labelInputs())
}
