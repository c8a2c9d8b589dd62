package group

import (
	"slices"

	"github.com/b/wingroup/pkg/wm"
)

type Lifecycle int

const (
	Active Lifecycle = iota
	Unmounting
)

func (l Lifecycle) String() string {
	if l == Unmounting {
		return "unmounting"
	}
	return "active"
}

// Teardown is returned by RemoveWindow. True asks the registry to dispose
// of the group.
type Teardown bool

// State is an immutable snapshot of a group. Slices are copies.
type State struct {
	App         wm.AppID
	Name        string
	Windows     []wm.WindowID
	LastFocused wm.WindowID
	Favorite    bool
	Lifecycle   Lifecycle

	HasFocus       bool
	NeedsAttention bool
	AttentionPhase bool // alternates while an attention flash runs

	Label        Label
	LabelVisible bool // presentation flag from the last allocation

	Progress    float64
	HasProgress bool

	BadgeText    string
	BadgeVisible bool

	PreviewOpen     bool
	ContextMenuOpen bool
	Dragging        bool
	FileDrag        bool
	Launching       bool
}

// WindowCount returns the number of member windows.
func (s State) WindowCount() int {
	return len(s.Windows)
}

func (c *Controller) snapshot() State {
	s := State{
		App:            c.app,
		Name:           c.name,
		Windows:        slices.Clone(c.windows),
		LastFocused:    c.lastFocused,
		Favorite:       c.favorite,
		Lifecycle:      c.lifecycle,
		HasFocus:       c.hasFocus,
		NeedsAttention: c.needsAttention,
		AttentionPhase: c.attentionPhase,
		Label:          c.label(),
		LabelVisible:   c.labelVisible,
		Progress:       c.progress,
		HasProgress:    c.hasProgress,
		BadgeText:      BadgeText(len(c.windows)),
		BadgeVisible:   c.badgeVisible(),
		Dragging:       c.dragging,
		FileDrag:       c.fileDrag,
		Launching:      c.launching,
	}
	if c.preview != nil {
		s.PreviewOpen = c.preview.IsOpen()
	}
	if c.menu != nil {
		s.ContextMenuOpen = c.menu.IsOpen()
	}
	return s
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	return c.snapshot()
}

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.nextListener++
	key := c.nextListener
	c.listeners[key] = fn
	return func() { delete(c.listeners, key) }
}

func (c *Controller) publish() {
	if len(c.listeners) == 0 {
		return
	}
	s := c.snapshot()
	keys := make([]int, 0, len(c.listeners))
	for k := range c.listeners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := c.listeners[k]; ok {
			fn(s)
		}
	}
}
