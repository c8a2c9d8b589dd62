package group

import (
	"fmt"
	"slices"
	"strings"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/wm"
)

type Button int

const (
	ButtonPrimary Button = iota + 1
	ButtonMiddle
	ButtonSecondary
)

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButton accepts the config spelling and the usual mouse aliases.
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "left":
		return ButtonPrimary, nil
	case "middle":
		return ButtonMiddle, nil
	case "secondary", "right":
		return ButtonSecondary, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

func ParseModifiers(names []string) (Modifiers, error) {
	var m Modifiers
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModCtrl
		case "alt", "meta":
			m |= ModAlt
		default:
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

type Action int

const (
	NoAction Action = iota
	LaunchNewInstance
	LaunchNewInstanceOffloaded
	CloseLastFocused
	ToggleMinimizeOrCycle
	OpenThumbnailMenu
	OpenContextMenu
)

var actionNames = map[string]Action{
	config.ActionNone:            NoAction,
	config.ActionLaunch:          LaunchNewInstance,
	config.ActionLaunchOffloaded: LaunchNewInstanceOffloaded,
	config.ActionClose:           CloseLastFocused,
	config.ActionToggle:          ToggleMinimizeOrCycle,
	config.ActionPreview:         OpenThumbnailMenu,
	config.ActionMenu:            OpenContextMenu,
}

func ParseAction(s string) (Action, error) {
	if a, ok := actionNames[s]; ok {
		return a, nil
	}
	return NoAction, fmt.Errorf("%w: %q", config.ErrInvalidAction, s)
}

func (a Action) String() string {
	for name, v := range actionNames {
		if v == a {
			return name
		}
	}
	return "unknown"
}

func (a Action) launches() bool {
	return a == LaunchNewInstance || a == LaunchNewInstanceOffloaded
}

// Chord is a button together with the modifiers held when it was pressed.
type Chord struct {
	Button Button
	Mods   Modifiers
}

// ClickMap maps chords to actions.
type ClickMap map[Chord]Action

// Lookup returns the action for a chord. A chord with modifiers that has no
// binding of its own falls back to the bare button.
func (m ClickMap) Lookup(b Button, mods Modifiers) Action {
	if a, ok := m[Chord{b, mods}]; ok {
		return a
	}
	if mods != 0 {
		if a, ok := m[Chord{b, 0}]; ok {
			return a
		}
	}
	if b == ButtonSecondary {
		return OpenContextMenu
	}
	return NoAction
}

// DefaultClickMap is the binding set used when nothing is configured.
func DefaultClickMap() ClickMap {
	return ClickMap{
		{ButtonPrimary, 0}:                  ToggleMinimizeOrCycle,
		{ButtonMiddle, 0}:                   LaunchNewInstance,
		{ButtonSecondary, 0}:                OpenContextMenu,
		{ButtonPrimary, ModShift}:           LaunchNewInstance,
		{ButtonPrimary, ModCtrl | ModShift}: LaunchNewInstanceOffloaded,
	}
}

// ClickMapFromConfig builds the binding set from the config. Entries that do
// not parse are skipped; config.Validate reports them at load time.
func ClickMapFromConfig(c config.Clicks) ClickMap {
	m := DefaultClickMap()
	set := func(b Button, mods Modifiers, name string) {
		if name == "" {
			return
		}
		if a, err := ParseAction(name); err == nil {
			m[Chord{b, mods}] = a
		}
	}
	set(ButtonPrimary, 0, c.Primary)
	set(ButtonMiddle, 0, c.Middle)
	set(ButtonSecondary, 0, c.Secondary)
	for _, mb := range c.Modified {
		b, err := ParseButton(mb.Button)
		if err != nil {
			continue
		}
		mods, err := ParseModifiers(mb.Modifiers)
		if err != nil {
			continue
		}
		set(b, mods, mb.Action)
	}
	return m
}

// ButtonPress records a press. Only a release preceded by a press on the
// same button is acted on.
func (c *Controller) ButtonPress(b Button) {
	if !c.active() {
		return
	}
	c.pressed[b] = true
}

// ButtonRelease runs the action bound to the chord. It reports whether the
// release was consumed.
func (c *Controller) ButtonRelease(b Button, mods Modifiers) bool {
	if !c.active() || !c.pressed[b] {
		return false
	}
	delete(c.pressed, b)
	c.dispatch(b, mods)
	return true
}

// CancelPress forgets a press, e.g. when the pointer leaves the button or a
// drag begins.
func (c *Controller) CancelPress() {
	clear(c.pressed)
}

func (c *Controller) dispatch(b Button, mods Modifiers) {
	action := c.settings.Clicks.Lookup(b, mods)
	c.log.Debug("click", "button", b, "mods", mods, "action", action)

	if action.launches() && ((b == ButtonPrimary && mods != 0) || b == ButtonMiddle) {
		c.launch(action == LaunchNewInstanceOffloaded)
		return
	}

	switch b {
	case ButtonMiddle:
		if action == CloseLastFocused && len(c.windows) > 0 && c.lastFocused != "" {
			c.try("close", c.lastFocused, c.wm.Close(c.lastFocused))
		}
	case ButtonPrimary:
		c.primary(action)
	case ButtonSecondary:
		if action == NoAction {
			return
		}
		if action == OpenContextMenu {
			c.toggleContextMenu()
			return
		}
		c.primary(action)
	}
}

// primary runs a primary-button action. An empty favorite launches
// regardless of the binding.
func (c *Controller) primary(action Action) {
	n := len(c.windows)
	if n == 0 {
		if c.favorite {
			c.launch(false)
		}
		return
	}
	if action == NoAction {
		return
	}
	switch {
	case action.launches():
		c.launch(action == LaunchNewInstanceOffloaded)
	case action == OpenContextMenu:
		c.toggleContextMenu()
	case action == CloseLastFocused:
		c.try("close", c.lastFocused, c.wm.Close(c.lastFocused))
	case n > 1 && action == ToggleMinimizeOrCycle && c.settings.CycleWindows:
		c.cycleOrToggle()
	case n == 1:
		c.minimizeOrRestore(c.windows[0])
	case action == OpenThumbnailMenu:
		c.TogglePreview()
	default:
		c.minimizeOrRestore(c.lastFocused)
	}
}

// cycleOrToggle acts on the focused member: if it holds display focus the
// next member is activated, otherwise the focused member is restored. With
// no focused member the first one is used.
func (c *Controller) cycleOrToggle() {
	target := c.windows[0]
	for _, id := range c.windows {
		if w, ok := c.lookup(id); ok && w.Focused {
			target = id
			break
		}
	}
	if w, ok := c.lookup(target); ok && w.Focused && !w.Minimized {
		c.restore(c.nextWindow(target))
		return
	}
	c.minimizeOrRestore(target)
}

func (c *Controller) nextWindow(id wm.WindowID) wm.WindowID {
	i := slices.Index(c.windows, id)
	return c.windows[(i+1)%len(c.windows)]
}

// minimizeOrRestore minimizes id if it holds display focus, otherwise brings
// it back: unminimize, switch to its workspace and activate.
func (c *Controller) minimizeOrRestore(id wm.WindowID) {
	w, ok := c.lookup(id)
	if !ok {
		return
	}
	if w.Focused && !w.Minimized {
		c.try("minimize", id, c.wm.Minimize(id))
		return
	}
	c.restore(id)
}

func (c *Controller) restore(id wm.WindowID) {
	w, ok := c.lookup(id)
	if !ok {
		return
	}
	if w.Minimized && !c.try("unminimize", id, c.wm.Unminimize(id)) {
		return
	}
	if w.Workspace != c.wm.ActiveWorkspace() {
		if !c.try("switch-workspace", id, c.wm.SwitchWorkspace(w.Workspace)) {
			return
		}
	}
	c.try("activate", id, c.wm.Activate(id))
}

// launch starts a new instance. Failure is logged and otherwise invisible.
func (c *Controller) launch(offload bool) {
	if c.launcher == nil {
		return
	}
	if err := c.launcher.Launch(c.app, offload); err != nil {
		c.log.Warn("launch failed", "offload", offload, "err", fmt.Errorf("%w: %w", ErrLaunchFailed, err))
		return
	}
	c.log.Info("launched", "offload", offload)
	if c.settings.Animation == config.AnimationNone || c.sched == nil {
		return
	}
	c.stopTask(&c.launchTask)
	c.launching = true
	c.launchTask = c.sched.AfterFunc(launchAnimation, func() {
		c.launchTask = nil
		if !c.active() {
			return
		}
		c.launching = false
		c.publish()
	})
	c.publish()
}

// OpenPreview opens the preview menu after asking every other surface on
// the panel to close. Opening an open preview does nothing.
func (c *Controller) OpenPreview() {
	if !c.active() || c.preview == nil || c.preview.IsOpen() {
		return
	}
	if c.registry != nil {
		c.registry.CloseAllRightClickMenus()
		c.registry.CloseAllHoverMenus()
	}
	c.preview.Open()
	c.publish()
}

// ClosePreview closes the preview menu and drops keyboard state tied to it.
func (c *Controller) ClosePreview() {
	if !c.active() {
		return
	}
	c.closePreview()
	c.publish()
}

func (c *Controller) closePreview() {
	c.stopTask(&c.keyCloseTask)
	c.keyPreview = false
	c.previewEntered = false
	if c.preview != nil && c.preview.IsOpen() {
		c.preview.Close()
	}
}

func (c *Controller) TogglePreview() {
	if c.preview != nil && c.preview.IsOpen() {
		c.ClosePreview()
		return
	}
	c.OpenPreview()
}

// CloseMenus closes both surfaces. The registry calls it for close-all.
func (c *Controller) CloseMenus() {
	c.CloseContextMenu()
	c.ClosePreview()
}

func (c *Controller) CloseContextMenu() {
	if !c.active() || c.menu == nil || !c.menu.IsOpen() {
		return
	}
	c.menu.Close()
	c.publish()
}

func (c *Controller) toggleContextMenu() {
	if c.menu == nil {
		return
	}
	if c.menu.IsOpen() {
		c.CloseContextMenu()
		return
	}
	if c.registry != nil {
		c.registry.CloseAllRightClickMenus()
		c.registry.CloseAllHoverMenus()
	}
	c.menu.Open()
	c.publish()
}

// Launch starts a new instance on behalf of a menu entry.
func (c *Controller) Launch(offload bool) {
	if !c.active() {
		return
	}
	c.CloseMenus()
	c.launch(offload)
}

// ActivateWindow brings a member back from the preview and closes it.
func (c *Controller) ActivateWindow(id wm.WindowID) {
	if !c.active() || !c.contains(id) {
		return
	}
	c.restore(id)
	c.ClosePreview()
}

// CloseAll asks every member window to close.
func (c *Controller) CloseAll() {
	if !c.active() {
		return
	}
	c.CloseMenus()
	for _, id := range slices.Clone(c.windows) {
		c.try("close", id, c.wm.Close(id))
	}
}
