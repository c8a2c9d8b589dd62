package panel

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/menu"
	"github.com/b/wingroup/pkg/wm"
)

type keyMap struct {
	Activate key.Binding
	Next     key.Binding
	Prev     key.Binding
	Select   key.Binding
	Close    key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Activate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "activate group"),
		),
		Next:    key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "next entry")),
		Prev:    key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/k", "previous entry")),
		Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "choose entry")),
		Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close menu")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// digitIndex maps "1".."9" to 0..8 and "0" to 9.
func digitIndex(s string) int {
	if s == "0" {
		return 9
	}
	return int(s[0] - '1')
}

type pressState struct {
	app    wm.AppID
	button group.Button
	x, y   int
}

type dragState struct {
	app    wm.AppID
	axis   group.Axis
	target int
}

const dragThreshold = 2

func buttonFor(b tea.MouseButton) (group.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return group.ButtonPrimary, true
	case tea.MouseButtonMiddle:
		return group.ButtonMiddle, true
	case tea.MouseButtonRight:
		return group.ButtonSecondary, true
	}
	return 0, false
}

func modsFor(msg tea.MouseMsg) group.Modifiers {
	var mods group.Modifiers
	if msg.Shift {
		mods |= group.ModShift
	}
	if msg.Ctrl {
		mods |= group.ModCtrl
	}
	if msg.Alt {
		mods |= group.ModAlt
	}
	return mods
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Paste {
		m.fileDrop()
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Activate):
		if err := m.activate(digitIndex(msg.String())); err != nil {
			m.log.Debug("key activation ignored", "key", msg.String(), "err", err)
		}
	case key.Matches(msg, m.keys.Next):
		m.stepMenu(1)
	case key.Matches(msg, m.keys.Prev):
		m.stepMenu(-1)
	case key.Matches(msg, m.keys.Select):
		m.chooseHovered()
	case key.Matches(msg, m.keys.Close):
		m.closeMenus()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}
	return nil
}

func (m *Model) closeMenus() {
	m.reg.CloseAllRightClickMenus()
	m.reg.CloseAllHoverMenus()
}

// openMenu returns the group whose preview or context menu is showing.
func (m *Model) openMenu() (*group.Controller, *menus, regionKind) {
	for _, g := range m.reg.Groups() {
		mm, ok := m.menus[g.App()]
		if !ok {
			continue
		}
		if mm.context.IsOpen() {
			return g, mm, regionContext
		}
		if mm.preview.IsOpen() {
			return g, mm, regionPreview
		}
	}
	return nil, nil, regionButton
}

func (m *Model) stepMenu(delta int) {
	g, mm, kind := m.openMenu()
	switch kind {
	case regionPreview:
		mm.preview.Step(delta)
	case regionContext:
		n := len(menu.ContextItems(g.Snapshot()))
		if n == 0 {
			return
		}
		i := mm.context.Hovered()
		if i < 0 {
			if delta > 0 {
				i = 0
			} else {
				i = n - 1
			}
		} else {
			i = ((i+delta)%n + n) % n
		}
		mm.context.Hover(i)
	}
}

func (m *Model) chooseHovered() {
	g, mm, kind := m.openMenu()
	switch kind {
	case regionPreview:
		if id, ok := mm.preview.Hovered(); ok {
			g.ActivateWindow(id)
		}
	case regionContext:
		items := menu.ContextItems(g.Snapshot())
		if i := mm.context.Hovered(); i >= 0 && i < len(items) {
			m.runContextItem(g, items[i])
		}
	}
}

func (m *Model) runContextItem(g *group.Controller, it menu.Item) {
	switch it.Action {
	case menu.ActionNewWindow:
		g.Launch(false)
	case menu.ActionNewWindowOffloaded:
		g.Launch(true)
	case menu.ActionTogglePin:
		g.CloseContextMenu()
		if err := m.reg.TogglePin(g.App()); err != nil {
			m.log.Warn("toggling pin failed", "app", g.App(), "err", err)
		}
	case menu.ActionCloseAll:
		g.CloseAll()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	r, hit := m.regionAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		m.mousePress(msg, r, hit)
	case tea.MouseActionRelease:
		m.mouseRelease(msg, r, hit)
	case tea.MouseActionMotion:
		m.mouseMotion(msg, r, hit)
	}
	return nil
}

func (m *Model) mousePress(msg tea.MouseMsg, r region, hit bool) {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		if hit && r.kind != regionButton {
			m.stepMenu(delta)
		}
		return
	}
	b, ok := buttonFor(msg.Button)
	if !ok {
		return
	}
	if !hit {
		m.closeMenus()
		return
	}
	switch r.kind {
	case regionButton:
		g, ok := m.reg.Group(r.app)
		if !ok {
			return
		}
		m.press = &pressState{app: r.app, button: b, x: msg.X, y: msg.Y}
		g.ButtonPress(b)
	default:
		rr := r
		m.menuPress = &rr
	}
}

func (m *Model) mouseRelease(msg tea.MouseMsg, r region, hit bool) {
	if m.drag != nil {
		m.finishDrag()
		return
	}
	if p := m.press; p != nil {
		m.press = nil
		g, ok := m.reg.Group(p.app)
		if !ok {
			return
		}
		if hit && r.kind == regionButton && r.app == p.app {
			g.ButtonRelease(p.button, modsFor(msg))
		} else {
			g.CancelPress()
		}
		return
	}
	if mp := m.menuPress; mp != nil {
		m.menuPress = nil
		if hit && r == *mp {
			m.chooseRegion(r)
		}
	}
}

func (m *Model) chooseRegion(r region) {
	g, ok := m.reg.Group(r.app)
	if !ok {
		return
	}
	switch r.kind {
	case regionPreview:
		g.ActivateWindow(r.window)
	case regionContext:
		items := menu.ContextItems(g.Snapshot())
		if r.index < len(items) {
			m.runContextItem(g, items[r.index])
		}
	}
}

func (m *Model) mouseMotion(msg tea.MouseMsg, r region, hit bool) {
	if p := m.press; p != nil && msg.Button == tea.MouseButtonLeft && p.button == group.ButtonPrimary {
		if m.drag == nil && m.passedThreshold(p, msg) {
			m.beginDrag(p)
		}
	}
	if m.drag != nil {
		if hit && r.kind == regionButton {
			if i := m.buttonIndex(r.app); i >= 0 {
				m.drag.target = i
			}
		}
		return
	}
	m.hover(r, hit)
}

func (m *Model) passedThreshold(p *pressState, msg tea.MouseMsg) bool {
	dx, dy := abs(msg.X-p.x), abs(msg.Y-p.y)
	if group.ParsePosition(m.Config().Position).Vertical() {
		return dy >= 1
	}
	return dx >= dragThreshold
}

func (m *Model) beginDrag(p *pressState) {
	g, ok := m.reg.Group(p.app)
	if !ok {
		return
	}
	axis, ok := g.DragBegin()
	if !ok {
		return
	}
	m.press = nil
	m.drag = &dragState{app: p.app, axis: axis, target: m.buttonIndex(p.app)}
}

func (m *Model) finishDrag() {
	d := m.drag
	m.drag = nil
	g, ok := m.reg.Group(d.app)
	if !ok {
		return
	}
	if d.target < 0 {
		g.DragCancel()
		return
	}
	if err := m.reg.Move(d.app, d.target); err != nil {
		m.log.Warn("reordering failed", "app", d.app, "err", err)
		g.DragCancel()
		return
	}
	g.DragEnd()
}

// hover tracks the pointer for menus and for foreign drops.
func (m *Model) hover(r region, hit bool) {
	app := wm.AppID("")
	if hit && r.kind == regionButton {
		app = r.app
	}
	if app != m.hoverApp {
		m.leaveDrop()
		m.hoverApp = app
	}

	if hit && r.kind == regionPreview {
		if mm, ok := m.menus[r.app]; ok {
			mm.preview.HoverWindow(r.window)
		}
		if m.inPreview != r.app {
			m.leavePreview()
			if g, ok := m.reg.Group(r.app); ok {
				g.PreviewEntered()
				m.inPreview = r.app
			}
		}
		return
	}
	m.leavePreview()
	if hit && r.kind == regionContext {
		if mm, ok := m.menus[r.app]; ok {
			mm.context.Hover(r.index)
		}
	}
}

func (m *Model) leavePreview() {
	if m.inPreview == "" {
		return
	}
	if g, ok := m.reg.Group(m.inPreview); ok {
		g.PreviewLeft()
	}
	m.inPreview = ""
}

// fileDrop treats a paste while the pointer rests on a button as something
// dragged onto it from outside the panel.
func (m *Model) fileDrop() {
	if m.hoverApp == "" {
		return
	}
	g, ok := m.reg.Group(m.hoverApp)
	if !ok {
		return
	}
	g.DragOver(group.DragForeign)
	m.dropApp = m.hoverApp
}

func (m *Model) leaveDrop() {
	if m.dropApp == "" {
		return
	}
	if g, ok := m.reg.Group(m.dropApp); ok {
		g.DragLeave()
	}
	m.dropApp = ""
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
