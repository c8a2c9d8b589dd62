package group

import (
	"fmt"
	"testing"
	"time"

	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/wm"
	"github.com/b/wingroup/pkg/wm/wmtest"
)

type fakeRegistry struct {
	calls []string
}

func (r *fakeRegistry) CloseAllHoverMenus()      { r.calls = append(r.calls, "close-hover") }
func (r *fakeRegistry) CloseAllRightClickMenus() { r.calls = append(r.calls, "close-menus") }
func (r *fakeRegistry) UpdateFocusState(app wm.AppID) {
	r.calls = append(r.calls, "focus "+string(app))
}
func (r *fakeRegistry) UpdateAppGroupIndexes(app wm.AppID) {
	r.calls = append(r.calls, "reindex "+string(app))
}

type fakePreview struct {
	open      bool
	entries   []wm.WindowID
	destroyed int
}

func (p *fakePreview) Open()        { p.open = true }
func (p *fakePreview) Close()       { p.open = false }
func (p *fakePreview) IsOpen() bool { return p.open }
func (p *fakePreview) AddWindow(id wm.WindowID) {
	p.entries = append(p.entries, id)
}
func (p *fakePreview) RemoveWindow(id wm.WindowID) {
	for i, e := range p.entries {
		if e == id {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}
func (p *fakePreview) MoveToFront(id wm.WindowID) {
	p.RemoveWindow(id)
	p.entries = append([]wm.WindowID{id}, p.entries...)
}
func (p *fakePreview) Destroy() { p.open = false; p.destroyed++ }

type fakeMenu struct {
	open      bool
	destroyed int
}

func (m *fakeMenu) Open()        { m.open = true }
func (m *fakeMenu) Close()       { m.open = false }
func (m *fakeMenu) IsOpen() bool { return m.open }
func (m *fakeMenu) Destroy()     { m.open = false; m.destroyed++ }

type harness struct {
	t        *testing.T
	wm       *wmtest.Fake
	sched    *loop.Manual
	registry *fakeRegistry
	preview  *fakePreview
	menu     *fakeMenu
	c        *Controller
}

func testSettings() Settings {
	return Settings{
		LabelMode:            LabelTitle,
		MaxWidth:             24,
		ShowBadge:            true,
		BadgeMinCount:        2,
		EnableDrag:           true,
		KeyActivationTimeout: 1500 * time.Millisecond,
		Animation:            "flash",
		Clicks:               DefaultClickMap(),
		Position:             PositionTop,
		Direction:            LTR,
		PanelSize:            1,
	}
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		wm:       wmtest.New(),
		sched:    loop.NewManual(),
		registry: &fakeRegistry{},
		preview:  &fakePreview{},
		menu:     &fakeMenu{},
	}
	h.wm.Workspace = 1
	opts := Options{
		App:       "vim",
		Settings:  testSettings(),
		WM:        h.wm,
		Launcher:  h.wm,
		Registry:  h.registry,
		Scheduler: h.sched,
		Preview:   h.preview,
		Menu:      h.menu,
	}
	for _, m := range mutate {
		m(&opts)
	}
	h.c = New(opts)
	return h
}

// add creates a window in the fake window manager and adds it to the group.
func (h *harness) add(id string, mutate ...func(*wm.Window)) wm.WindowID {
	w := wm.Window{ID: wm.WindowID(id), App: "vim", Title: "title " + id, Workspace: 1}
	for _, m := range mutate {
		m(&w)
	}
	h.wm.Add(w)
	h.c.AddWindow(w.ID)
	return w.ID
}

func (h *harness) click(b Button, mods Modifiers) {
	h.c.ButtonPress(b)
	h.c.ButtonRelease(b, mods)
}

func focused(w *wm.Window)   { w.Focused = true }
func minimized(w *wm.Window) { w.Minimized = true }

func onWorkspace(ws int) func(*wm.Window) {
	return func(w *wm.Window) { w.Workspace = ws }
}

func withProgress(p float64) func(*wm.Window) {
	return func(w *wm.Window) { w.Progress = p }
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("@%d", i+1)
	}
	return out
}
