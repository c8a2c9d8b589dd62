// Package wmtest provides an in-memory window manager for tests.
package wmtest

import (
	"fmt"
	"sort"

	"github.com/b/wingroup/pkg/wm"
)

// Fake records every operation in Calls ("activate @1", "switch 2") and
// publishes events on its bus when tests mutate windows.
type Fake struct {
	*wm.Bus
	Windows   map[wm.WindowID]wm.Window
	Workspace int
	Calls     []string
	Launches  []string
	// Fail makes the named operation ("activate", "launch", ...) return an error.
	Fail map[string]error
}

var _ wm.Manager = (*Fake)(nil)
var _ wm.Launcher = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Bus:     wm.NewBus(),
		Windows: make(map[wm.WindowID]wm.Window),
		Fail:    make(map[string]error),
	}
}

// Add registers a window and publishes WindowAdded.
func (f *Fake) Add(w wm.Window) {
	f.Windows[w.ID] = w
	f.Publish(wm.Event{Type: wm.WindowAdded, Window: w})
}

// Remove forgets a window and publishes WindowRemoved.
func (f *Fake) Remove(id wm.WindowID) {
	w, ok := f.Windows[id]
	if !ok {
		w = wm.Window{ID: id}
	}
	delete(f.Windows, id)
	f.Publish(wm.Event{Type: wm.WindowRemoved, Window: w})
}

// Focus gives id input focus, removing it from every other window, and
// publishes FocusChanged for each window whose state flipped.
func (f *Fake) Focus(id wm.WindowID) {
	for _, wid := range f.ids() {
		w := f.Windows[wid]
		want := wid == id
		if w.Focused == want {
			continue
		}
		w.Focused = want
		if want {
			w.Minimized = false
		}
		f.Windows[wid] = w
		f.Publish(wm.Event{Type: wm.FocusChanged, Window: w})
	}
}

// Update replaces a window snapshot and publishes ev with it.
func (f *Fake) Update(w wm.Window, ev wm.EventType) {
	old := f.Windows[w.ID]
	f.Windows[w.ID] = w
	f.Publish(wm.Event{Type: ev, Window: w, OldApp: old.App})
}

func (f *Fake) ids() []wm.WindowID {
	ids := make([]wm.WindowID, 0, len(f.Windows))
	for id := range f.Windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// List returns every window ordered by id.
func (f *Fake) List() []wm.Window {
	out := make([]wm.Window, 0, len(f.Windows))
	for _, id := range f.ids() {
		out = append(out, f.Windows[id])
	}
	return out
}

func (f *Fake) Lookup(id wm.WindowID) (wm.Window, bool) {
	w, ok := f.Windows[id]
	return w, ok
}

func (f *Fake) Focused() (wm.Window, bool) {
	for _, id := range f.ids() {
		if w := f.Windows[id]; w.Focused {
			return w, true
		}
	}
	return wm.Window{}, false
}

func (f *Fake) ActiveWorkspace() int {
	return f.Workspace
}

func (f *Fake) record(op string, arg interface{}) error {
	f.Calls = append(f.Calls, fmt.Sprintf("%s %v", op, arg))
	return f.Fail[op]
}

func (f *Fake) Activate(id wm.WindowID) error {
	if err := f.record("activate", id); err != nil {
		return err
	}
	f.Focus(id)
	return nil
}

func (f *Fake) Minimize(id wm.WindowID) error {
	if err := f.record("minimize", id); err != nil {
		return err
	}
	if w, ok := f.Windows[id]; ok {
		was := w.Focused
		w.Minimized = true
		w.Focused = false
		f.Windows[id] = w
		if was {
			f.Publish(wm.Event{Type: wm.FocusChanged, Window: w})
		}
	}
	return nil
}

func (f *Fake) Unminimize(id wm.WindowID) error {
	if err := f.record("unminimize", id); err != nil {
		return err
	}
	if w, ok := f.Windows[id]; ok {
		w.Minimized = false
		f.Windows[id] = w
	}
	return nil
}

func (f *Fake) Close(id wm.WindowID) error {
	return f.record("close", id)
}

func (f *Fake) SwitchWorkspace(ws int) error {
	if err := f.record("switch", ws); err != nil {
		return err
	}
	f.Workspace = ws
	return nil
}

func (f *Fake) Launch(app wm.AppID, offload bool) error {
	name := string(app)
	if offload {
		name += " (offload)"
	}
	f.Launches = append(f.Launches, name)
	return f.Fail["launch"]
}

// Reset clears recorded calls and launches.
func (f *Fake) Reset() {
	f.Calls = nil
	f.Launches = nil
}
