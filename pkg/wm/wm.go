// Package wm describes windows as the group controller sees them: a window
// snapshot, the events a window manager emits about it, and the operations
// that can be invoked on it.
package wm

type WindowID string

// AppID identifies the application a window belongs to.
type AppID string

type Window struct {
	ID        WindowID
	App       AppID
	Title     string
	Focused   bool // has input focus (active window of the attached session)
	Minimized bool
	Workspace int
	Session   string
	Index     int
	Progress  float64 // 0 when the window reports none
	Attention bool    // demands attention
}

// Manager is the window-manager abstraction. Lookups read the latest known
// snapshot; operations act on the live window manager.
type Manager interface {
	Lookup(id WindowID) (Window, bool)
	Focused() (Window, bool)
	ActiveWorkspace() int
	Activate(id WindowID) error
	Minimize(id WindowID) error
	Unminimize(id WindowID) error
	Close(id WindowID) error
	SwitchWorkspace(ws int) error
	Subscribe(id WindowID, h Handler) (cancel func())
}

// Launcher starts new application instances.
type Launcher interface {
	Launch(app AppID, offload bool) error
}
