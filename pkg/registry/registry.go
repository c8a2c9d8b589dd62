// Package registry owns the groups shown on the panel. It routes window
// events to the group of each window's app, keeps favorites pinned in their
// configured order and enforces that only one menu is open at a time.
package registry

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/wm"
)

// Source is the window manager as the registry needs it.
type Source interface {
	wm.Manager
	SubscribeAll(h wm.Handler) (cancel func())
	List() []wm.Window
}

// MenuFactory builds the two menus of a new group.
type MenuFactory func(app wm.AppID) (group.PreviewMenu, group.ContextMenu)

type Options struct {
	Source    Source
	Launcher  wm.Launcher
	Scheduler loop.Scheduler
	Config    *config.Config
	// ConfigPath is where favorite changes are saved. Empty disables saving.
	ConfigPath string
	Menus      MenuFactory
}

type Registry struct {
	src        Source
	launcher   wm.Launcher
	sched      loop.Scheduler
	cfg        *config.Config
	configPath string
	menus      MenuFactory
	settings   group.Settings
	log        *log.Logger

	groups         []*group.Controller
	byApp          map[wm.AppID]*group.Controller
	winApp         map[wm.WindowID]wm.AppID
	lastFocusedApp wm.AppID
	focusedApp     wm.AppID
	focusedKnown   bool

	unsub    func()
	onChange []func()
}

var _ group.Registry = (*Registry)(nil)

// New creates the registry with one group per favorite. Call Start to begin
// tracking windows.
func New(opts Options) *Registry {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Registry{
		src:        opts.Source,
		launcher:   opts.Launcher,
		sched:      opts.Scheduler,
		cfg:        cfg,
		configPath: opts.ConfigPath,
		menus:      opts.Menus,
		settings:   group.SettingsFromConfig(cfg),
		log:        logger.With("component", "registry"),
		byApp:      make(map[wm.AppID]*group.Controller),
		winApp:     make(map[wm.WindowID]wm.AppID),
	}
	for _, f := range cfg.Favorites {
		r.create(wm.AppID(f.App), true)
	}
	return r
}

// Start subscribes to window events and adds the windows that already
// exist.
func (r *Registry) Start() {
	if r.unsub != nil {
		return
	}
	r.unsub = r.src.SubscribeAll(r.handle)
	for _, w := range r.src.List() {
		r.WindowAdded(w)
	}
	if w, ok := r.src.Focused(); ok {
		r.focusChanged(w)
	}
}

// Close stops tracking and destroys every group.
func (r *Registry) Close() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	for _, g := range r.groups {
		g.Destroy()
	}
	r.groups = nil
	r.byApp = map[wm.AppID]*group.Controller{}
	r.winApp = map[wm.WindowID]wm.AppID{}
	r.changed()
}

// OnChange registers fn to run whenever groups are created, destroyed or
// reordered.
func (r *Registry) OnChange(fn func()) {
	r.onChange = append(r.onChange, fn)
}

func (r *Registry) changed() {
	for _, fn := range r.onChange {
		fn()
	}
}

// Groups returns the groups in display order.
func (r *Registry) Groups() []*group.Controller {
	return slices.Clone(r.groups)
}

func (r *Registry) Group(app wm.AppID) (*group.Controller, bool) {
	g, ok := r.byApp[app]
	return g, ok
}

// GroupOf returns the group a window is tracked in.
func (r *Registry) GroupOf(id wm.WindowID) (*group.Controller, bool) {
	app, ok := r.winApp[id]
	if !ok {
		return nil, false
	}
	return r.Group(app)
}

func (r *Registry) handle(ev wm.Event) {
	switch ev.Type {
	case wm.WindowAdded:
		r.WindowAdded(ev.Window)
	case wm.WindowRemoved:
		r.WindowRemoved(ev.Window)
	case wm.AppChanged:
		r.AppChanged(ev.Window)
	case wm.FocusChanged:
		if ev.Window.Focused {
			r.focusChanged(ev.Window)
		}
	}
}

func (r *Registry) ignored(app wm.AppID) bool {
	return app == "" || slices.Contains(r.cfg.Ignore, string(app))
}

// WindowAdded puts w in the group of its app, creating the group if needed.
// A window that is already tracked is left alone.
func (r *Registry) WindowAdded(w wm.Window) {
	if _, ok := r.winApp[w.ID]; ok || r.ignored(w.App) {
		return
	}
	g, ok := r.byApp[w.App]
	if !ok {
		g = r.create(w.App, false)
		r.changed()
	}
	r.winApp[w.ID] = w.App
	g.AddWindow(w.ID)
}

// WindowRemoved drops w from the group it is tracked in and destroys the
// group when it asks for it. Unknown windows are ignored.
func (r *Registry) WindowRemoved(w wm.Window) {
	app, ok := r.winApp[w.ID]
	if !ok {
		return
	}
	delete(r.winApp, w.ID)
	g, ok := r.byApp[app]
	if !ok {
		return
	}
	if g.RemoveWindow(w.ID) {
		r.destroy(g)
	}
}

// AppChanged moves w to the group of its new app: a remove from the old
// group followed by an add to the new one. A window already in the right
// group is left alone, so duplicate notifications are harmless.
func (r *Registry) AppChanged(w wm.Window) {
	if app, ok := r.winApp[w.ID]; ok && app == w.App {
		return
	}
	r.log.Debug("app changed", "window", w.ID, "app", w.App)
	r.WindowRemoved(w)
	r.WindowAdded(w)
}

func (r *Registry) create(app wm.AppID, favorite bool) *group.Controller {
	name := string(app)
	if f := config.FindFavorite(r.cfg, string(app)); f != nil && f.Name != "" {
		name = f.Name
	}
	opts := group.Options{
		App:       app,
		Name:      name,
		Favorite:  favorite,
		Settings:  r.settings,
		WM:        r.src,
		Launcher:  r.launcher,
		Registry:  r,
		Scheduler: r.sched,
	}
	if r.menus != nil {
		opts.Preview, opts.Menu = r.menus(app)
	}
	g := group.New(opts)
	r.byApp[app] = g
	r.groups = append(r.groups, g)
	r.resequence()
	r.log.Debug("group created", "app", app, "favorite", favorite)
	return g
}

func (r *Registry) destroy(g *group.Controller) {
	g.Destroy()
	delete(r.byApp, g.App())
	r.groups = slices.DeleteFunc(r.groups, func(x *group.Controller) bool { return x == g })
	if r.lastFocusedApp == g.App() {
		r.lastFocusedApp = ""
	}
	r.log.Debug("group destroyed", "app", g.App())
	r.changed()
}

// CloseAllHoverMenus closes the preview of every group.
func (r *Registry) CloseAllHoverMenus() {
	for _, g := range r.groups {
		g.ClosePreview()
	}
}

// CloseAllRightClickMenus closes the context menu of every group.
func (r *Registry) CloseAllRightClickMenus() {
	for _, g := range r.groups {
		g.CloseContextMenu()
	}
}

// UpdateFocusState records app as the last focused app and tells every
// group.
func (r *Registry) UpdateFocusState(app wm.AppID) {
	r.lastFocusedApp = app
	r.focusedApp = app
	r.focusedKnown = true
	r.pushFocus()
}

// focusChanged handles focus landing on any window. Windows of tracked apps
// are reported by their group through UpdateFocusState; this covers the
// rest.
func (r *Registry) focusChanged(w wm.Window) {
	if _, ok := r.byApp[w.App]; ok && !r.ignored(w.App) {
		if r.lastFocusedApp != w.App {
			r.UpdateFocusState(w.App)
		}
		return
	}
	r.focusedApp = w.App
	r.focusedKnown = false
	r.pushFocus()
}

func (r *Registry) pushFocus() {
	for _, g := range r.groups {
		g.SetFocusContext(group.FocusContext{
			GroupHasFocus: r.lastFocusedApp != "" && g.App() == r.lastFocusedApp,
			FocusedApp:    r.focusedApp,
			FocusedKnown:  r.focusedKnown,
		})
	}
}

// LastFocusedApp returns the app that most recently held focus.
func (r *Registry) LastFocusedApp() wm.AppID {
	return r.lastFocusedApp
}
