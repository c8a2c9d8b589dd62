// Package group implements the controller behind one taskbar button: the
// set of windows an application owns, their focus and attention state, the
// pointer and keyboard interactions on the button, and the geometry of its
// icon, label, badge and progress overlay.
//
// A Controller is not safe for concurrent use. Every entry point, including
// timer callbacks, is expected to run on the panel's event thread.
package group

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/wm"
)

// WindowManager is the subset of wm.Manager a group acts through.
type WindowManager interface {
	Lookup(id wm.WindowID) (wm.Window, bool)
	ActiveWorkspace() int
	Activate(id wm.WindowID) error
	Minimize(id wm.WindowID) error
	Unminimize(id wm.WindowID) error
	Close(id wm.WindowID) error
	SwitchWorkspace(ws int) error
	Subscribe(id wm.WindowID, h wm.Handler) (cancel func())
}

// Registry is the panel-wide collaborator that owns every group.
type Registry interface {
	CloseAllHoverMenus()
	CloseAllRightClickMenus()
	UpdateFocusState(app wm.AppID)
	UpdateAppGroupIndexes(app wm.AppID)
}

// PreviewMenu is the hover surface listing a group's windows.
type PreviewMenu interface {
	Open()
	Close()
	IsOpen() bool
	AddWindow(id wm.WindowID)
	RemoveWindow(id wm.WindowID)
	MoveToFront(id wm.WindowID)
	Destroy()
}

// ContextMenu is the right-click surface of a group.
type ContextMenu interface {
	Open()
	Close()
	IsOpen() bool
	Destroy()
}

// Settings is the read-only configuration a group consumes.
type Settings struct {
	LabelMode             LabelMode
	MaxWidth              int
	ShowBadge             bool
	BadgeMinCount         int
	EnableDrag            bool
	SortPreviewsByRecency bool
	KeyActivationTimeout  time.Duration
	Animation             string
	Clicks                ClickMap
	CycleWindows          bool
	Position              Position
	Direction             Direction
	PanelSize             int
}

// SettingsFromConfig converts the panel configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	dir := LTR
	if cfg.RTL {
		dir = RTL
	}
	return Settings{
		LabelMode:             LabelMode(cfg.Button.Label),
		MaxWidth:              cfg.Button.MaxWidth,
		ShowBadge:             cfg.Button.BadgeEnabled(),
		BadgeMinCount:         cfg.Button.BadgeMinCount,
		EnableDrag:            cfg.Button.DragEnabled(),
		SortPreviewsByRecency: cfg.Button.SortPreviewsByRecency,
		KeyActivationTimeout:  cfg.Button.KeyActivationTimeout(),
		Animation:             cfg.Button.Animation,
		Clicks:                ClickMapFromConfig(cfg.Clicks),
		CycleWindows:          cfg.Clicks.CycleWindows,
		Position:              ParsePosition(cfg.Position),
		Direction:             dir,
		PanelSize:             cfg.PanelSize,
	}
}

type Options struct {
	App       wm.AppID
	Name      string // display name; defaults to App
	Favorite  bool
	Settings  Settings
	WM        WindowManager
	Launcher  wm.Launcher
	Registry  Registry
	Scheduler loop.Scheduler
	Preview   PreviewMenu
	Menu      ContextMenu
}

const launchAnimation = 600 * time.Millisecond

type Controller struct {
	app       wm.AppID
	name      string
	settings  Settings
	wm        WindowManager
	launcher  wm.Launcher
	registry  Registry
	sched     loop.Scheduler
	preview   PreviewMenu
	menu      ContextMenu
	log       *log.Logger
	lifecycle Lifecycle

	windows     []wm.WindowID
	lastFocused wm.WindowID
	favorite    bool
	subs        map[wm.WindowID]func()

	hasFocus bool
	focusCtx FocusContext

	needsAttention bool
	attentionPhase bool
	attentionTask  loop.Task
	flashes        int

	labelVisible bool
	progress     float64
	hasProgress  bool

	pressed        map[Button]bool
	keyPreview     bool
	keyCloseTask   loop.Task
	previewEntered bool
	dragging       bool
	fileDrag       bool
	launching      bool
	launchTask     loop.Task

	listeners    map[int]func(State)
	nextListener int
}

func New(opts Options) *Controller {
	name := opts.Name
	if name == "" {
		name = string(opts.App)
	}
	return &Controller{
		app:       opts.App,
		name:      name,
		settings:  opts.Settings,
		wm:        opts.WM,
		launcher:  opts.Launcher,
		registry:  opts.Registry,
		sched:     opts.Scheduler,
		preview:   opts.Preview,
		menu:      opts.Menu,
		favorite:  opts.Favorite,
		log:       logger.With("app", string(opts.App)),
		subs:      make(map[wm.WindowID]func()),
		pressed:   make(map[Button]bool),
		listeners: make(map[int]func(State)),
	}
}

func (c *Controller) App() wm.AppID {
	return c.app
}

func (c *Controller) Name() string {
	return c.name
}

func (c *Controller) IsFavorite() bool {
	return c.favorite
}

func (c *Controller) Lifecycle() Lifecycle {
	return c.lifecycle
}

func (c *Controller) active() bool {
	return c.lifecycle == Active
}

// SetSettings applies a reloaded configuration.
func (c *Controller) SetSettings(s Settings) {
	if !c.active() {
		return
	}
	c.settings = s
	c.publish()
}

// Destroy tears the group down: it flips to Unmounting before anything else
// so pending callbacks bail out, cancels timers and window subscriptions,
// and releases both menus. Calling it again does nothing.
func (c *Controller) Destroy() {
	if !c.active() {
		return
	}
	c.lifecycle = Unmounting
	c.stopTask(&c.attentionTask)
	c.stopTask(&c.keyCloseTask)
	c.stopTask(&c.launchTask)
	c.needsAttention = false
	c.attentionPhase = false

	ids := make([]wm.WindowID, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		c.subs[id]()
	}
	c.subs = map[wm.WindowID]func(){}

	if c.menu != nil {
		c.menu.Destroy()
	}
	if c.preview != nil {
		c.preview.Destroy()
	}
	c.log.Debug("group destroyed")
	c.publish()
	c.listeners = map[int]func(State){}
}

func (c *Controller) stopTask(t *loop.Task) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (c *Controller) contains(id wm.WindowID) bool {
	return slices.Contains(c.windows, id)
}

// try logs a failed window-manager operation. Failures never propagate past
// the controller.
func (c *Controller) try(op string, id wm.WindowID, err error) bool {
	if err != nil {
		c.log.Warn("window operation failed", "op", op, "window", id, "err", err)
		return false
	}
	return true
}
