// Package panel is the terminal front end. It draws the groups as a bar of
// buttons, turns mouse and key input into group operations and runs
// polling, timers and control requests on the bubbletea event thread.
package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/b/wingroup/pkg/colors"
	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/daemon"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/menu"
	"github.com/b/wingroup/pkg/perf"
	"github.com/b/wingroup/pkg/registry"
	"github.com/b/wingroup/pkg/tmux"
	"github.com/b/wingroup/pkg/wm"
)

const requestTimeout = 2 * time.Second

var (
	ErrNoGroup        = errors.New("no group at that position")
	errRequestTimeout = errors.New("panel did not answer in time")
)

// Backend is the window manager the panel polls and acts on.
type Backend interface {
	registry.Source
	Fetch(ctx context.Context) (tmux.Snapshot, error)
	Apply(s tmux.Snapshot) []wm.Event
	SetProgress(id wm.WindowID, pct float64) error
	RequestAttention(id wm.WindowID) error
}

type resolverSetter interface {
	SetResolver(res *tmux.Resolver)
}

type staleNotifier interface {
	OnStale(fn func())
}

type Options struct {
	Backend    Backend
	Launcher   wm.Launcher
	Config     *config.Config
	ConfigPath string
	// Scheduler replaces the timer loop. Tests pass a loop.Manual.
	Scheduler  loop.Scheduler
	Background *colors.BackgroundDetector
}

// RefreshMsg asks the panel to poll tmux now.
type RefreshMsg struct{}

// ConfigChangedMsg tells the panel its config file was written.
type ConfigChangedMsg struct{}

type (
	tickMsg     struct{}
	snapshotMsg struct {
		snap tmux.Snapshot
		err  error
	}
	requestMsg struct {
		msg   daemon.Message
		reply chan daemon.Message
	}
)

type menus struct {
	preview *menu.Preview
	context *menu.Context
}

type Model struct {
	backend    Backend
	reg        *registry.Registry
	sched      loop.Scheduler
	timers     *loop.Loop
	send       func(tea.Msg)
	configPath string
	bg         *colors.BackgroundDetector
	theme      config.Theme
	keys       keyMap
	log        *log.Logger

	menus map[wm.AppID]*menus

	width, height int
	buttons       []placed
	menu          *menuLayout
	regions       []region

	press     *pressState
	drag      *dragState
	menuPress *region
	hoverApp  wm.AppID
	dropApp   wm.AppID
	inPreview wm.AppID

	fetching bool
	again    bool
	stale    bool
	lastErr  string
}

func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	m := &Model{
		backend:    opts.Backend,
		configPath: opts.ConfigPath,
		bg:         opts.Background,
		keys:       defaultKeyMap(),
		log:        logger.With("component", "panel"),
		menus:      make(map[wm.AppID]*menus),
	}
	if opts.Scheduler != nil {
		m.sched = opts.Scheduler
	} else {
		m.timers = loop.New(func(f loop.Fire) { m.post(f) })
		m.sched = m.timers
	}
	m.reg = registry.New(registry.Options{
		Source:     opts.Backend,
		Launcher:   opts.Launcher,
		Scheduler:  m.sched,
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		Menus:      m.newMenus,
	})
	m.reg.OnChange(m.pruneMenus)
	if sn, ok := opts.Backend.(staleNotifier); ok {
		sn.OnStale(func() { m.stale = true })
	}
	m.theme = colors.Resolve(cfg.Theme, m.bg)
	return m
}

// Attach gives the model the program's Send so timers and control requests
// can reach the event thread. Call it before Run.
func (m *Model) Attach(send func(tea.Msg)) {
	m.send = send
}

func (m *Model) post(msg tea.Msg) {
	if m.send == nil {
		m.log.Debug("dropping message, no program attached", "msg", fmt.Sprintf("%T", msg))
		return
	}
	m.send(msg)
}

// Registry exposes the groups, mostly for tests and status.
func (m *Model) Registry() *registry.Registry {
	return m.reg
}

// Config returns the live config.
func (m *Model) Config() *config.Config {
	return m.reg.Config()
}

func (m *Model) Init() tea.Cmd {
	m.reg.Start()
	return tea.Batch(m.refresh(), m.tick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case loop.Fire:
		if m.timers != nil {
			m.timers.Dispatch(msg)
		}
	case tickMsg:
		cmd = tea.Batch(m.refresh(), m.tick())
	case RefreshMsg:
		cmd = m.refresh()
	case snapshotMsg:
		cmd = m.applySnapshot(msg)
	case requestMsg:
		cmd = m.handleRequest(msg)
	case ConfigChangedMsg:
		cmd = m.reloadConfig()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	// a window operation ran; poll off the event thread
	if m.stale {
		m.stale = false
		if poll := m.refresh(); cmd == nil {
			cmd = poll
		} else if poll != nil {
			cmd = tea.Batch(cmd, poll)
		}
	}
	m.layout()
	return m, cmd
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.Config().RefreshInterval(), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refresh polls tmux off the event thread. A refresh asked for while one
// is running is folded into a single follow-up poll.
func (m *Model) refresh() tea.Cmd {
	if m.fetching {
		m.again = true
		return nil
	}
	m.fetching = true
	backend := m.backend
	return func() tea.Msg {
		snap, err := backend.Fetch(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) applySnapshot(msg snapshotMsg) tea.Cmd {
	m.fetching = false
	if msg.err != nil {
		// tmux being unreachable repeats every tick; log it once
		if e := msg.err.Error(); e != m.lastErr {
			m.log.Warn("polling tmux failed", "err", msg.err)
			m.lastErr = e
		}
	} else {
		m.lastErr = ""
		perf.Track("apply snapshot", func() { m.backend.Apply(msg.snap) })
	}
	if m.again {
		m.again = false
		return m.refresh()
	}
	return nil
}

func (m *Model) reloadConfig() tea.Cmd {
	cfg, err := config.LoadOrDefault(m.configPath)
	if err != nil {
		m.log.Warn("config reload failed", "path", m.configPath, "err", err)
		return nil
	}
	if cfg.LogLevel != "" {
		logger.SetLevel(cfg.LogLevel)
	}
	m.reg.ApplyConfig(cfg)
	m.theme = colors.Resolve(cfg.Theme, m.bg)
	m.log.Info("config reloaded", "path", m.configPath)
	if rs, ok := m.backend.(resolverSetter); ok {
		rs.SetResolver(tmux.NewResolver(cfg.Rules))
		return m.refresh()
	}
	return nil
}

// Forward returns a daemon handler that hands each request to the event
// thread through send and waits for the answer.
func Forward(send func(tea.Msg)) daemon.Handler {
	return func(msg daemon.Message) daemon.Message {
		reply := make(chan daemon.Message, 1)
		send(requestMsg{msg: msg, reply: reply})
		select {
		case r := <-reply:
			return r
		case <-time.After(requestTimeout):
			return daemon.Result(errRequestTimeout)
		}
	}
}

func (m *Model) handleRequest(req requestMsg) tea.Cmd {
	var cmd tea.Cmd
	reply := daemon.Result(nil)
	switch req.msg.Type {
	case daemon.MsgActivate:
		var p daemon.ActivatePayload
		if err := req.msg.Decode(&p); err != nil {
			reply = daemon.Result(err)
			break
		}
		reply = daemon.Result(m.activate(p.Index))
	case daemon.MsgProgress:
		var p daemon.ProgressPayload
		if err := req.msg.Decode(&p); err != nil {
			reply = daemon.Result(err)
			break
		}
		reply = daemon.Result(m.backend.SetProgress(wm.WindowID(p.Window), p.Percent))
	case daemon.MsgAttention:
		var p daemon.AttentionPayload
		if err := req.msg.Decode(&p); err != nil {
			reply = daemon.Result(err)
			break
		}
		reply = daemon.Result(m.backend.RequestAttention(wm.WindowID(p.Window)))
	case daemon.MsgRefresh:
		cmd = m.refresh()
	case daemon.MsgStatus:
		msg, err := daemon.NewMessage(daemon.MsgStatus, m.Status())
		if err != nil {
			msg = daemon.Result(err)
		}
		reply = msg
	default:
		reply = daemon.Result(fmt.Errorf("unknown request %q", req.msg.Type))
	}
	req.reply <- reply
	return cmd
}

// activate is the keyboard activation of the group at index in display
// order.
func (m *Model) activate(index int) error {
	groups := m.reg.Groups()
	if index < 0 || index >= len(groups) {
		return fmt.Errorf("%w: %d", ErrNoGroup, index+1)
	}
	groups[index].OnKeyActivate()
	return nil
}

// Status describes every group in display order.
func (m *Model) Status() daemon.StatusPayload {
	var st daemon.StatusPayload
	for _, g := range m.reg.Groups() {
		s := g.Snapshot()
		gs := daemon.GroupStatus{
			App:            string(s.App),
			Name:           s.Name,
			Favorite:       s.Favorite,
			Windows:        make([]string, 0, len(s.Windows)),
			LastFocused:    string(s.LastFocused),
			HasFocus:       s.HasFocus,
			NeedsAttention: s.NeedsAttention,
		}
		for _, id := range s.Windows {
			gs.Windows = append(gs.Windows, string(id))
		}
		if s.HasProgress {
			gs.Progress = s.Progress
		}
		st.Groups = append(st.Groups, gs)
	}
	return st
}

func (m *Model) newMenus(app wm.AppID) (group.PreviewMenu, group.ContextMenu) {
	mm := &menus{preview: menu.NewPreview(m.backend), context: menu.NewContext()}
	m.menus[app] = mm
	return mm.preview, mm.context
}

func (m *Model) pruneMenus() {
	for app := range m.menus {
		if _, ok := m.reg.Group(app); !ok {
			delete(m.menus, app)
		}
	}
}

// Close destroys every group and stops their timers.
func (m *Model) Close() {
	m.reg.Close()
}
