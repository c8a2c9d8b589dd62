package tmux

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/wm"
)

const commandTimeout = 2 * time.Second

// Snapshot is the result of one poll of the tmux server.
type Snapshot struct {
	Windows []Window
	Current string // session id of the attached client
}

// Manager implements wm.Manager on tmux. Fetch may run on any goroutine;
// everything else belongs to the event thread.
type Manager struct {
	*wm.Bus
	run      Runner
	resolver *Resolver
	log      *log.Logger

	stale func()

	mu      sync.RWMutex
	windows []wm.Window
	byID    map[wm.WindowID]int
	current string
}

var _ wm.Manager = (*Manager)(nil)
var _ group.WindowManager = (*Manager)(nil)

func NewManager(r Runner, res *Resolver) *Manager {
	return &Manager{
		Bus:      wm.NewBus(),
		run:      r,
		resolver: res,
		log:      logger.With("component", "tmux"),
		byID:     make(map[wm.WindowID]int),
	}
}

// SetResolver swaps the identity rules. Windows are reassigned on the next
// Apply.
func (m *Manager) SetResolver(res *Resolver) {
	m.mu.Lock()
	m.resolver = res
	m.mu.Unlock()
}

// Fetch polls tmux without touching the manager's state.
func (m *Manager) Fetch(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	current, err := CurrentSession(ctx, m.run)
	if err != nil {
		return Snapshot{}, err
	}
	windows, err := ListWindows(ctx, m.run)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Windows: windows, Current: current}, nil
}

// Apply stores s and publishes the difference to the previous snapshot.
func (m *Manager) Apply(s Snapshot) []wm.Event {
	m.mu.Lock()
	next := make([]wm.Window, 0, len(s.Windows))
	for _, w := range s.Windows {
		next = append(next, m.resolver.Convert(w, s.Current))
	}
	slices.SortStableFunc(next, func(a, b wm.Window) int {
		if a.Workspace != b.Workspace {
			return a.Workspace - b.Workspace
		}
		return a.Index - b.Index
	})
	events := Diff(m.windows, next)
	m.windows = next
	m.byID = make(map[wm.WindowID]int, len(next))
	for i, w := range next {
		m.byID[w.ID] = i
	}
	m.current = s.Current
	m.mu.Unlock()

	for _, ev := range events {
		m.Publish(ev)
	}
	return events
}

// Refresh fetches and applies in one go.
func (m *Manager) Refresh(ctx context.Context) error {
	s, err := m.Fetch(ctx)
	if err != nil {
		return err
	}
	m.Apply(s)
	return nil
}

// OnStale registers fn to run after every window operation, when the stored
// snapshot no longer matches tmux. fn runs on the event thread in the middle
// of group operations and must only schedule a poll.
func (m *Manager) OnStale(fn func()) {
	m.stale = fn
}

func (m *Manager) markStale() {
	if m.stale != nil {
		m.stale()
	}
}

func (m *Manager) Lookup(id wm.WindowID) (wm.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return wm.Window{}, false
	}
	return m.windows[i], true
}

func (m *Manager) List() []wm.Window {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.windows)
}

func (m *Manager) Focused() (wm.Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.windows {
		if w.Focused {
			return w, true
		}
	}
	return wm.Window{}, false
}

func (m *Manager) ActiveWorkspace() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sessionNumber(m.current)
}

func (m *Manager) exec(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	_, err := m.run.Run(ctx, args...)
	return err
}

func (m *Manager) target(id wm.WindowID) (wm.Window, error) {
	w, ok := m.Lookup(id)
	if !ok {
		return w, fmt.Errorf("%w: %s", group.ErrStaleReference, id)
	}
	return w, nil
}

// Activate selects the window and moves the client to its session.
func (m *Manager) Activate(id wm.WindowID) error {
	w, err := m.target(id)
	if err != nil {
		return err
	}
	if err := m.exec("select-window", "-t", string(id)); err != nil {
		return err
	}
	if w.Workspace != m.ActiveWorkspace() {
		if err := m.exec("switch-client", "-t", "$"+strconv.Itoa(w.Workspace)); err != nil {
			return err
		}
	}
	m.markStale()
	return nil
}

// Minimize marks the window minimized and, if it is the active window of
// its session, moves the session to its previous window.
func (m *Manager) Minimize(id wm.WindowID) error {
	w, err := m.target(id)
	if err != nil {
		return err
	}
	if err := m.exec("set-option", "-w", "-t", string(id), OptMinimized, "1"); err != nil {
		return err
	}
	if w.Focused {
		if err := m.exec("last-window", "-t", "$"+strconv.Itoa(w.Workspace)); err != nil {
			m.log.Debug("no previous window", "window", id, "err", err)
		}
	}
	m.markStale()
	return nil
}

func (m *Manager) Unminimize(id wm.WindowID) error {
	if _, err := m.target(id); err != nil {
		return err
	}
	if err := m.exec("set-option", "-w", "-u", "-t", string(id), OptMinimized); err != nil {
		return err
	}
	m.markStale()
	return nil
}

func (m *Manager) Close(id wm.WindowID) error {
	if _, err := m.target(id); err != nil {
		return err
	}
	if err := m.exec("kill-window", "-t", string(id)); err != nil {
		return err
	}
	m.markStale()
	return nil
}

func (m *Manager) SwitchWorkspace(ws int) error {
	if err := m.exec("switch-client", "-t", "$"+strconv.Itoa(ws)); err != nil {
		return err
	}
	m.markStale()
	return nil
}

// SetProgress stores a progress value on a window, or clears it when pct
// is negative.
func (m *Manager) SetProgress(id wm.WindowID, pct float64) error {
	if _, err := m.target(id); err != nil {
		return err
	}
	var err error
	if pct < 0 {
		err = m.exec("set-option", "-w", "-u", "-t", string(id), OptProgress)
	} else {
		err = m.exec("set-option", "-w", "-t", string(id), OptProgress, strconv.FormatFloat(pct, 'f', -1, 64))
	}
	if err != nil {
		return err
	}
	m.markStale()
	return nil
}

// RequestAttention raises the attention flag of a window without a bell,
// for callers that are not running inside it.
func (m *Manager) RequestAttention(id wm.WindowID) error {
	w, err := m.target(id)
	if err != nil {
		return err
	}
	if w.Attention {
		return nil
	}
	w.Attention = true
	m.mu.Lock()
	if i, ok := m.byID[id]; ok {
		m.windows[i] = w
	}
	m.mu.Unlock()
	m.Publish(wm.Event{Type: wm.AttentionRequested, Window: w})
	return nil
}
