package panel

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/daemon"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/logger"
	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/menu"
	"github.com/b/wingroup/pkg/tmux"
	"github.com/b/wingroup/pkg/wm"
	"github.com/b/wingroup/pkg/wm/wmtest"
)

type fakeBackend struct {
	*wmtest.Fake
	fetches   int
	fetchErr  error
	applied   int
	progress  map[wm.WindowID]float64
	attention []wm.WindowID
	stale     func()
}

func (b *fakeBackend) OnStale(fn func()) {
	b.stale = fn
}

func (b *fakeBackend) Fetch(ctx context.Context) (tmux.Snapshot, error) {
	b.fetches++
	return tmux.Snapshot{}, b.fetchErr
}

func (b *fakeBackend) Apply(s tmux.Snapshot) []wm.Event {
	b.applied++
	return nil
}

func (b *fakeBackend) SetProgress(id wm.WindowID, pct float64) error {
	if _, ok := b.Windows[id]; !ok {
		return errors.New("unknown window")
	}
	b.progress[id] = pct
	if b.stale != nil {
		b.stale()
	}
	return nil
}

func (b *fakeBackend) RequestAttention(id wm.WindowID) error {
	b.attention = append(b.attention, id)
	return nil
}

type env struct {
	wm    *fakeBackend
	sched *loop.Manual
	m     *Model
}

func newEnv(t *testing.T, mutate func(*config.Config)) *env {
	t.Helper()
	cfg := config.Default()
	cfg.Theme.Preset = "dark"
	cfg.Button.Label = config.LabelApplication
	if mutate != nil {
		mutate(cfg)
	}
	b := &fakeBackend{Fake: wmtest.New(), progress: make(map[wm.WindowID]float64)}
	b.Workspace = 1
	sched := loop.NewManual()
	m := New(Options{
		Backend:    b,
		Launcher:   b,
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Scheduler:  sched,
	})
	t.Cleanup(m.Close)
	return &env{wm: b, sched: sched, m: m}
}

func (e *env) window(id, app string) {
	e.wm.Add(wm.Window{ID: wm.WindowID(id), App: wm.AppID(app), Title: "title " + id, Workspace: 1})
}

// start runs Init without executing its commands and sizes the terminal.
func (e *env) start(w, h int) {
	e.m.Init()
	e.update(snapshotMsg{})
	e.update(tea.WindowSizeMsg{Width: w, Height: h})
}

func (e *env) update(msg tea.Msg) tea.Cmd {
	_, cmd := e.m.Update(msg)
	return cmd
}

func (e *env) click(x, y int, b tea.MouseButton) {
	e.update(tea.MouseMsg{X: x, Y: y, Button: b, Action: tea.MouseActionPress})
	e.update(tea.MouseMsg{X: x, Y: y, Button: b, Action: tea.MouseActionRelease})
}

func (e *env) key(s string) {
	e.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (e *env) apps() []wm.AppID {
	var out []wm.AppID
	for _, g := range e.m.Registry().Groups() {
		out = append(out, g.App())
	}
	return out
}

func (e *env) regionFor(t *testing.T, kind regionKind, index int) region {
	t.Helper()
	for _, r := range e.m.regions {
		if r.kind == kind && r.index == index {
			return r
		}
	}
	require.Failf(t, "region not found", "kind %d index %d", kind, index)
	return region{}
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) []string {
	return strings.Split(ansiRe.ReplaceAllString(s, ""), "\n")
}

func TestLayoutPlacesButtonsInOrder(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(80, 1)

	require.Len(t, e.m.buttons, 2)
	assert.Equal(t, group.Box{X: 0, Y: 0, W: 7, H: 1}, e.m.buttons[0].box)
	assert.Equal(t, group.Box{X: 7, Y: 0, W: 6, H: 1}, e.m.buttons[1].box)
	assert.True(t, e.m.buttons[0].alloc.LabelVisible)

	rows := plain(e.m.View())
	require.Len(t, rows, 1)
	assert.True(t, strings.HasPrefix(rows[0], " h htop v vim"), "got %q", rows[0])
	assert.Len(t, rows[0], 80)
}

func TestLayoutRightToLeft(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.RTL = true })
	e.window("@1", "htop")
	e.start(40, 1)

	require.Len(t, e.m.buttons, 1)
	assert.Equal(t, group.Box{X: 33, Y: 0, W: 7, H: 1}, e.m.buttons[0].box)
}

func TestLayoutBottomBar(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.Position = "bottom" })
	e.window("@1", "htop")
	e.start(40, 3)

	require.Len(t, e.m.buttons, 1)
	assert.Equal(t, 2, e.m.buttons[0].box.Y)
}

func TestLayoutVerticalStacksButtons(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.Position = "left" })
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(14, 10)

	require.Len(t, e.m.buttons, 2)
	assert.Equal(t, group.Box{X: 0, Y: 0, W: 14, H: 1}, e.m.buttons[0].box)
	assert.Equal(t, group.Box{X: 0, Y: 1, W: 14, H: 1}, e.m.buttons[1].box)
}

func TestFit(t *testing.T) {
	widths := []int{10, 6, 4}
	fit(widths, []int{4, 4, 4}, 16)
	assert.Equal(t, []int{6, 6, 4}, widths)

	widths = []int{10, 6, 4}
	fit(widths, []int{4, 4, 4}, 5)
	assert.Equal(t, []int{4, 4, 4}, widths)
}

func TestClickActivatesWindow(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(80, 1)

	e.click(3, 0, tea.MouseButtonLeft)
	assert.Equal(t, []string{"activate @1"}, e.wm.Calls)
}

func TestReleaseOffButtonCancelsClick(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)

	e.update(tea.MouseMsg{X: 3, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.update(tea.MouseMsg{X: 50, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.Empty(t, e.wm.Calls)
}

func TestMiddleClickLaunches(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)

	e.click(3, 0, tea.MouseButtonMiddle)
	assert.Equal(t, []string{"htop"}, e.wm.Launches)
}

func TestDigitKeyActivatesGroup(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(80, 1)

	e.key("2")
	assert.Equal(t, []string{"activate @2"}, e.wm.Calls)

	e.key("9")
	assert.Len(t, e.wm.Calls, 1)
}

func TestKeyboardPreviewNavigation(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "htop")
	e.start(80, 4)

	e.key("1")
	assert.Equal(t, []string{"activate @2"}, e.wm.Calls)
	e.wm.Reset()
	require.NotNil(t, e.m.menu)
	assert.Equal(t, regionPreview, e.m.menu.kind)
	require.Len(t, e.m.menu.rows, 2)
	assert.Equal(t, group.Box{X: 0, Y: 1, W: e.m.menu.box.W, H: 1}, e.m.menu.rows[0].box)
	assert.Equal(t, "  title @1", e.m.menu.rows[0].text)

	e.update(tea.KeyMsg{Type: tea.KeyDown})
	e.update(tea.KeyMsg{Type: tea.KeyDown})
	assert.True(t, e.m.menu.rows[1].hovered)

	e.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"activate @2"}, e.wm.Calls)
	assert.Nil(t, e.m.menu)
}

func TestPreviewRowClick(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "htop")
	e.start(80, 4)

	e.key("1")
	e.wm.Reset()
	r := e.regionFor(t, regionPreview, 0)
	assert.Equal(t, wm.WindowID("@1"), r.window)

	e.click(r.box.X+1, r.box.Y, tea.MouseButtonLeft)
	assert.Equal(t, []string{"activate @1"}, e.wm.Calls)
	g, _ := e.m.Registry().Group("htop")
	assert.False(t, g.Snapshot().PreviewOpen)
}

func TestEscapeClosesMenus(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "htop")
	e.start(80, 4)

	e.key("1")
	require.NotNil(t, e.m.menu)
	e.update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, e.m.menu)
}

func TestContextMenuPinsApp(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "vim")
	e.start(80, 1)

	e.click(3, 0, tea.MouseButtonRight)
	require.NotNil(t, e.m.menu)
	assert.Equal(t, regionContext, e.m.menu.kind)

	// no rows to spare, so the entries run along the bar
	pin := e.regionFor(t, regionContext, 2)
	assert.Equal(t, 0, pin.box.Y)
	assert.GreaterOrEqual(t, pin.box.X, 6)

	e.click(pin.box.X+1, 0, tea.MouseButtonLeft)
	assert.NotNil(t, config.FindFavorite(e.m.Config(), "vim"))
	assert.Nil(t, e.m.menu)
	assert.FileExists(t, e.m.configPath)
}

func TestContextMenuNewWindow(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "vim")
	e.start(80, 3)

	e.click(3, 0, tea.MouseButtonRight)
	e.update(tea.KeyMsg{Type: tea.KeyDown})
	e.update(tea.KeyMsg{Type: tea.KeyDown})
	e.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"vim (offload)"}, e.wm.Launches)
}

func TestClickOutsideClosesMenus(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "vim")
	e.start(80, 3)

	e.click(3, 0, tea.MouseButtonRight)
	require.NotNil(t, e.m.menu)
	e.click(70, 2, tea.MouseButtonLeft)
	assert.Nil(t, e.m.menu)
}

func TestDragReordersButtons(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(80, 1)

	e.update(tea.MouseMsg{X: 3, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.update(tea.MouseMsg{X: 9, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	require.NotNil(t, e.m.drag)
	assert.Equal(t, 1, e.m.drag.target)
	e.update(tea.MouseMsg{X: 9, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})

	assert.Nil(t, e.m.drag)
	assert.Equal(t, []wm.AppID{"vim", "htop"}, e.apps())
	assert.Empty(t, e.wm.Calls)
}

func TestSmallMotionIsStillAClick(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)

	e.update(tea.MouseMsg{X: 3, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	e.update(tea.MouseMsg{X: 4, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	assert.Nil(t, e.m.drag)
	e.update(tea.MouseMsg{X: 4, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.Equal(t, []string{"activate @1"}, e.wm.Calls)
}

func TestPasteOverButtonOpensPreview(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "htop")
	e.start(80, 4)

	e.update(tea.MouseMsg{X: 3, Y: 0, Action: tea.MouseActionMotion})
	e.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/tmp/file"), Paste: true})

	g, _ := e.m.Registry().Group("htop")
	assert.True(t, g.Snapshot().FileDrag)
	assert.True(t, g.Snapshot().PreviewOpen)

	e.update(tea.MouseMsg{X: 70, Y: 0, Action: tea.MouseActionMotion})
	assert.False(t, g.Snapshot().FileDrag)
}

func TestRefreshCoalesces(t *testing.T) {
	e := newEnv(t, nil)
	e.start(80, 1)
	require.Equal(t, 1, e.wm.applied)

	cmd := e.update(RefreshMsg{})
	require.NotNil(t, cmd)
	assert.Nil(t, e.update(RefreshMsg{}))

	follow := e.update(cmd())
	require.NotNil(t, follow)
	assert.Nil(t, e.update(follow()))

	assert.Equal(t, 2, e.wm.fetches)
	assert.Equal(t, 3, e.wm.applied)
}

func TestSnapshotErrorLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	e := newEnv(t, nil)
	e.start(80, 1)

	fail := snapshotMsg{err: errors.New("no server running")}
	e.update(fail)
	e.update(fail)
	assert.Equal(t, 1, strings.Count(buf.String(), "polling tmux failed"))

	e.update(snapshotMsg{})
	e.update(fail)
	assert.Equal(t, 2, strings.Count(buf.String(), "polling tmux failed"))
}

func request(t *testing.T, e *env, typ daemon.MessageType, payload interface{}) daemon.Message {
	t.Helper()
	msg, err := daemon.NewMessage(typ, payload)
	require.NoError(t, err)
	return Forward(func(m tea.Msg) { e.update(m) })(msg)
}

func result(t *testing.T, msg daemon.Message) daemon.ResultPayload {
	t.Helper()
	require.Equal(t, daemon.MsgResult, msg.Type)
	var p daemon.ResultPayload
	require.NoError(t, msg.Decode(&p))
	return p
}

func TestRequests(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.window("@2", "vim")
	e.start(80, 1)

	r := result(t, request(t, e, daemon.MsgActivate, daemon.ActivatePayload{Index: 1}))
	assert.True(t, r.OK)
	assert.Equal(t, []string{"activate @2"}, e.wm.Calls)

	r = result(t, request(t, e, daemon.MsgActivate, daemon.ActivatePayload{Index: 5}))
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, ErrNoGroup.Error())

	r = result(t, request(t, e, daemon.MsgProgress, daemon.ProgressPayload{Window: "@1", Percent: 40}))
	assert.True(t, r.OK)
	assert.Equal(t, 40.0, e.wm.progress["@1"])

	r = result(t, request(t, e, daemon.MsgAttention, daemon.AttentionPayload{Window: "@2"}))
	assert.True(t, r.OK)
	assert.Equal(t, []wm.WindowID{"@2"}, e.wm.attention)

	r = result(t, request(t, e, daemon.MsgProgress, nil))
	assert.False(t, r.OK)

	r = result(t, request(t, e, "bogus", nil))
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "bogus")
}

func TestStatusRequest(t *testing.T) {
	e := newEnv(t, func(c *config.Config) {
		c.Favorites = []config.Favorite{{App: "vim", Command: "vim", Name: "Editor"}}
	})
	e.window("@1", "htop")
	e.start(80, 1)

	msg := request(t, e, daemon.MsgStatus, nil)
	require.Equal(t, daemon.MsgStatus, msg.Type)
	var st daemon.StatusPayload
	require.NoError(t, msg.Decode(&st))
	require.Len(t, st.Groups, 2)
	assert.Equal(t, "vim", st.Groups[0].App)
	assert.Equal(t, "Editor", st.Groups[0].Name)
	assert.True(t, st.Groups[0].Favorite)
	assert.Empty(t, st.Groups[0].Windows)
	assert.Equal(t, []string{"@1"}, st.Groups[1].Windows)
}

func TestRefreshRequestPolls(t *testing.T) {
	e := newEnv(t, nil)
	e.start(80, 1)

	msg, err := daemon.NewMessage(daemon.MsgRefresh, nil)
	require.NoError(t, err)
	reply := make(chan daemon.Message, 1)
	cmd := e.update(requestMsg{msg: msg, reply: reply})
	assert.True(t, result(t, <-reply).OK)
	require.NotNil(t, cmd)
	e.update(cmd())
	assert.Equal(t, 1, e.wm.fetches)
}

func TestWindowOperationSchedulesPoll(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)

	msg, err := daemon.NewMessage(daemon.MsgProgress, daemon.ProgressPayload{Window: "@1", Percent: 30})
	require.NoError(t, err)
	reply := make(chan daemon.Message, 1)
	cmd := e.update(requestMsg{msg: msg, reply: reply})
	assert.True(t, result(t, <-reply).OK)
	assert.Zero(t, e.wm.fetches)

	require.NotNil(t, cmd)
	e.update(cmd())
	assert.Equal(t, 1, e.wm.fetches)
}

func TestConfigReload(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)

	cfg := config.Default()
	cfg.Position = "bottom"
	cfg.Theme.Preset = "nord"
	cfg.Favorites = []config.Favorite{{App: "vim", Command: "vim"}}
	require.NoError(t, config.SaveConfig(e.m.configPath, cfg))

	e.update(ConfigChangedMsg{})
	assert.Equal(t, "bottom", e.m.Config().Position)
	assert.Equal(t, []wm.AppID{"vim", "htop"}, e.apps())
	assert.Equal(t, "#2e3440", e.m.theme.Bg)
}

func TestGroupsGoneDropMenus(t *testing.T) {
	e := newEnv(t, nil)
	e.window("@1", "htop")
	e.start(80, 1)
	require.Contains(t, e.m.menus, wm.AppID("htop"))

	e.wm.Remove("@1")
	e.update(nil)
	assert.NotContains(t, e.m.menus, wm.AppID("htop"))
	assert.Empty(t, e.m.buttons)
}

func TestCanvasKeepsWideRunesWhole(t *testing.T) {
	c := newCanvas(4, 1, cellStyle{})
	c.set(0, 0, "世", 2, cellStyle{})
	assert.Equal(t, "世  ", plain(c.String())[0])

	// overwriting the trailing half blanks the leading one
	c.set(1, 0, "x", 1, cellStyle{})
	assert.Equal(t, " x  ", plain(c.String())[0])

	// a wide rune that would cross the edge is dropped
	c.set(3, 0, "世", 2, cellStyle{})
	assert.Equal(t, " x  ", plain(c.String())[0])
}

func TestCanvasTextStopsAtWidth(t *testing.T) {
	c := newCanvas(6, 1, cellStyle{})
	c.text(0, 0, 3, "abcdef", cellStyle{})
	assert.Equal(t, "abc   ", plain(c.String())[0])
}

func TestButtonStyle(t *testing.T) {
	e := newEnv(t, nil)
	th := e.m.theme

	st := e.m.buttonStyle(group.State{HasFocus: true, Windows: []wm.WindowID{"@1"}})
	assert.Equal(t, th.FocusedBg, st.bg)
	assert.True(t, st.bold)

	st = e.m.buttonStyle(group.State{NeedsAttention: true, AttentionPhase: true, Windows: []wm.WindowID{"@1"}})
	assert.Equal(t, th.AttentionBg, st.bg)

	st = e.m.buttonStyle(group.State{})
	assert.True(t, st.faint)

	st = e.m.buttonStyle(group.State{Dragging: true, Windows: []wm.WindowID{"@1"}})
	assert.True(t, st.reverse)
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "● vim", previewText(menuItem("@1", "vim", true, false, 0)))
	assert.Equal(t, "○ vim", previewText(menuItem("@1", "vim", false, true, 0)))
	assert.Equal(t, "  @1 40%", previewText(menuItem("@1", "", false, false, 40)))
}

func menuItem(id, title string, focused, minimized bool, progress float64) menu.PreviewItem {
	return menu.PreviewItem{ID: wm.WindowID(id), Title: title, Focused: focused, Minimized: minimized, Progress: progress}
}
