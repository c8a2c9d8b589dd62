package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/loop"
	"github.com/b/wingroup/pkg/menu"
	"github.com/b/wingroup/pkg/wm"
	"github.com/b/wingroup/pkg/wm/wmtest"
)

type env struct {
	wm  *wmtest.Fake
	cfg *config.Config
	reg *Registry
}

func newEnv(t *testing.T, mutate func(*config.Config)) *env {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	f := wmtest.New()
	f.Workspace = 1
	reg := New(Options{
		Source:     f,
		Launcher:   f,
		Scheduler:  loop.NewManual(),
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
		Menus: func(app wm.AppID) (group.PreviewMenu, group.ContextMenu) {
			return menu.NewPreview(f), menu.NewContext()
		},
	})
	t.Cleanup(reg.Close)
	return &env{wm: f, cfg: cfg, reg: reg}
}

func (e *env) window(id, app string) wm.Window {
	w := wm.Window{ID: wm.WindowID(id), App: wm.AppID(app), Title: id, Workspace: 1}
	e.wm.Add(w)
	return w
}

func apps(r *Registry) []wm.AppID {
	var out []wm.AppID
	for _, g := range r.Groups() {
		out = append(out, g.App())
	}
	return out
}

func favorites(names ...string) func(*config.Config) {
	return func(c *config.Config) {
		for _, n := range names {
			c.Favorites = append(c.Favorites, config.Favorite{App: n, Command: n})
		}
	}
}

func TestFavoritesComeFirst(t *testing.T) {
	e := newEnv(t, favorites("htop", "vim"))
	e.reg.Start()
	e.window("@1", "zsh")
	e.window("@2", "vim")

	assert.Equal(t, []wm.AppID{"htop", "vim", "zsh"}, apps(e.reg))
	g, ok := e.reg.Group("vim")
	require.True(t, ok)
	assert.Equal(t, []wm.WindowID{"@2"}, g.Windows())
}

func TestStartAddsExistingWindows(t *testing.T) {
	e := newEnv(t, nil)
	e.wm.Windows["@1"] = wm.Window{ID: "@1", App: "vim", Focused: true}
	e.wm.Windows["@2"] = wm.Window{ID: "@2", App: "vim"}

	e.reg.Start()
	g, ok := e.reg.Group("vim")
	require.True(t, ok)
	assert.Equal(t, 2, g.WindowCount())
	assert.Equal(t, wm.AppID("vim"), e.reg.LastFocusedApp())

	e.reg.Start()
	assert.Equal(t, 2, g.WindowCount())
}

func TestLastWindowRemovalDestroysGroup(t *testing.T) {
	e := newEnv(t, favorites("vim"))
	e.reg.Start()
	e.window("@1", "zsh")
	e.window("@2", "vim")

	zsh, _ := e.reg.Group("zsh")
	e.wm.Remove("@1")
	e.wm.Remove("@2")

	assert.Equal(t, []wm.AppID{"vim"}, apps(e.reg))
	assert.Equal(t, group.Unmounting, zsh.Lifecycle())
	vim, _ := e.reg.Group("vim")
	assert.Equal(t, group.Active, vim.Lifecycle())

	// a second removal of the same window is ignored
	e.reg.WindowRemoved(wm.Window{ID: "@2", App: "vim"})
	assert.Equal(t, []wm.AppID{"vim"}, apps(e.reg))
}

func TestAppChangeMovesWindow(t *testing.T) {
	e := newEnv(t, nil)
	e.reg.Start()
	w := e.window("@1", "zsh")
	e.window("@2", "zsh")

	w.App = "vim"
	e.wm.Update(w, wm.AppChanged)

	zsh, _ := e.reg.Group("zsh")
	vim, ok := e.reg.Group("vim")
	require.True(t, ok)
	assert.Equal(t, []wm.WindowID{"@2"}, zsh.Windows())
	assert.Equal(t, []wm.WindowID{"@1"}, vim.Windows())
	assert.Equal(t, 1, e.wm.Subscribers("@1"))

	// duplicate notification
	e.wm.Update(w, wm.AppChanged)
	e.reg.AppChanged(w)
	assert.Equal(t, []wm.WindowID{"@1"}, vim.Windows())
	assert.Equal(t, []wm.WindowID{"@2"}, zsh.Windows())
	assert.Equal(t, 1, e.wm.Subscribers("@1"))

	g, ok := e.reg.GroupOf("@1")
	require.True(t, ok)
	assert.Equal(t, wm.AppID("vim"), g.App())
}

func TestAppChangeOfLastWindowTearsDownOldGroup(t *testing.T) {
	e := newEnv(t, nil)
	e.reg.Start()
	w := e.window("@1", "zsh")

	w.App = "vim"
	e.wm.Update(w, wm.AppChanged)
	assert.Equal(t, []wm.AppID{"vim"}, apps(e.reg))
}

func TestIgnoredApps(t *testing.T) {
	e := newEnv(t, func(c *config.Config) { c.Ignore = []string{"wingroup"} })
	e.reg.Start()
	e.window("@1", "wingroup")
	e.window("@2", "")
	assert.Empty(t, apps(e.reg))
}

func TestFocusContextReachesGroups(t *testing.T) {
	e := newEnv(t, func(c *config.Config) {
		c.Button.Label = config.LabelFocusedTitle
		c.Ignore = []string{"wingroup"}
	})
	e.reg.Start()
	e.window("@1", "vim")
	e.window("@2", "zsh")
	e.window("@3", "wingroup")

	vim, _ := e.reg.Group("vim")
	zsh, _ := e.reg.Group("zsh")

	e.wm.Focus("@1")
	assert.Equal(t, wm.AppID("vim"), e.reg.LastFocusedApp())
	assert.True(t, vim.Snapshot().Label.Visible)
	assert.False(t, zsh.Snapshot().Label.Visible)

	e.wm.Focus("@2")
	assert.False(t, vim.Snapshot().Label.Visible)
	assert.True(t, zsh.Snapshot().Label.Visible)

	// focus moves to an app the panel does not track
	e.wm.Focus("@3")
	assert.Equal(t, wm.AppID("zsh"), e.reg.LastFocusedApp())
	assert.False(t, zsh.Snapshot().Label.Visible)
}

func TestOnlyOneMenuOpen(t *testing.T) {
	e := newEnv(t, nil)
	e.reg.Start()
	e.window("@1", "vim")
	e.window("@2", "vim")
	e.window("@3", "zsh")

	vim, _ := e.reg.Group("vim")
	zsh, _ := e.reg.Group("zsh")

	vim.OpenPreview()
	require.True(t, vim.Snapshot().PreviewOpen)

	zsh.ButtonPress(group.ButtonSecondary)
	zsh.ButtonRelease(group.ButtonSecondary, 0)
	assert.True(t, zsh.Snapshot().ContextMenuOpen)
	assert.False(t, vim.Snapshot().PreviewOpen)

	vim.OpenPreview()
	assert.False(t, zsh.Snapshot().ContextMenuOpen)
}

func TestMoveFavoritePersistsOrder(t *testing.T) {
	e := newEnv(t, favorites("a", "b", "c"))
	e.reg.Start()
	e.window("@1", "zsh")

	require.NoError(t, e.reg.Move("c", 0))
	assert.Equal(t, []wm.AppID{"c", "a", "b", "zsh"}, apps(e.reg))

	saved, err := config.LoadConfig(e.reg.configPath)
	require.NoError(t, err)
	require.Len(t, saved.Favorites, 3)
	assert.Equal(t, "c", saved.Favorites[0].App)

	// a non-favorite dropped among favorites snaps back
	require.NoError(t, e.reg.Move("zsh", 0))
	assert.Equal(t, []wm.AppID{"c", "a", "b", "zsh"}, apps(e.reg))

	assert.ErrorIs(t, e.reg.Move("nope", 0), ErrUnknownGroup)
}

func TestDragCancelResequences(t *testing.T) {
	e := newEnv(t, favorites("a"))
	e.reg.Start()
	e.window("@1", "zsh")

	var changes int
	e.reg.OnChange(func() { changes++ })
	zsh, _ := e.reg.Group("zsh")
	_, ok := zsh.DragBegin()
	require.True(t, ok)
	zsh.DragCancel()
	assert.Equal(t, 1, changes)
	assert.Equal(t, []wm.AppID{"a", "zsh"}, apps(e.reg))
}

func TestPinAndUnpin(t *testing.T) {
	e := newEnv(t, favorites("a"))
	e.reg.Start()
	e.window("@1", "zsh")

	require.NoError(t, e.reg.Pin("zsh"))
	assert.Equal(t, []wm.AppID{"a", "zsh"}, apps(e.reg))
	zsh, _ := e.reg.Group("zsh")
	assert.True(t, zsh.IsFavorite())
	assert.ErrorIs(t, e.reg.Pin("zsh"), config.ErrFavoriteExists)

	e.wm.Remove("@1")
	assert.Equal(t, []wm.AppID{"a", "zsh"}, apps(e.reg), "pinned group survives without windows")

	require.NoError(t, e.reg.TogglePin("zsh"))
	assert.Equal(t, []wm.AppID{"a"}, apps(e.reg))

	require.NoError(t, e.reg.Pin("htop"))
	assert.Equal(t, []wm.AppID{"a", "htop"}, apps(e.reg))
	assert.ErrorIs(t, e.reg.Unpin("nope"), config.ErrFavoriteNotFound)
}

func TestApplyConfig(t *testing.T) {
	e := newEnv(t, favorites("a", "b"))
	e.reg.Start()
	e.window("@1", "b")
	e.window("@2", "zsh")

	next := config.Default()
	next.Favorites = []config.Favorite{{App: "c", Command: "c"}}
	next.Ignore = []string{"zsh"}
	next.Button.Label = config.LabelApplication
	e.reg.ApplyConfig(next)

	assert.Equal(t, []wm.AppID{"c", "b"}, apps(e.reg))
	b, _ := e.reg.Group("b")
	assert.False(t, b.IsFavorite())
	assert.Equal(t, group.LabelApplication, e.reg.Settings().LabelMode)
	assert.Equal(t, "b", b.Snapshot().Label.Text)
	_, ok := e.reg.GroupOf("@2")
	assert.False(t, ok)
}

func TestCloseDestroysGroups(t *testing.T) {
	e := newEnv(t, nil)
	e.reg.Start()
	e.window("@1", "vim")
	vim, _ := e.reg.Group("vim")

	e.reg.Close()
	assert.Equal(t, group.Unmounting, vim.Lifecycle())
	assert.Empty(t, e.reg.Groups())

	e.window("@2", "vim")
	assert.Empty(t, e.reg.Groups())
}
