package group

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/wm"
)

func TestPrimaryClickMinimizesFocusedWindow(t *testing.T) {
	h := newHarness(t)
	h.add("@1", focused)

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"minimize @1"}, h.wm.Calls)
}

func TestPrimaryClickActivatesUnfocusedWindow(t *testing.T) {
	h := newHarness(t)
	h.add("@1")

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"activate @1"}, h.wm.Calls)
}

func TestPrimaryClickSwitchesWorkspace(t *testing.T) {
	h := newHarness(t)
	h.add("@1", onWorkspace(2), minimized)

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"unminimize @1", "switch 2", "activate @1"}, h.wm.Calls)
	assert.Equal(t, 2, h.wm.Workspace)
}

func TestReleaseWithoutPressIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.add("@1")

	assert.False(t, h.c.ButtonRelease(ButtonPrimary, 0))
	h.c.ButtonPress(ButtonMiddle)
	assert.False(t, h.c.ButtonRelease(ButtonPrimary, 0))
	assert.Empty(t, h.wm.Calls)

	h.c.ButtonPress(ButtonPrimary)
	h.c.CancelPress()
	assert.False(t, h.c.ButtonRelease(ButtonPrimary, 0))
}

func TestModifiedPrimaryLaunches(t *testing.T) {
	h := newHarness(t)
	h.add("@1", focused)

	h.click(ButtonPrimary, ModShift)
	h.click(ButtonPrimary, ModShift|ModCtrl)
	assert.Equal(t, []string{"vim", "vim (offload)"}, h.wm.Launches)
	assert.Empty(t, h.wm.Calls)
}

func TestUnboundModifiersFallBackToBareButton(t *testing.T) {
	h := newHarness(t)
	h.add("@1", focused)

	h.click(ButtonPrimary, ModAlt)
	assert.Equal(t, []string{"minimize @1"}, h.wm.Calls)
}

func TestMiddleClick(t *testing.T) {
	h := newHarness(t)
	h.add("@1")
	h.click(ButtonMiddle, 0)
	assert.Equal(t, []string{"vim"}, h.wm.Launches)

	h = newHarness(t, func(o *Options) { o.Settings.Clicks[Chord{ButtonMiddle, 0}] = CloseLastFocused })
	h.click(ButtonMiddle, 0)
	assert.Empty(t, h.wm.Calls)

	h.add("@1")
	h.add("@2")
	h.click(ButtonMiddle, 0)
	assert.Equal(t, []string{"close @2"}, h.wm.Calls)
}

func TestPrimaryDisabled(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Settings.Clicks[Chord{ButtonPrimary, 0}] = NoAction
	})
	h.add("@1", focused)
	h.click(ButtonPrimary, 0)
	assert.Empty(t, h.wm.Calls)
	assert.Empty(t, h.wm.Launches)
}

func TestPrimaryDisabledStillStartsEmptyFavorite(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Favorite = true
		o.Settings.Clicks[Chord{ButtonPrimary, 0}] = NoAction
	})
	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"vim"}, h.wm.Launches)
}

func TestPrimaryOnMultipleWindowsActsOnLastFocused(t *testing.T) {
	h := newHarness(t)
	h.add("@1")
	h.add("@2", focused)

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"minimize @2"}, h.wm.Calls)
}

func TestPrimaryCyclesWindows(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Settings.CycleWindows = true })
	h.add("@1")
	h.add("@2")
	h.add("@3")
	h.wm.Focus("@2")
	h.wm.Reset()

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"activate @3"}, h.wm.Calls)
	assert.Equal(t, wm.WindowID("@3"), h.c.LastFocused())

	h.click(ButtonPrimary, 0)
	h.click(ButtonPrimary, 0)
	assert.Equal(t, wm.WindowID("@2"), h.c.LastFocused())
}

func TestPrimaryCycleWithoutFocusedMemberUsesFirst(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Settings.CycleWindows = true })
	h.add("@1")
	h.add("@2")

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"activate @1"}, h.wm.Calls)
}

func TestPrimaryTogglesPreview(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Settings.Clicks[Chord{ButtonPrimary, 0}] = OpenThumbnailMenu })
	h.add("@1")
	h.add("@2")

	h.click(ButtonPrimary, 0)
	assert.True(t, h.preview.IsOpen())
	assert.Equal(t, []string{"close-menus", "close-hover"}, h.registry.calls)
	assert.True(t, h.c.Snapshot().PreviewOpen)

	h.click(ButtonPrimary, 0)
	assert.False(t, h.preview.IsOpen())
	assert.Empty(t, h.wm.Calls)
}

func TestSecondaryTogglesContextMenu(t *testing.T) {
	h := newHarness(t)
	h.add("@1")

	h.click(ButtonSecondary, 0)
	assert.True(t, h.menu.IsOpen())
	assert.Equal(t, []string{"close-menus", "close-hover"}, h.registry.calls)

	h.click(ButtonSecondary, 0)
	assert.False(t, h.menu.IsOpen())
}

func TestLaunchFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Favorite = true })
	h.wm.Fail["launch"] = errors.New("no such command")

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"vim"}, h.wm.Launches)
	assert.False(t, h.c.Snapshot().Launching)
	assert.Zero(t, h.sched.Pending())
}

func TestWindowManagerFailureStopsRestore(t *testing.T) {
	h := newHarness(t)
	h.add("@1", onWorkspace(3))
	h.wm.Fail["switch"] = errors.New("gone")

	h.click(ButtonPrimary, 0)
	assert.Equal(t, []string{"switch 3"}, h.wm.Calls)
}

func TestClickMapFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Clicks.Primary = config.ActionPreview
	cfg.Clicks.Middle = config.ActionClose
	cfg.Clicks.Modified = []config.ClickBinding{
		{Button: "middle", Modifiers: []string{"shift"}, Action: config.ActionLaunchOffloaded},
		{Button: "nope", Action: config.ActionLaunch},
	}
	m := ClickMapFromConfig(cfg.Clicks)

	assert.Equal(t, OpenThumbnailMenu, m.Lookup(ButtonPrimary, 0))
	assert.Equal(t, CloseLastFocused, m.Lookup(ButtonMiddle, 0))
	assert.Equal(t, LaunchNewInstanceOffloaded, m.Lookup(ButtonMiddle, ModShift))
	assert.Equal(t, LaunchNewInstance, m.Lookup(ButtonPrimary, ModShift))
	assert.Equal(t, OpenContextMenu, m.Lookup(ButtonSecondary, ModAlt))
}

func TestParseHelpers(t *testing.T) {
	b, err := ParseButton("Right")
	require.NoError(t, err)
	assert.Equal(t, ButtonSecondary, b)

	_, err = ParseButton("fourth")
	assert.Error(t, err)

	mods, err := ParseModifiers([]string{"ctrl", "Shift"})
	require.NoError(t, err)
	assert.Equal(t, ModCtrl|ModShift, mods)

	_, err = ParseAction("explode")
	assert.ErrorIs(t, err, config.ErrInvalidAction)

	assert.Equal(t, "launch_offloaded", LaunchNewInstanceOffloaded.String())
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Position = "left"
	cfg.RTL = true
	s := SettingsFromConfig(cfg)

	assert.Equal(t, PositionLeft, s.Position)
	assert.Equal(t, RTL, s.Direction)
	assert.Equal(t, LabelMode(cfg.Button.Label), s.LabelMode)
	assert.Equal(t, ToggleMinimizeOrCycle, s.Clicks.Lookup(ButtonPrimary, 0))
}

func TestMenuEntries(t *testing.T) {
	h := newHarness(t)
	h.add("@1")
	h.add("@2", minimized)

	h.c.OpenPreview()
	h.c.ActivateWindow("@2")
	assert.Equal(t, []string{"unminimize @2", "activate @2"}, h.wm.Calls)
	assert.False(t, h.preview.open)

	h.wm.Reset()
	h.c.ActivateWindow("@9")
	assert.Empty(t, h.wm.Calls)

	h.c.Launch(true)
	assert.Equal(t, []string{"vim (offload)"}, h.wm.Launches)

	h.c.CloseAll()
	assert.Equal(t, []string{"close @1", "close @2"}, h.wm.Calls)
}
