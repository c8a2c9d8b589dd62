package group

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/b/wingroup/pkg/wm"
)

// AddWindow makes id a member and the last-focused window. Adding a member
// twice, or adding after teardown began, does nothing.
func (c *Controller) AddWindow(id wm.WindowID) {
	if !c.active() {
		c.log.Debug("add ignored", "window", id, "err", ErrUnmounting)
		return
	}
	if c.contains(id) {
		return
	}
	c.windows = append(c.windows, id)
	c.lastFocused = id
	if c.wm != nil {
		c.subs[id] = c.wm.Subscribe(id, c.handleWindowEvent)
	}
	if c.preview != nil {
		c.preview.AddWindow(id)
	}
	c.recomputeFocus()
	c.recomputeProgress()
	c.log.Debug("window added", "window", id, "count", len(c.windows))

	if w, ok := c.lookup(id); ok && w.Attention && !w.Focused {
		c.GetAttention()
	}
	c.publish()
}

// RemoveWindow drops id. When windows remain, the most recently added one
// becomes the last-focused window. When none remain and the group is not a
// favorite, the result asks the registry to dispose of the group. Removing a
// window that is not a member changes nothing and reports the same teardown
// decision as before.
func (c *Controller) RemoveWindow(id wm.WindowID) Teardown {
	if cancel, ok := c.subs[id]; ok {
		cancel()
		delete(c.subs, id)
	}
	if !c.active() {
		return false
	}
	idx := slices.Index(c.windows, id)
	if idx < 0 {
		c.log.Debug("remove ignored", "window", id, "err", ErrStaleReference)
		return Teardown(len(c.windows) == 0 && !c.favorite)
	}
	c.windows = slices.Delete(c.windows, idx, idx+1)
	if c.preview != nil {
		c.preview.RemoveWindow(id)
	}
	c.log.Debug("window removed", "window", id, "count", len(c.windows))

	if len(c.windows) > 0 {
		c.lastFocused = c.windows[len(c.windows)-1]
		c.recomputeFocus()
		c.recomputeProgress()
		c.publish()
		return false
	}

	c.lastFocused = ""
	c.hasFocus = false
	c.stopAttention()
	c.progress, c.hasProgress = 0, false
	c.closePreview()
	c.publish()
	return Teardown(!c.favorite)
}

// WindowCount returns the number of member windows.
func (c *Controller) WindowCount() int {
	return len(c.windows)
}

// Windows returns a copy of the member list in arrival order.
func (c *Controller) Windows() []wm.WindowID {
	return slices.Clone(c.windows)
}

// LastFocused returns the current reference window, or "" when empty.
func (c *Controller) LastFocused() wm.WindowID {
	return c.lastFocused
}

// SetFavorite pins or unpins the group. Unpinning a group without windows
// asks for teardown.
func (c *Controller) SetFavorite(favorite bool) Teardown {
	if !c.active() {
		return false
	}
	c.favorite = favorite
	c.publish()
	return Teardown(!favorite && len(c.windows) == 0)
}

// BadgeText renders a window count for the badge.
func BadgeText(count int) string {
	return strconv.Itoa(count)
}

// BadgeVisible reports whether a count earns a badge.
func BadgeVisible(count int, enabled bool, minCount int) bool {
	if minCount <= 0 {
		minCount = 2
	}
	return enabled && count >= minCount
}

// BadgeWidthFactor widens the badge for counts that need two digits.
func BadgeWidthFactor(count int) int {
	if count > 9 {
		return 2
	}
	return 1
}

func (c *Controller) badgeVisible() bool {
	return BadgeVisible(len(c.windows), c.settings.ShowBadge, c.settings.BadgeMinCount)
}

func (c *Controller) lookup(id wm.WindowID) (wm.Window, bool) {
	if c.wm == nil || id == "" {
		return wm.Window{}, false
	}
	w, ok := c.wm.Lookup(id)
	if !ok {
		c.log.Debug("lookup failed", "err", fmt.Errorf("%w: %s", ErrStaleReference, id))
	}
	return w, ok
}
