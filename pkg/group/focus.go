package group

import (
	"slices"

	"github.com/b/wingroup/pkg/wm"
)

// handleWindowEvent receives the events of member windows from the bus.
func (c *Controller) handleWindowEvent(ev wm.Event) {
	if !c.active() || !c.contains(ev.Window.ID) {
		return
	}
	switch ev.Type {
	case wm.FocusChanged:
		c.OnFocusChanged(ev.Window.ID, ev.Window.Focused && !ev.Window.Minimized)
	case wm.TitleChanged:
		c.publish()
	case wm.ProgressChanged:
		c.recomputeProgress()
		c.publish()
	case wm.AttentionRequested:
		if !ev.Window.Focused {
			c.GetAttention()
		}
	}
}

// OnFocusChanged applies a focus transition of a member window. Gaining
// focus makes it the last-focused window, ends any attention flash and
// tells the registry this group now holds focus.
func (c *Controller) OnFocusChanged(id wm.WindowID, hasFocus bool) {
	if !c.active() {
		return
	}
	if !c.contains(id) {
		c.log.Debug("focus change ignored", "window", id, "err", ErrStaleReference)
		return
	}
	if hasFocus {
		c.lastFocused = id
		if c.settings.SortPreviewsByRecency && c.preview != nil {
			c.preview.MoveToFront(id)
		}
		c.hasFocus = true
		c.stopAttention()
		c.publish()
		if c.registry != nil {
			c.registry.UpdateFocusState(c.app)
		}
		return
	}
	c.recomputeFocus(id)
	c.publish()
}

// SetFocusContext receives the panel-wide focus picture from the registry.
func (c *Controller) SetFocusContext(ctx FocusContext) {
	if !c.active() || ctx == c.focusCtx {
		return
	}
	c.focusCtx = ctx
	c.publish()
}

// recomputeFocus derives the focus styling from the member windows. The
// windows in lost are treated as unfocused whatever the snapshot says.
func (c *Controller) recomputeFocus(lost ...wm.WindowID) {
	focused := false
	for _, id := range c.windows {
		if slices.Contains(lost, id) {
			continue
		}
		if w, ok := c.lookup(id); ok && w.Focused && !w.Minimized {
			focused = true
			break
		}
	}
	c.hasFocus = focused
	if focused {
		c.stopAttention()
	}
}
