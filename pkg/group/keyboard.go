package group

// OnKeyActivate is the keyboard counterpart of a primary click. An empty
// favorite launches; a single window is minimized or restored. With several
// windows the preview opens, closing itself after the key-activation timeout
// unless the pointer has entered it, and every press also acts on the
// windows through focusOrCycle.
func (c *Controller) OnKeyActivate() {
	if !c.active() {
		return
	}
	switch n := len(c.windows); {
	case n == 0:
		if c.favorite {
			c.launch(false)
		}
	case n == 1:
		c.minimizeOrRestore(c.windows[0])
	default:
		if !c.keyPreview || c.preview == nil || !c.preview.IsOpen() {
			c.OpenPreview()
			c.keyPreview = c.preview != nil && c.preview.IsOpen()
		}
		if c.keyPreview {
			c.armKeyClose()
		}
		c.focusOrCycle()
	}
}

// focusOrCycle activates the member after the last-focused window when that
// window holds display focus, and brings the last-focused window back
// otherwise.
func (c *Controller) focusOrCycle() {
	if w, ok := c.lookup(c.lastFocused); ok && w.Focused && !w.Minimized {
		c.restore(c.nextWindow(c.lastFocused))
		return
	}
	c.restore(c.lastFocused)
}

func (c *Controller) armKeyClose() {
	c.stopTask(&c.keyCloseTask)
	if c.previewEntered || c.sched == nil || c.settings.KeyActivationTimeout <= 0 {
		return
	}
	c.keyCloseTask = c.sched.AfterFunc(c.settings.KeyActivationTimeout, func() {
		c.keyCloseTask = nil
		if !c.active() || c.previewEntered {
			return
		}
		c.ClosePreview()
	})
}

// PreviewEntered is called when the pointer moves into the preview. It
// cancels a pending keyboard auto-close.
func (c *Controller) PreviewEntered() {
	if !c.active() {
		return
	}
	c.previewEntered = true
	c.stopTask(&c.keyCloseTask)
}

func (c *Controller) PreviewLeft() {
	c.previewEntered = false
}
