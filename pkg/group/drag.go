package group

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

type DragSource int

const (
	// DragLauncher is a button of this panel being moved.
	DragLauncher DragSource = iota
	// DragForeign is anything else: files, text, another program's data.
	DragForeign
)

// DragBegin starts moving the button. The returned axis is the only one the
// drag may travel along. ok is false when dragging is disabled.
func (c *Controller) DragBegin() (axis Axis, ok bool) {
	if !c.active() || !c.settings.EnableDrag {
		return AxisX, false
	}
	c.CancelPress()
	if c.registry != nil {
		c.registry.CloseAllRightClickMenus()
		c.registry.CloseAllHoverMenus()
	}
	c.CloseMenus()
	c.dragging = true
	c.publish()
	if c.settings.Position.Vertical() {
		return AxisY, true
	}
	return AxisX, true
}

// DragEnd finishes a drag that was dropped on a valid slot.
func (c *Controller) DragEnd() {
	if !c.active() || !c.dragging {
		return
	}
	c.dragging = false
	c.publish()
}

// DragCancel abandons a drag. The registry re-sequences the buttons so the
// group goes back to where its order says it belongs.
func (c *Controller) DragCancel() {
	if !c.active() || !c.dragging {
		return
	}
	c.dragging = false
	c.publish()
	if c.registry != nil {
		c.registry.UpdateAppGroupIndexes(c.app)
	}
}

// DragOver is called while something is dragged across the button. A
// foreign drag over a group with several windows opens its preview so the
// drop can target one of them.
func (c *Controller) DragOver(src DragSource) {
	if !c.active() || src != DragForeign || len(c.windows) < 2 {
		return
	}
	if !c.fileDrag {
		c.fileDrag = true
		if c.registry != nil {
			c.registry.CloseAllHoverMenus()
		}
	}
	c.OpenPreview()
	c.publish()
}

func (c *Controller) DragLeave() {
	if !c.active() || !c.fileDrag {
		return
	}
	c.fileDrag = false
	c.publish()
}
