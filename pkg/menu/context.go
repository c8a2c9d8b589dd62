package menu

import (
	"fmt"

	"github.com/b/wingroup/pkg/group"
)

type Action int

const (
	ActionNewWindow Action = iota
	ActionNewWindowOffloaded
	ActionTogglePin
	ActionCloseAll
)

type Item struct {
	Label  string
	Action Action
}

type Context struct {
	open      bool
	hovered   int
	destroyed bool
}

var _ group.ContextMenu = (*Context)(nil)

func NewContext() *Context {
	return &Context{hovered: -1}
}

func (c *Context) Open() {
	if c.destroyed {
		return
	}
	c.open = true
	c.hovered = -1
}

func (c *Context) Close() {
	c.open = false
	c.hovered = -1
}

func (c *Context) IsOpen() bool { return c.open }

func (c *Context) Destroy() {
	c.Close()
	c.destroyed = true
}

func (c *Context) Hover(i int) { c.hovered = i }

func (c *Context) Hovered() int { return c.hovered }

// ContextItems lists the entries of a group's context menu.
func ContextItems(s group.State) []Item {
	items := []Item{
		{Label: "New window", Action: ActionNewWindow},
		{Label: "New window (discrete GPU)", Action: ActionNewWindowOffloaded},
	}
	if s.Favorite {
		items = append(items, Item{Label: "Unpin", Action: ActionTogglePin})
	} else {
		items = append(items, Item{Label: "Pin", Action: ActionTogglePin})
	}
	switch n := s.WindowCount(); {
	case n == 1:
		items = append(items, Item{Label: "Close", Action: ActionCloseAll})
	case n > 1:
		items = append(items, Item{Label: fmt.Sprintf("Close %d windows", n), Action: ActionCloseAll})
	}
	return items
}
