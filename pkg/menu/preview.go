// Package menu holds the state of the two surfaces a group can open: the
// preview list of its windows and the context menu. Both are plain models;
// the panel draws them and feeds pointer and key input back in.
package menu

import (
	"slices"

	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/wm"
)

// Lookup resolves window snapshots for display.
type Lookup interface {
	Lookup(id wm.WindowID) (wm.Window, bool)
}

// PreviewItem is one row of the preview.
type PreviewItem struct {
	ID        wm.WindowID
	Title     string
	Focused   bool
	Minimized bool
	Progress  float64
}

type Preview struct {
	src       Lookup
	entries   []wm.WindowID
	open      bool
	hovered   int
	destroyed bool
}

var _ group.PreviewMenu = (*Preview)(nil)

func NewPreview(src Lookup) *Preview {
	return &Preview{src: src, hovered: -1}
}

func (p *Preview) Open() {
	if p.destroyed {
		return
	}
	p.open = true
	p.hovered = -1
}

func (p *Preview) Close() {
	p.open = false
	p.hovered = -1
}

func (p *Preview) IsOpen() bool { return p.open }

func (p *Preview) AddWindow(id wm.WindowID) {
	if p.destroyed || slices.Contains(p.entries, id) {
		return
	}
	p.entries = append(p.entries, id)
}

func (p *Preview) RemoveWindow(id wm.WindowID) {
	i := slices.Index(p.entries, id)
	if i < 0 {
		return
	}
	p.entries = slices.Delete(p.entries, i, i+1)
	if p.hovered >= len(p.entries) {
		p.hovered = len(p.entries) - 1
	}
}

// MoveToFront puts id first, for previews sorted by recency.
func (p *Preview) MoveToFront(id wm.WindowID) {
	i := slices.Index(p.entries, id)
	if i <= 0 {
		return
	}
	p.entries = slices.Delete(p.entries, i, i+1)
	p.entries = slices.Insert(p.entries, 0, id)
}

func (p *Preview) Destroy() {
	p.Close()
	p.entries = nil
	p.destroyed = true
}

// Items returns the rows in display order. Windows the source no longer
// knows are skipped.
func (p *Preview) Items() []PreviewItem {
	items := make([]PreviewItem, 0, len(p.entries))
	for _, id := range p.entries {
		w, ok := p.src.Lookup(id)
		if !ok {
			continue
		}
		items = append(items, PreviewItem{
			ID:        id,
			Title:     w.Title,
			Focused:   w.Focused,
			Minimized: w.Minimized,
			Progress:  w.Progress,
		})
	}
	return items
}

// Hover marks row i; out of range clears the mark.
func (p *Preview) Hover(i int) {
	if i < 0 || i >= len(p.entries) {
		i = -1
	}
	p.hovered = i
}

// Step moves the mark by delta, wrapping around.
func (p *Preview) Step(delta int) {
	n := len(p.entries)
	if n == 0 {
		return
	}
	if p.hovered < 0 {
		if delta > 0 {
			p.hovered = 0
		} else {
			p.hovered = n - 1
		}
		return
	}
	p.hovered = ((p.hovered+delta)%n + n) % n
}

// Hovered returns the marked window.
func (p *Preview) Hovered() (wm.WindowID, bool) {
	if p.hovered < 0 || p.hovered >= len(p.entries) {
		return "", false
	}
	return p.entries[p.hovered], true
}

// HoverWindow marks the row showing id.
func (p *Preview) HoverWindow(id wm.WindowID) {
	p.Hover(slices.Index(p.entries, id))
}
