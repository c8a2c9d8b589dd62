package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/b/wingroup/pkg/colors"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/menu"
	"github.com/b/wingroup/pkg/perf"
	"github.com/b/wingroup/pkg/wm"
)

type regionKind int

const (
	regionButton regionKind = iota
	regionPreview
	regionContext
)

// region is a clickable rectangle of the last layout.
type region struct {
	kind   regionKind
	app    wm.AppID
	window wm.WindowID // preview rows
	index  int         // context rows
	box    group.Box
}

func (b region) contains(x, y int) bool {
	return x >= b.box.X && x < b.box.X+b.box.W && y >= b.box.Y && y < b.box.Y+b.box.H
}

// placed is a button as laid out.
type placed struct {
	state group.State
	icon  string
	box   group.Box
	alloc group.Allocation
}

type menuRow struct {
	text     string
	box      group.Box
	hovered  bool
	selected bool
}

type menuLayout struct {
	app  wm.AppID
	kind regionKind
	box  group.Box
	rows []menuRow
}

// regionAt returns the top-most region under the pointer. Menus are laid
// out after the buttons, so they win.
func (m *Model) regionAt(x, y int) (region, bool) {
	for i := len(m.regions) - 1; i >= 0; i-- {
		if m.regions[i].contains(x, y) {
			return m.regions[i], true
		}
	}
	return region{}, false
}

func (m *Model) buttonIndex(app wm.AppID) int {
	for i, b := range m.buttons {
		if b.state.App == app {
			return i
		}
	}
	return -1
}

func (m *Model) natural(s group.State) (group.Natural, string) {
	icon := m.Config().IconFor(string(s.App))
	// one leading cell is left free for the badge
	return group.Natural{
		Icon:  group.Size{W: 1 + runewidth.StringWidth(icon), H: 1},
		Label: group.Size{W: runewidth.StringWidth(s.Label.Text), H: 1},
		Badge: group.Size{W: 1, H: 1},
	}, icon
}

// layout places every button and the open menu for the current terminal
// size and records the click regions.
func (m *Model) layout() {
	m.buttons = m.buttons[:0]
	m.regions = m.regions[:0]
	m.menu = nil
	if m.width <= 0 || m.height <= 0 {
		return
	}
	cfg := m.Config()
	pos := group.ParsePosition(cfg.Position)

	var free group.Box
	if pos.Vertical() {
		free = m.layoutColumn()
	} else {
		free = m.layoutRow(pos, cfg.RTL, min(max(cfg.PanelSize, 1), m.height))
	}
	for _, b := range m.buttons {
		m.regions = append(m.regions, region{kind: regionButton, app: b.state.App, box: b.box})
	}
	m.layoutMenu(pos, free)
}

func (m *Model) layoutRow(pos group.Position, rtl bool, barH int) group.Box {
	y := 0
	free := group.Box{X: 0, Y: barH, W: m.width, H: m.height - barH}
	if pos == group.PositionBottom {
		y = m.height - barH
		free = group.Box{X: 0, Y: 0, W: m.width, H: m.height - barH}
	}

	groups := m.reg.Groups()
	nats := make([]group.Natural, len(groups))
	icons := make([]string, len(groups))
	widths := make([]int, len(groups))
	mins := make([]int, len(groups))
	for i, g := range groups {
		nats[i], icons[i] = m.natural(g.Snapshot())
		widths[i] = g.PreferredWidth(nats[i])
		mins[i] = min(widths[i], nats[i].Icon.W+group.NoLabelPadding)
	}
	fit(widths, mins, m.width)

	x := 0
	for i, g := range groups {
		w := widths[i]
		if x+w > m.width {
			break
		}
		bx := x
		if rtl {
			bx = m.width - x - w
		}
		box := group.Box{X: bx, Y: y, W: w, H: barH}
		alloc := g.Allocate(box, nats[i])
		m.buttons = append(m.buttons, placed{state: g.Snapshot(), icon: icons[i], box: box, alloc: alloc})
		x += w
	}
	return free
}

// fit shrinks the widest buttons one cell at a time until the row fits or
// nothing can shrink further.
func fit(widths, mins []int, avail int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > avail {
		best := -1
		for i := range widths {
			if widths[i] > mins[i] && (best < 0 || widths[i] > widths[best]) {
				best = i
			}
		}
		if best < 0 {
			return
		}
		widths[best]--
		total--
	}
}

func (m *Model) layoutColumn() group.Box {
	y := 0
	for _, g := range m.reg.Groups() {
		nat, icon := m.natural(g.Snapshot())
		h := max(g.PreferredHeight(nat), 1)
		if y+h > m.height {
			break
		}
		box := group.Box{X: 0, Y: y, W: m.width, H: h}
		alloc := g.Allocate(box, nat)
		m.buttons = append(m.buttons, placed{state: g.Snapshot(), icon: icon, box: box, alloc: alloc})
		y += h
	}
	return group.Box{X: 0, Y: y, W: m.width, H: m.height - y}
}

func (m *Model) layoutMenu(pos group.Position, free group.Box) {
	g, mm, kind := m.openMenu()
	if g == nil {
		return
	}
	s := g.Snapshot()
	ml := &menuLayout{app: s.App, kind: kind}
	var windows []wm.WindowID
	switch kind {
	case regionPreview:
		hovered, _ := mm.preview.Hovered()
		for _, it := range mm.preview.Items() {
			ml.rows = append(ml.rows, menuRow{text: previewText(it), hovered: it.ID == hovered, selected: it.Focused})
			windows = append(windows, it.ID)
		}
	case regionContext:
		for i, it := range menu.ContextItems(s) {
			ml.rows = append(ml.rows, menuRow{text: it.Label, hovered: i == mm.context.Hovered()})
		}
	}
	if len(ml.rows) == 0 {
		return
	}

	anchor := group.Box{}
	if i := m.buttonIndex(s.App); i >= 0 {
		anchor = m.buttons[i].box
	}
	if free.H <= 0 || free.W <= 0 {
		m.inlineMenu(ml, anchor)
	} else {
		m.stackMenu(ml, pos, free, anchor)
	}
	for i, row := range ml.rows {
		if row.box.Empty() {
			continue
		}
		r := region{kind: kind, app: s.App, index: i, box: row.box}
		if kind == regionPreview {
			r.window = windows[i]
		}
		m.regions = append(m.regions, r)
	}
	m.menu = ml
}

// stackMenu puts one entry per row next to the bar.
func (m *Model) stackMenu(ml *menuLayout, pos group.Position, free, anchor group.Box) {
	w := 0
	for _, row := range ml.rows {
		w = max(w, runewidth.StringWidth(row.text)+2)
	}
	w = min(w, free.W)
	h := min(len(ml.rows), free.H)
	x := free.X
	if !pos.Vertical() {
		x = max(free.X, min(anchor.X, free.X+free.W-w))
	}
	y := free.Y
	if pos == group.PositionBottom {
		y = free.Y + free.H - h
	}
	ml.box = group.Box{X: x, Y: y, W: w, H: h}
	for i := range ml.rows {
		if i < h {
			ml.rows[i].box = group.Box{X: x, Y: y + i, W: w, H: 1}
		}
	}
}

// inlineMenu is used when the pane has no rows to spare: the entries run
// along the bar after the anchor button.
func (m *Model) inlineMenu(ml *menuLayout, anchor group.Box) {
	x := anchor.X + anchor.W
	if x >= m.width {
		x = 0
	}
	start := x
	for i, row := range ml.rows {
		w := runewidth.StringWidth(row.text) + 2
		if x+w > m.width {
			break
		}
		ml.rows[i].box = group.Box{X: x, Y: anchor.Y, W: w, H: max(anchor.H, 1)}
		x += w
	}
	ml.box = group.Box{X: start, Y: anchor.Y, W: x - start, H: max(anchor.H, 1)}
}

func previewText(it menu.PreviewItem) string {
	mark := "  "
	switch {
	case it.Focused:
		mark = "● "
	case it.Minimized:
		mark = "○ "
	}
	title := it.Title
	if title == "" {
		title = string(it.ID)
	}
	if it.Progress > 0 {
		return fmt.Sprintf("%s%s %d%%", mark, title, int(it.Progress))
	}
	return mark + title
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	defer perf.Start("view").Stop()
	t := m.theme
	c := newCanvas(m.width, m.height, cellStyle{fg: t.Fg, bg: t.Bg})
	for _, b := range m.buttons {
		m.drawButton(c, b)
	}
	if m.menu != nil {
		m.drawMenu(c, m.menu)
	}
	return c.String()
}

func (m *Model) buttonStyle(s group.State) cellStyle {
	t := m.theme
	st := cellStyle{fg: t.Fg, bg: t.Bg}
	switch {
	case s.NeedsAttention && s.AttentionPhase:
		st.bg = t.AttentionBg
		st.fg = colors.TextFor(t.AttentionBg)
	case s.HasFocus:
		st.fg, st.bg = t.FocusedFg, t.FocusedBg
		st.bold = true
	}
	if s.Launching {
		st.bg = colors.Lighten(st.bg, 0.3)
	}
	if s.WindowCount() == 0 {
		st.faint = true
	}
	if s.PreviewOpen || s.ContextMenuOpen || s.FileDrag {
		st.underline = true
	}
	if s.Dragging {
		st.reverse = true
	}
	return st
}

func (m *Model) drawButton(c *canvas, b placed) {
	st := m.buttonStyle(b.state)
	c.fill(b.box, st)
	a := b.alloc
	if a.ProgressVisible {
		c.restyle(a.Progress, func(cs *cellStyle) {
			cs.bg = m.theme.ProgressBg
			cs.fg = colors.TextFor(m.theme.ProgressBg)
		})
	}

	// the icon box carries a free cell on its leading side
	glyphX := a.Icon.X + 1
	if m.Config().RTL {
		glyphX = a.Icon.X
	}
	c.text(glyphX, a.Icon.Y, a.Icon.X+a.Icon.W-glyphX, b.icon, c.styleAt(glyphX, a.Icon.Y))

	if a.LabelVisible && a.Label.W > 0 {
		label := runewidth.Truncate(b.state.Label.Text, a.Label.W, "…")
		x := a.Label.X
		if a.LabelAlign == group.AlignRight {
			x = a.Label.X + a.Label.W - runewidth.StringWidth(label)
		}
		for _, r := range label {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			c.set(x, a.Label.Y, string(r), w, c.styleAt(x, a.Label.Y))
			x += w
		}
	}

	if a.BadgeVisible {
		text := b.state.BadgeText
		bs := cellStyle{fg: m.theme.BadgeFg, bg: m.theme.BadgeBg, bold: true}
		x := a.Badge.X + a.Badge.W - runewidth.StringWidth(text)
		c.text(max(x, a.Badge.X), a.Badge.Y, a.Badge.W, text, bs)
	}
}

func (m *Model) drawMenu(c *canvas, ml *menuLayout) {
	t := m.theme
	base := cellStyle{fg: t.Fg, bg: colors.Lighten(t.Bg, 0.1)}
	if colors.IsLight(t.Bg) {
		base.bg = colors.Darken(t.Bg, 0.1)
	}
	for _, row := range ml.rows {
		if row.box.Empty() {
			continue
		}
		st := base
		if row.hovered {
			st = cellStyle{fg: t.FocusedFg, bg: t.FocusedBg}
		}
		st.bold = row.selected
		c.fill(row.box, st)
		c.text(row.box.X+1, row.box.Y, row.box.W-2, runewidth.Truncate(row.text, row.box.W-2, "…"), st)
	}
}

type cellStyle struct {
	fg, bg    string
	bold      bool
	faint     bool
	underline bool
	reverse   bool
}

func (s cellStyle) render(text string) string {
	st := lipgloss.NewStyle()
	if s.fg != "" {
		st = st.Foreground(lipgloss.Color(s.fg))
	}
	if s.bg != "" {
		st = st.Background(lipgloss.Color(s.bg))
	}
	return st.Bold(s.bold).Faint(s.faint).Underline(s.underline).Reverse(s.reverse).Render(text)
}

// cell holds one terminal column. The second column of a wide rune has an
// empty text.
type cell struct {
	text  string
	style cellStyle
}

type canvas struct {
	w, h int
	rows [][]cell
}

func newCanvas(w, h int, st cellStyle) *canvas {
	c := &canvas{w: w, h: h, rows: make([][]cell, h)}
	for y := range c.rows {
		c.rows[y] = make([]cell, w)
		for x := range c.rows[y] {
			c.rows[y][x] = cell{text: " ", style: st}
		}
	}
	return c
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

func (c *canvas) styleAt(x, y int) cellStyle {
	if !c.inside(x, y) {
		return cellStyle{}
	}
	return c.rows[y][x].style
}

// set writes text of width w at x,y. Wide runes that would be split are
// blanked so the row keeps its width.
func (c *canvas) set(x, y int, text string, w int, st cellStyle) {
	if w <= 0 || !c.inside(x, y) || !c.inside(x+w-1, y) {
		return
	}
	row := c.rows[y]
	if row[x].text == "" && x > 0 {
		row[x-1].text = " "
	}
	end := x + w - 1
	if end+1 < c.w && row[end+1].text == "" {
		row[end+1].text = " "
	}
	row[x] = cell{text: text, style: st}
	for i := x + 1; i <= end; i++ {
		row[i] = cell{text: "", style: st}
	}
}

// text writes s from x, stopping before it would exceed maxW columns.
func (c *canvas) text(x, y, maxW int, s string, st cellStyle) {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxW {
			return
		}
		c.set(x+used, y, string(r), w, st)
		used += w
	}
}

func (c *canvas) fill(b group.Box, st cellStyle) {
	for y := b.Y; y < b.Y+b.H; y++ {
		for x := b.X; x < b.X+b.W; x++ {
			c.set(x, y, " ", 1, st)
		}
	}
}

func (c *canvas) restyle(b group.Box, fn func(*cellStyle)) {
	for y := b.Y; y < b.Y+b.H; y++ {
		for x := b.X; x < b.X+b.W; x++ {
			if c.inside(x, y) {
				fn(&c.rows[y][x].style)
			}
		}
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for y, row := range c.rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		var run strings.Builder
		cur := row[0].style
		for _, cl := range row {
			if cl.style != cur {
				sb.WriteString(cur.render(run.String()))
				run.Reset()
				cur = cl.style
			}
			run.WriteString(cl.text)
		}
		sb.WriteString(cur.render(run.String()))
	}
	return sb.String()
}
