package group

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

type Position int

const (
	PositionTop Position = iota
	PositionBottom
	PositionLeft
	PositionRight
)

// ParsePosition reads a panel edge name. Unknown names mean top.
func ParsePosition(s string) Position {
	switch strings.ToLower(s) {
	case "bottom":
		return PositionBottom
	case "left":
		return PositionLeft
	case "right":
		return PositionRight
	}
	return PositionTop
}

func (p Position) Vertical() bool {
	return p == PositionLeft || p == PositionRight
}

func (p Position) String() string {
	return [...]string{"top", "bottom", "left", "right"}[p]
}

type Direction int

const (
	LTR Direction = iota
	RTL
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Size and Box are in terminal cells.
type Size struct{ W, H int }

type Box struct{ X, Y, W, H int }

func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

const (
	// LabelMargin is how much wider than the icon a box must be before the
	// label is drawn. Pixel docks use 10px here; in terminal cells 10 would
	// hide every short label, so the margin is the gap plus two characters.
	LabelMargin = 3
	// NoLabelPadding is added to the icon width when there is no label.
	NoLabelPadding = 2
	// BadgeInset is how far the badge overlaps the icon corner.
	BadgeInset = 1
	// LabelGap separates icon and label.
	LabelGap = 1
)

// Natural holds the unconstrained sizes of a button's parts.
type Natural struct {
	Icon, Label, Badge Size
}

type LayoutInput struct {
	Box            Box
	Position       Position
	Direction      Direction
	LabelText      string
	LabelPreferred bool
	WindowCount    int
	Natural        Natural
	BadgeVisible   bool
	Progress       float64
	HasProgress    bool
	MaxWidth       int
	PanelSize      int
}

type Allocation struct {
	Icon     Box
	Label    Box
	Badge    Box
	Progress Box

	LabelVisible    bool
	LabelAlign      Align
	BadgeVisible    bool
	ProgressVisible bool
}

// PreferredWidth is the width the button asks for. Vertical panels hand
// every button the panel thickness.
func PreferredWidth(in LayoutInput) int {
	if in.Position.Vertical() {
		return in.PanelSize
	}
	return preferredLength(in)
}

// PreferredHeight is the height the button asks for. On a vertical panel the
// length computation runs along the height instead.
func PreferredHeight(in LayoutInput) int {
	if in.Position.Vertical() {
		return max(in.Natural.Icon.H, in.Natural.Label.H)
	}
	h := max(in.Natural.Icon.H, in.Natural.Label.H)
	if in.PanelSize > 0 {
		h = min(h, in.PanelSize)
	}
	return h
}

func preferredLength(in LayoutInput) int {
	icon := in.Natural.Icon.W
	if !in.LabelPreferred || in.WindowCount == 0 {
		return icon + NoLabelPadding
	}
	w := max(in.Natural.Label.W, icon+LabelGap+in.Natural.Label.W)
	if in.MaxWidth > 0 {
		w = min(w, in.MaxWidth)
	}
	return max(w, icon)
}

// Allocate places the parts of a button inside box. It never fails: a box
// too small for anything yields empty boxes.
func Allocate(in LayoutInput) Allocation {
	var a Allocation
	box := in.Box
	if box.Empty() {
		return a
	}
	icon := Size{W: min(in.Natural.Icon.W, box.W), H: min(in.Natural.Icon.H, box.H)}
	iconY := box.Y + (box.H-icon.H)/2

	a.LabelVisible = in.LabelPreferred && in.WindowCount > 0 && box.W > in.Natural.Icon.W+LabelMargin
	if a.LabelVisible {
		a.Icon = Box{X: box.X, Y: iconY, W: icon.W, H: icon.H}
		a.Label = Box{X: box.X + icon.W + LabelGap, Y: box.Y + (box.H-1)/2, W: box.W - icon.W - LabelGap, H: 1}
		if in.Direction == RTL {
			a.Icon.X = box.X + box.W - icon.W
			a.Label.X = box.X
		}
		a.LabelAlign = alignFor(DetectDirection(in.LabelText, in.Direction))
	} else {
		x := box.X + (box.W-icon.W)/2
		if in.Position == PositionLeft && (box.W-icon.W)%2 != 0 {
			x++
		}
		a.Icon = Box{X: x, Y: iconY, W: icon.W, H: icon.H}
	}

	if in.BadgeVisible && in.WindowCount > 0 {
		a.Badge = badgeBox(a.Icon, box, in.Natural.Badge, in.WindowCount, in.Direction)
		a.BadgeVisible = !a.Badge.Empty()
	}

	if in.HasProgress && in.Progress > 0 {
		ext := ProgressExtent(box.W, in.Progress)
		a.Progress = Box{X: box.X, Y: box.Y, W: ext, H: box.H}
		if in.Direction == RTL {
			a.Progress.X = box.X + box.W - ext
		}
		a.ProgressVisible = ext > 0
	}
	return a
}

// badgeBox anchors the badge just outside the icon's leading top corner,
// pulled back by BadgeInset so it overlaps the icon.
func badgeBox(icon, box Box, nat Size, count int, dir Direction) Box {
	w := nat.W * BadgeWidthFactor(count)
	h := max(nat.H, 1)
	b := Box{X: icon.X - w + BadgeInset, Y: icon.Y - h + BadgeInset, W: w, H: h}
	if dir == RTL {
		b.X = icon.X + icon.W - BadgeInset
	}
	return clampBox(b, box)
}

func clampBox(b, outer Box) Box {
	if b.X < outer.X {
		b.X = outer.X
	}
	if b.Y < outer.Y {
		b.Y = outer.Y
	}
	if b.X+b.W > outer.X+outer.W {
		b.W = outer.X + outer.W - b.X
	}
	if b.Y+b.H > outer.Y+outer.H {
		b.H = outer.Y + outer.H - b.Y
	}
	if b.W < 0 {
		b.W = 0
	}
	if b.H < 0 {
		b.H = 0
	}
	return b
}

// DetectDirection returns the direction of the first strongly directional
// letter in s, or fallback when there is none.
func DetectDirection(s string, fallback Direction) Direction {
	for _, r := range s {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.L:
			return LTR
		case bidi.R, bidi.AL:
			return RTL
		}
	}
	return fallback
}

func alignFor(d Direction) Align {
	if d == RTL {
		return AlignRight
	}
	return AlignLeft
}

func (c *Controller) layoutInput(box Box, nat Natural) LayoutInput {
	l := c.label()
	return LayoutInput{
		Box:            box,
		Position:       c.settings.Position,
		Direction:      c.settings.Direction,
		LabelText:      l.Text,
		LabelPreferred: l.Visible,
		WindowCount:    len(c.windows),
		Natural:        nat,
		BadgeVisible:   c.badgeVisible(),
		Progress:       c.progress,
		HasProgress:    c.hasProgress,
		MaxWidth:       c.settings.MaxWidth,
		PanelSize:      c.settings.PanelSize,
	}
}

// PreferredWidth is the geometry callback for the host layout pass.
func (c *Controller) PreferredWidth(nat Natural) int {
	return PreferredWidth(c.layoutInput(Box{}, nat))
}

func (c *Controller) PreferredHeight(nat Natural) int {
	return PreferredHeight(c.layoutInput(Box{}, nat))
}

// Allocate lays the button out in box and records whether the label made it
// on screen. It works on a destroyed group too; the result is just not
// remembered.
func (c *Controller) Allocate(box Box, nat Natural) Allocation {
	a := Allocate(c.layoutInput(box, nat))
	if c.active() && a.LabelVisible != c.labelVisible {
		c.labelVisible = a.LabelVisible
		c.publish()
	}
	return a
}
