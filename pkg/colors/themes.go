package colors

import (
	"sort"

	"github.com/b/wingroup/pkg/config"
)

// Built-in presets. "dark" and "light" are what auto resolves to.
var Presets = map[string]config.Theme{
	"dark": {
		Fg:          "#cccccc",
		Bg:          "#2c3e50",
		FocusedFg:   "#ffffff",
		FocusedBg:   "#3498db",
		AttentionBg: "#e67e22",
		ProgressBg:  "#27ae60",
		BadgeFg:     "#ffffff",
		BadgeBg:     "#e74c3c",
	},
	"light": {
		Fg:          "#333333",
		Bg:          "#ecf0f1",
		FocusedFg:   "#ffffff",
		FocusedBg:   "#2980b9",
		AttentionBg: "#f39c12",
		ProgressBg:  "#2ecc71",
		BadgeFg:     "#ffffff",
		BadgeBg:     "#c0392b",
	},
	"rose-pine": {
		Fg:          "#e0def4",
		Bg:          "#191724",
		FocusedFg:   "#191724",
		FocusedBg:   "#c4a7e7",
		AttentionBg: "#f6c177",
		ProgressBg:  "#31748f",
		BadgeFg:     "#191724",
		BadgeBg:     "#eb6f92",
	},
	"rose-pine-dawn": {
		Fg:          "#575279",
		Bg:          "#faf4ed",
		FocusedFg:   "#faf4ed",
		FocusedBg:   "#907aa9",
		AttentionBg: "#ea9d34",
		ProgressBg:  "#56949f",
		BadgeFg:     "#faf4ed",
		BadgeBg:     "#b4637a",
	},
	"nord": {
		Fg:          "#d8dee9",
		Bg:          "#2e3440",
		FocusedFg:   "#2e3440",
		FocusedBg:   "#88c0d0",
		AttentionBg: "#ebcb8b",
		ProgressBg:  "#a3be8c",
		BadgeFg:     "#2e3440",
		BadgeBg:     "#bf616a",
	},
}

// ListPresets returns the preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve fills the blank or invalid fields of t from its preset and makes
// sure text stays readable on its background. Unknown presets behave like
// auto.
func Resolve(t config.Theme, bg *BackgroundDetector) config.Theme {
	base, ok := Presets[t.Preset]
	if !ok {
		base = Presets["light"]
		if bg == nil || bg.IsDark() {
			base = Presets["dark"]
		}
	}
	pick := func(v, fallback string) string {
		if Valid(v) {
			return v
		}
		return fallback
	}
	out := config.Theme{
		Preset:      t.Preset,
		Fg:          pick(t.Fg, base.Fg),
		Bg:          pick(t.Bg, base.Bg),
		FocusedFg:   pick(t.FocusedFg, base.FocusedFg),
		FocusedBg:   pick(t.FocusedBg, base.FocusedBg),
		AttentionBg: pick(t.AttentionBg, base.AttentionBg),
		ProgressBg:  pick(t.ProgressBg, base.ProgressBg),
		BadgeFg:     pick(t.BadgeFg, base.BadgeFg),
		BadgeBg:     pick(t.BadgeBg, base.BadgeBg),
	}
	out.Fg = EnsureContrast(out.Fg, out.Bg, 3)
	out.FocusedFg = EnsureContrast(out.FocusedFg, out.FocusedBg, 3)
	out.BadgeFg = EnsureContrast(out.BadgeFg, out.BadgeBg, 3)
	return out
}
