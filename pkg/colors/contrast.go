// Package colors resolves the panel theme: hex color math, contrast
// correction and the built-in presets.
package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Luminance calculates the relative luminance of a color per WCAG formula.
// Returns a value between 0 (black) and 1 (white)
func Luminance(hexColor string) float64 {
	r, g, b, ok := parseHex(hexColor)
	if !ok {
		return 0
	}
	return 0.2126*gammaSRGB(float64(r)/255) +
		0.7152*gammaSRGB(float64(g)/255) +
		0.0722*gammaSRGB(float64(b)/255)
}

func gammaSRGB(val float64) float64 {
	if val <= 0.03928 {
		return val / 12.92
	}
	return math.Pow((val+0.055)/1.055, 2.4)
}

// ContrastRatio is the WCAG contrast ratio between two colors, from 1 to 21.
func ContrastRatio(fg, bg string) float64 {
	l1 := Luminance(fg)
	l2 := Luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// EnsureContrast pushes fg away from bg until the pair reaches minRatio,
// falling back to black or white.
func EnsureContrast(fg, bg string, minRatio float64) string {
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	bgLum := Luminance(bg)
	lighter := Luminance(fg) > bgLum
	for step := 1; step <= 10; step++ {
		amount := float64(step) / 10
		var adjusted string
		if lighter {
			adjusted = Lighten(fg, amount)
		} else {
			adjusted = Darken(fg, amount)
		}
		if ContrastRatio(adjusted, bg) >= minRatio {
			return adjusted
		}
	}
	if bgLum > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// IsLight returns true if the color is closer to white than black
func IsLight(hexColor string) bool {
	return Luminance(hexColor) > 0.5
}

// TextFor picks black or white text for a background.
func TextFor(bg string) string {
	if IsLight(bg) {
		return "#000000"
	}
	return "#ffffff"
}

// Lighten moves a color towards white by amount (0.0 to 1.0). Invalid
// colors come back unchanged.
func Lighten(hexColor string, amount float64) string {
	r, g, b, ok := parseHex(hexColor)
	if !ok {
		return hexColor
	}
	return formatHex(
		r+int64(float64(255-r)*amount),
		g+int64(float64(255-g)*amount),
		b+int64(float64(255-b)*amount),
	)
}

// Darken moves a color towards black by amount (0.0 to 1.0).
func Darken(hexColor string, amount float64) string {
	r, g, b, ok := parseHex(hexColor)
	if !ok {
		return hexColor
	}
	k := 1.0 - amount
	return formatHex(int64(float64(r)*k), int64(float64(g)*k), int64(float64(b)*k))
}

// Valid reports whether s is a #rrggbb color.
func Valid(s string) bool {
	_, _, _, ok := parseHex(s)
	return ok
}

func parseHex(hexColor string) (r, g, b int64, ok bool) {
	hex := strings.TrimPrefix(hexColor, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	r, errR := strconv.ParseInt(hex[0:2], 16, 64)
	g, errG := strconv.ParseInt(hex[2:4], 16, 64)
	b, errB := strconv.ParseInt(hex[4:6], 16, 64)
	if errR != nil || errG != nil || errB != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}

func formatHex(r, g, b int64) string {
	clamp := func(v int64) int64 { return max(0, min(255, v)) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}
