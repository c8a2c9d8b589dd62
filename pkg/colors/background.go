package colors

import (
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// BackgroundDetector decides whether the terminal background is dark.
type BackgroundDetector struct {
	// Query asks the terminal directly. Nil skips the query.
	Query  func() (dark bool, ok bool)
	getenv func(string) string
	cached *bool
}

func NewBackgroundDetector() *BackgroundDetector {
	return &BackgroundDetector{Query: queryTermenv, getenv: os.Getenv}
}

// IsDark checks COLORFGBG, then the terminal itself, and assumes dark when
// neither answers. The result is cached.
func (d *BackgroundDetector) IsDark() bool {
	if d.cached != nil {
		return *d.cached
	}
	dark := true
	if v, ok := d.checkCOLORFGBG(); ok {
		dark = v
	} else if d.Query != nil {
		if v, ok := d.Query(); ok {
			dark = v
		}
	}
	d.cached = &dark
	return dark
}

// checkCOLORFGBG reads "fg;bg" ANSI indexes. 0-7 are dark backgrounds.
func (d *BackgroundDetector) checkCOLORFGBG() (bool, bool) {
	v := d.getenv("COLORFGBG")
	if v == "" {
		return false, false
	}
	parts := strings.Split(v, ";")
	if len(parts) < 2 {
		return false, false
	}
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false, false
	}
	return bg < 8 || bg == 16, true
}

// queryTermenv sends an OSC query. tmux answers with its own default, which
// is still better than guessing.
func queryTermenv() (bool, bool) {
	out := termenv.NewOutput(os.Stdout)
	bg := out.BackgroundColor()
	if bg == nil {
		return false, false
	}
	if _, ok := bg.(termenv.NoColor); ok {
		return false, false
	}
	return out.HasDarkBackground(), true
}
