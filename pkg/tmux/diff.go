package tmux

import "github.com/b/wingroup/pkg/wm"

// Diff returns the events that turn prev into next. Removals come first,
// then per-window additions and changes in next's order, then focus
// changes with losses before gains so at most one window is focused at any
// point.
func Diff(prev, next []wm.Window) []wm.Event {
	old := make(map[wm.WindowID]wm.Window, len(prev))
	for _, w := range prev {
		old[w.ID] = w
	}
	seen := make(map[wm.WindowID]bool, len(next))
	for _, w := range next {
		seen[w.ID] = true
	}

	var events []wm.Event
	for _, w := range prev {
		if !seen[w.ID] {
			events = append(events, wm.Event{Type: wm.WindowRemoved, Window: w})
		}
	}

	var lost, gained []wm.Event
	for _, w := range next {
		o, ok := old[w.ID]
		if !ok {
			events = append(events, wm.Event{Type: wm.WindowAdded, Window: w})
			if w.Focused {
				gained = append(gained, wm.Event{Type: wm.FocusChanged, Window: w})
			}
			continue
		}
		if o.App != w.App {
			events = append(events, wm.Event{Type: wm.AppChanged, Window: w, OldApp: o.App})
		}
		if o.Title != w.Title {
			events = append(events, wm.Event{Type: wm.TitleChanged, Window: w})
		}
		if o.Progress != w.Progress {
			events = append(events, wm.Event{Type: wm.ProgressChanged, Window: w})
		}
		if w.Attention && !o.Attention {
			events = append(events, wm.Event{Type: wm.AttentionRequested, Window: w})
		}
		if o.Focused != w.Focused || o.Minimized != w.Minimized {
			ev := wm.Event{Type: wm.FocusChanged, Window: w}
			if w.Focused {
				gained = append(gained, ev)
			} else {
				lost = append(lost, ev)
			}
		}
	}
	events = append(events, lost...)
	return append(events, gained...)
}
