package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/b/wingroup/pkg/config"
	"github.com/b/wingroup/pkg/group"
	"github.com/b/wingroup/pkg/wm"
)

var ErrUnknownGroup = errors.New("unknown group")

// resequence sorts the groups: favorites first in config order, then the
// rest in the order they appeared.
func (r *Registry) resequence() {
	rank := func(g *group.Controller) int {
		if !g.IsFavorite() {
			return len(r.cfg.Favorites)
		}
		for i, f := range r.cfg.Favorites {
			if f.App == string(g.App()) {
				return i
			}
		}
		return len(r.cfg.Favorites)
	}
	slices.SortStableFunc(r.groups, func(a, b *group.Controller) int {
		return rank(a) - rank(b)
	})
}

// UpdateAppGroupIndexes puts every group back into its canonical slot. A
// cancelled drag lands here.
func (r *Registry) UpdateAppGroupIndexes(app wm.AppID) {
	r.resequence()
	r.log.Debug("groups resequenced", "trigger", app)
	r.changed()
}

// Move drops the group of app at index in display order. Dropping a favorite
// among the favorites reorders them and saves the new order.
func (r *Registry) Move(app wm.AppID, index int) error {
	g, ok := r.byApp[app]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGroup, app)
	}
	from := slices.Index(r.groups, g)
	index = max(0, min(index, len(r.groups)-1))
	r.groups = slices.Delete(r.groups, from, from+1)
	r.groups = slices.Insert(r.groups, index, g)

	if g.IsFavorite() {
		var order []string
		for _, x := range r.groups {
			if x.IsFavorite() {
				order = append(order, string(x.App()))
			}
		}
		config.ReorderFavorites(r.cfg, order)
		if err := r.save(); err != nil {
			return err
		}
	}
	r.UpdateAppGroupIndexes(app)
	return nil
}

// Pin makes app a favorite, creating its group if it has no windows yet.
func (r *Registry) Pin(app wm.AppID) error {
	if err := config.AddFavorite(r.cfg, config.Favorite{App: string(app), Command: string(app)}); err != nil {
		return err
	}
	if g, ok := r.byApp[app]; ok {
		g.SetFavorite(true)
	} else {
		r.create(app, true)
	}
	r.UpdateAppGroupIndexes(app)
	return r.save()
}

// Unpin removes app from the favorites. A group left without windows goes
// away.
func (r *Registry) Unpin(app wm.AppID) error {
	if err := config.RemoveFavorite(r.cfg, string(app)); err != nil {
		return err
	}
	if g, ok := r.byApp[app]; ok {
		if g.SetFavorite(false) {
			r.destroy(g)
		} else {
			r.UpdateAppGroupIndexes(app)
		}
	}
	return r.save()
}

// TogglePin pins an unpinned app and unpins a pinned one.
func (r *Registry) TogglePin(app wm.AppID) error {
	if config.FindFavorite(r.cfg, string(app)) != nil {
		return r.Unpin(app)
	}
	return r.Pin(app)
}

func (r *Registry) save() error {
	if r.configPath == "" {
		return nil
	}
	if err := config.SaveConfig(r.configPath, r.cfg); err != nil {
		r.log.Warn("saving favorites failed", "path", r.configPath, "err", err)
		return err
	}
	return nil
}

// ApplyConfig swaps in a reloaded config: settings reach every group,
// new favorites get groups and dropped favorites are unpinned.
func (r *Registry) ApplyConfig(cfg *config.Config) {
	old := r.cfg
	r.cfg = cfg
	r.settings = group.SettingsFromConfig(cfg)
	for _, g := range slices.Clone(r.groups) {
		g.SetSettings(r.settings)
		pinned := config.FindFavorite(cfg, string(g.App())) != nil
		if pinned == g.IsFavorite() {
			continue
		}
		if g.SetFavorite(pinned) {
			r.destroy(g)
		}
	}
	for _, f := range cfg.Favorites {
		if _, ok := r.byApp[wm.AppID(f.App)]; !ok {
			r.create(wm.AppID(f.App), true)
		}
	}
	for _, app := range cfg.Ignore {
		if slices.Contains(old.Ignore, app) {
			continue
		}
		if g, ok := r.byApp[wm.AppID(app)]; ok {
			for _, id := range g.Windows() {
				delete(r.winApp, id)
			}
			r.destroy(g)
		}
	}
	r.UpdateAppGroupIndexes("")
}

// Settings returns the settings groups currently run with.
func (r *Registry) Settings() group.Settings {
	return r.settings
}

// Config returns the live config.
func (r *Registry) Config() *config.Config {
	return r.cfg
}
