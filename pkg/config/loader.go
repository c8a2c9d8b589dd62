package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrFavoriteExists   = errors.New("favorite already exists")
	ErrInvalidAction    = errors.New("invalid click action")
	ErrInvalidLabelMode = errors.New("invalid label mode")
	ErrInvalidRule      = errors.New("invalid rule")
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not
// exist. Parse and validation errors are still returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveConfig writes the config to the specified path
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Button.Label {
	case LabelNone, LabelTitle, LabelApplication, LabelFocusedTitle:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLabelMode, c.Button.Label)
	}
	actions := []string{c.Clicks.Primary, c.Clicks.Middle, c.Clicks.Secondary}
	for _, b := range c.Clicks.Modified {
		actions = append(actions, b.Action)
	}
	for _, a := range actions {
		switch a {
		case ActionLaunch, ActionLaunchOffloaded, ActionClose, ActionToggle,
			ActionPreview, ActionMenu, ActionNone:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAction, a)
		}
	}
	for _, r := range c.Rules {
		if r.App == "" {
			return fmt.Errorf("%w: pattern %q has no app", ErrInvalidRule, r.Pattern)
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRule, err)
		}
	}
	return nil
}

// AddFavorite appends a pinned launcher.
func AddFavorite(cfg *Config, fav Favorite) error {
	if FindFavorite(cfg, fav.App) != nil {
		return ErrFavoriteExists
	}
	cfg.Favorites = append(cfg.Favorites, fav)
	return nil
}

// RemoveFavorite unpins a launcher by app id.
func RemoveFavorite(cfg *Config, app string) error {
	for i, f := range cfg.Favorites {
		if f.App == app {
			cfg.Favorites = append(cfg.Favorites[:i], cfg.Favorites[i+1:]...)
			return nil
		}
	}
	return ErrFavoriteNotFound
}

// FindFavorite returns a pointer to the favorite for app, or nil if not pinned
func FindFavorite(cfg *Config, app string) *Favorite {
	for i := range cfg.Favorites {
		if cfg.Favorites[i].App == app {
			return &cfg.Favorites[i]
		}
	}
	return nil
}

// ReorderFavorites sorts favorites to follow order (a list of app ids).
// Apps missing from order keep their relative position at the end.
func ReorderFavorites(cfg *Config, order []string) {
	rank := func(app string) int {
		if i := slices.Index(order, app); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(cfg.Favorites, func(a, b Favorite) int {
		return rank(a.App) - rank(b.App)
	})
}

func applyDefaults(cfg *Config) {
	switch cfg.Position {
	case "top", "bottom", "left", "right":
	default:
		cfg.Position = "top"
	}
	if cfg.PanelSize <= 0 {
		if cfg.Vertical() {
			cfg.PanelSize = 14
		} else {
			cfg.PanelSize = 1
		}
	}
	if cfg.RefreshMs <= 0 {
		cfg.RefreshMs = 1000
	}
	if cfg.Button.Label == "" {
		cfg.Button.Label = LabelTitle
	}
	if cfg.Button.MaxWidth <= 0 {
		cfg.Button.MaxWidth = 24
	}
	if cfg.Button.BadgeMinCount <= 0 {
		cfg.Button.BadgeMinCount = 2
	}
	if cfg.Button.KeyActivationTimeoutMs <= 0 {
		cfg.Button.KeyActivationTimeoutMs = 1500
	}
	if cfg.Button.Animation == "" {
		cfg.Button.Animation = AnimationFlash
	}
	if cfg.Clicks.Primary == "" {
		cfg.Clicks.Primary = ActionToggle
	}
	if cfg.Clicks.Middle == "" {
		cfg.Clicks.Middle = ActionLaunch
	}
	if cfg.Clicks.Secondary == "" {
		cfg.Clicks.Secondary = ActionMenu
	}
	if cfg.Clicks.Modified == nil {
		cfg.Clicks.Modified = []ClickBinding{
			{Button: "primary", Modifiers: []string{"shift"}, Action: ActionLaunch},
			{Button: "primary", Modifiers: []string{"ctrl", "shift"}, Action: ActionLaunchOffloaded},
		}
	}
	if cfg.Ignore == nil {
		cfg.Ignore = []string{"wingroup"}
	}
	for i := range cfg.Favorites {
		if cfg.Favorites[i].Command == "" {
			cfg.Favorites[i].Command = cfg.Favorites[i].App
		}
	}
	if cfg.Theme.Preset == "" {
		cfg.Theme.Preset = ThemeAuto
	}
}
