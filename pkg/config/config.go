package config

import (
	"time"

	"github.com/b/wingroup/pkg/paths"
)

type Config struct {
	Position  string            `yaml:"position"`   // top, bottom, left, right
	PanelSize int               `yaml:"panel_size"` // panel thickness in cells
	RTL       bool              `yaml:"rtl"`        // right-to-left panel layout
	LogLevel  string            `yaml:"log_level"`  // overrides LOG_LEVEL when set
	RefreshMs int               `yaml:"refresh_ms"` // tmux poll interval
	Button    Button            `yaml:"button"`
	Clicks    Clicks            `yaml:"clicks"`
	Favorites []Favorite        `yaml:"favorites"`
	Rules     []Rule            `yaml:"rules"`  // first match wins
	Ignore    []string          `yaml:"ignore"` // app ids never shown
	Icons     map[string]string `yaml:"icons"`  // app id -> glyph
	Theme     Theme             `yaml:"theme"`
}

type Button struct {
	Label                  string `yaml:"label"`     // none, title, application, focused_title
	MaxWidth               int    `yaml:"max_width"` // maximum button width in cells
	ShowBadge              *bool  `yaml:"show_badge"`
	BadgeMinCount          int    `yaml:"badge_min_count"`
	EnableDrag             *bool  `yaml:"enable_drag"`
	SortPreviewsByRecency  bool   `yaml:"sort_previews_by_recency"`
	KeyActivationTimeoutMs int    `yaml:"key_activation_timeout_ms"`
	Animation              string `yaml:"animation"` // none, flash
}

// Clicks maps pointer buttons to actions. Primary, Middle and Secondary
// are the bare-button bindings; Modified adds chords with modifier keys.
type Clicks struct {
	Primary      string         `yaml:"primary"`   // toggle, preview, launch, none
	Middle       string         `yaml:"middle"`    // launch, launch_offloaded, close, none
	Secondary    string         `yaml:"secondary"` // menu, none
	CycleWindows bool           `yaml:"cycle_windows"`
	Modified     []ClickBinding `yaml:"modified"`
}

type ClickBinding struct {
	Button    string   `yaml:"button"`    // primary, middle, secondary
	Modifiers []string `yaml:"modifiers"` // shift, ctrl, alt
	Action    string   `yaml:"action"`
}

// Favorite is a pinned launcher. App is the identity windows are matched
// against; Command is what a launch runs (defaults to App).
type Favorite struct {
	App     string `yaml:"app"`
	Command string `yaml:"command,omitempty"`
	Name    string `yaml:"name,omitempty"`
	Icon    string `yaml:"icon,omitempty"`
}

// Rule assigns an app identity to windows whose command or name matches
// Pattern. Windows matching no rule use their pane command.
type Rule struct {
	Pattern string `yaml:"pattern"`
	App     string `yaml:"app"`
}

// Theme colors are hex strings. Empty fields are filled from Preset.
type Theme struct {
	Preset      string `yaml:"preset"` // auto, dark, light or a named preset
	Fg          string `yaml:"fg"`
	Bg          string `yaml:"bg"`
	FocusedFg   string `yaml:"focused_fg"`
	FocusedBg   string `yaml:"focused_bg"`
	AttentionBg string `yaml:"attention_bg"`
	ProgressBg  string `yaml:"progress_bg"`
	BadgeFg     string `yaml:"badge_fg"`
	BadgeBg     string `yaml:"badge_bg"`
}

// Label display modes.
const (
	LabelNone         = "none"
	LabelTitle        = "title"
	LabelApplication  = "application"
	LabelFocusedTitle = "focused_title"
)

// Click action names.
const (
	ActionLaunch          = "launch"
	ActionLaunchOffloaded = "launch_offloaded"
	ActionClose           = "close"
	ActionToggle          = "toggle"
	ActionPreview         = "preview"
	ActionMenu            = "menu"
	ActionNone            = "none"
)

// ThemeAuto picks the dark or light preset from the terminal background.
const ThemeAuto = "auto"

// Animation styles.
const (
	AnimationNone  = "none"
	AnimationFlash = "flash"
)

func DefaultConfigPath() string {
	return paths.ConfigPath()
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// BadgeEnabled reports whether the window-count badge may be shown.
func (b Button) BadgeEnabled() bool {
	return b.ShowBadge == nil || *b.ShowBadge
}

// DragEnabled reports whether buttons can be dragged to reorder launchers.
func (b Button) DragEnabled() bool {
	return b.EnableDrag == nil || *b.EnableDrag
}

// RefreshInterval is how often the panel polls tmux.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMs) * time.Millisecond
}

func (b Button) KeyActivationTimeout() time.Duration {
	return time.Duration(b.KeyActivationTimeoutMs) * time.Millisecond
}

// Vertical reports whether the panel runs along the left or right edge.
func (c *Config) Vertical() bool {
	return c.Position == "left" || c.Position == "right"
}

// IconFor returns the configured glyph for an app, falling back to the
// favorite's icon and then to the first letter of the app id.
func (c *Config) IconFor(app string) string {
	if icon, ok := c.Icons[app]; ok && icon != "" {
		return icon
	}
	if fav := FindFavorite(c, app); fav != nil && fav.Icon != "" {
		return fav.Icon
	}
	for _, r := range app {
		return string(r)
	}
	return "?"
}
