package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skobkin/maptip/internal/tooltip"
)

const (
	MaxMapZoom = 19

	defaultShowDelayMs = 500
	defaultHideDelayMs = 500
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// OffsetConfig is a 2D pixel offset.
type OffsetConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TooltipConfig holds the default appearance and timing of marker tooltips.
// Lengths accept either a number of pixels or a literal CSS length string.
type TooltipConfig struct {
	Width         tooltip.Length `json:"width"`
	MinWidth      tooltip.Length `json:"min_width"`
	MaxWidth      tooltip.Length `json:"max_width"`
	Padding       tooltip.Length `json:"padding"`
	ShowDelayMs   *int           `json:"show_delay_ms"`
	HideDelayMs   *int           `json:"hide_delay_ms"`
	MouseOffset   *OffsetConfig  `json:"mouse_offset"`
	FadeAnimation *bool          `json:"fade_animation"`
	TrackMouse    *bool          `json:"track_mouse"`
}

// MapViewportConfig stores the latest map viewport selected by user.
type MapViewportConfig struct {
	Set  bool `json:"set"`
	Zoom int  `json:"zoom"`
	X    int  `json:"x"`
	Y    int  `json:"y"`
}

// MapConfig stores map surface preferences.
type MapConfig struct {
	Viewport     MapViewportConfig `json:"viewport"`
	TileCacheMiB int               `json:"tile_cache_mib"`
	OfflineTiles bool              `json:"offline_tiles"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Logging     LoggingConfig `json:"logging"`
	Map         MapConfig     `json:"map"`
	Tooltip     TooltipConfig `json:"tooltip"`
	MarkersFile string        `json:"markers_file"`
}

func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Map: MapConfig{
			TileCacheMiB: 200,
		},
		Tooltip: DefaultTooltip(),
	}
}

func DefaultTooltip() TooltipConfig {
	showDelay := defaultShowDelayMs
	hideDelay := defaultHideDelayMs
	fade := true
	track := false

	return TooltipConfig{
		Width:         tooltip.Auto,
		MinWidth:      tooltip.Auto,
		MaxWidth:      tooltip.Auto,
		Padding:       tooltip.DefaultPadding,
		ShowDelayMs:   &showDelay,
		HideDelayMs:   &hideDelay,
		MouseOffset:   &OffsetConfig{X: tooltip.DefaultMouseOffset.X, Y: tooltip.DefaultMouseOffset.Y},
		FadeAnimation: &fade,
		TrackMouse:    &track,
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config %q: %w", cleanPath, err)
	}

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Map.TileCacheMiB <= 0 {
		c.Map.TileCacheMiB = 200
	}
	c.Map.Viewport = normalizeMapViewport(c.Map.Viewport)
	c.Tooltip.FillMissingDefaults()
}

// FillMissingDefaults sets every unset field to its documented default.
func (c *TooltipConfig) FillMissingDefaults() {
	def := DefaultTooltip()
	if c.Width.IsZero() {
		c.Width = def.Width
	}
	if c.MinWidth.IsZero() {
		c.MinWidth = def.MinWidth
	}
	if c.MaxWidth.IsZero() {
		c.MaxWidth = def.MaxWidth
	}
	if c.Padding.IsZero() {
		c.Padding = def.Padding
	}
	if c.ShowDelayMs == nil {
		c.ShowDelayMs = def.ShowDelayMs
	}
	if c.HideDelayMs == nil {
		c.HideDelayMs = def.HideDelayMs
	}
	if c.MouseOffset == nil {
		c.MouseOffset = def.MouseOffset
	}
	if c.FadeAnimation == nil {
		c.FadeAnimation = def.FadeAnimation
	}
	if c.TrackMouse == nil {
		c.TrackMouse = def.TrackMouse
	}
}

// Options converts the config into tooltip options. Viewport, target and
// content are left for the caller.
func (c TooltipConfig) Options() tooltip.Options {
	c.FillMissingDefaults()

	return tooltip.Options{
		Width:         c.Width,
		MinWidth:      c.MinWidth,
		MaxWidth:      c.MaxWidth,
		Padding:       c.Padding,
		ShowDelay:     time.Duration(*c.ShowDelayMs) * time.Millisecond,
		HideDelay:     time.Duration(*c.HideDelayMs) * time.Millisecond,
		MouseOffset:   tooltip.Pt(c.MouseOffset.X, c.MouseOffset.Y),
		FadeAnimation: *c.FadeAnimation,
		TrackMouse:    *c.TrackMouse,
	}
}

// Merge returns c with every field set in override applied on top.
func (c TooltipConfig) Merge(override TooltipConfig) TooltipConfig {
	if !override.Width.IsZero() {
		c.Width = override.Width
	}
	if !override.MinWidth.IsZero() {
		c.MinWidth = override.MinWidth
	}
	if !override.MaxWidth.IsZero() {
		c.MaxWidth = override.MaxWidth
	}
	if !override.Padding.IsZero() {
		c.Padding = override.Padding
	}
	if override.ShowDelayMs != nil {
		c.ShowDelayMs = override.ShowDelayMs
	}
	if override.HideDelayMs != nil {
		c.HideDelayMs = override.HideDelayMs
	}
	if override.MouseOffset != nil {
		c.MouseOffset = override.MouseOffset
	}
	if override.FadeAnimation != nil {
		c.FadeAnimation = override.FadeAnimation
	}
	if override.TrackMouse != nil {
		c.TrackMouse = override.TrackMouse
	}

	return c
}

func normalizeMapViewport(viewport MapViewportConfig) MapViewportConfig {
	if !viewport.Set {
		return MapViewportConfig{}
	}
	if viewport.Zoom < 0 {
		viewport.Zoom = 0
	}
	if viewport.Zoom > MaxMapZoom {
		viewport.Zoom = MaxMapZoom
	}

	return viewport
}

func (c AppConfig) Validate() error {
	if err := c.Tooltip.Validate(); err != nil {
		return err
	}
	if c.Map.TileCacheMiB < 0 {
		return errors.New("tile cache size must not be negative")
	}

	return nil
}

func (c TooltipConfig) Validate() error {
	if c.ShowDelayMs != nil && *c.ShowDelayMs < 0 {
		return fmt.Errorf("tooltip show delay must not be negative: %d", *c.ShowDelayMs)
	}
	if c.HideDelayMs != nil && *c.HideDelayMs < 0 {
		return fmt.Errorf("tooltip hide delay must not be negative: %d", *c.HideDelayMs)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
