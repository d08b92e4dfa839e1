package domain

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skobkin/maptip/internal/bus"
	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/tooltip"
)

const catalogVersion = 1

// Catalog is the YAML marker file.
//
//	version: 1
//	tooltip:
//	  show_delay_ms: 200
//	markers:
//	  - id: berlin
//	    title: Berlin
//	    details: "**Capital** of Germany"
//	    lat: 52.52
//	    lon: 13.405
//	    tooltip:
//	      track_mouse: true
type Catalog struct {
	Version int             `yaml:"version"`
	Tooltip *CatalogTooltip `yaml:"tooltip,omitempty"`
	Markers []CatalogMarker `yaml:"markers"`
}

type CatalogMarker struct {
	ID      string          `yaml:"id"`
	Title   string          `yaml:"title,omitempty"`
	Details string          `yaml:"details,omitempty"`
	Lat     *float64        `yaml:"lat"`
	Lon     *float64        `yaml:"lon"`
	Icon    MarkerIcon      `yaml:"icon,omitempty"`
	Tooltip *CatalogTooltip `yaml:"tooltip,omitempty"`
}

// CatalogTooltip mirrors config.TooltipConfig with YAML keys.
type CatalogTooltip struct {
	Width         tooltip.Length `yaml:"width"`
	MinWidth      tooltip.Length `yaml:"min_width"`
	MaxWidth      tooltip.Length `yaml:"max_width"`
	Padding       tooltip.Length `yaml:"padding"`
	ShowDelayMs   *int           `yaml:"show_delay_ms,omitempty"`
	HideDelayMs   *int           `yaml:"hide_delay_ms,omitempty"`
	MouseOffset   *[2]float64    `yaml:"mouse_offset,omitempty"`
	FadeAnimation *bool          `yaml:"fade_animation,omitempty"`
	TrackMouse    *bool          `yaml:"track_mouse,omitempty"`
}

func (t *CatalogTooltip) config() config.TooltipConfig {
	if t == nil {
		return config.TooltipConfig{}
	}
	out := config.TooltipConfig{
		Width:         t.Width,
		MinWidth:      t.MinWidth,
		MaxWidth:      t.MaxWidth,
		Padding:       t.Padding,
		ShowDelayMs:   t.ShowDelayMs,
		HideDelayMs:   t.HideDelayMs,
		FadeAnimation: t.FadeAnimation,
		TrackMouse:    t.TrackMouse,
	}
	if t.MouseOffset != nil {
		out.MouseOffset = &config.OffsetConfig{X: t.MouseOffset[0], Y: t.MouseOffset[1]}
	}

	return out
}

func LoadCatalog(path string) (Catalog, error) {
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path comes from the user config or command line.
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Catalog{}, fmt.Errorf("read marker catalog %q: %w", path, err)
	}

	return ParseCatalog(data, path)
}

func ParseCatalog(data []byte, source string) (Catalog, error) {
	var cat Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return cat, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if errs := cat.Validate(); len(errs) > 0 {
		return cat, fmt.Errorf("invalid marker catalog in %q: %s", source, strings.Join(errs, "; "))
	}

	return cat, nil
}

func (c Catalog) Validate() []string {
	var errs []string

	if c.Version != catalogVersion {
		errs = append(errs, fmt.Sprintf("unsupported catalog version %d", c.Version))
	}
	errs = append(errs, validateCatalogTooltip("tooltip", c.Tooltip)...)

	seen := map[string]struct{}{}
	for i, m := range c.Markers {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			errs = append(errs, fmt.Sprintf("markers[%d].id is required", i))
		} else {
			if _, ok := seen[id]; ok {
				errs = append(errs, fmt.Sprintf("markers[%d] duplicate id %q", i, id))
			}
			seen[id] = struct{}{}
		}
		if m.Lat == nil || m.Lon == nil {
			errs = append(errs, fmt.Sprintf("markers[%d] requires lat and lon", i))
		} else if !(Marker{Latitude: *m.Lat, Longitude: *m.Lon}).HasValidPosition() {
			errs = append(errs, fmt.Sprintf("markers[%d] position %.6f,%.6f is out of range", i, *m.Lat, *m.Lon))
		}
		switch m.Icon {
		case "", MarkerIconPin, MarkerIconDot:
		default:
			errs = append(errs, fmt.Sprintf("markers[%d].icon %q is not supported", i, m.Icon))
		}
		errs = append(errs, validateCatalogTooltip(fmt.Sprintf("markers[%d].tooltip", i), m.Tooltip)...)
	}

	return errs
}

func validateCatalogTooltip(field string, t *CatalogTooltip) []string {
	if t == nil {
		return nil
	}
	if err := t.config().Validate(); err != nil {
		return []string{fmt.Sprintf("%s: %v", field, err)}
	}

	return nil
}

// Resolve turns catalog entries into markers. Each marker's tooltip override
// is layered on top of the catalog-wide one.
func (c Catalog) Resolve() []Marker {
	shared := c.Tooltip.config()
	out := make([]Marker, 0, len(c.Markers))
	for _, m := range c.Markers {
		marker := Marker{
			ID:      strings.TrimSpace(m.ID),
			Title:   m.Title,
			Details: m.Details,
			Icon:    m.Icon,
			Tooltip: shared.Merge(m.Tooltip.config()),
		}
		if m.Lat != nil {
			marker.Latitude = *m.Lat
		}
		if m.Lon != nil {
			marker.Longitude = *m.Lon
		}
		out = append(out, marker)
	}

	return out
}

// PublishCatalog replaces every marker known to bus subscribers.
func PublishCatalog(b bus.MessageBus, c Catalog) {
	b.Publish(bus.TopicMarkerReset, c.Resolve())
}
