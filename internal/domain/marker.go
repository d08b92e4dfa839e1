package domain

import (
	"math"
	"strings"

	"github.com/skobkin/maptip/internal/config"
)

// MarkerIcon names one of the embedded marker icon styles.
type MarkerIcon string

const (
	MarkerIconPin MarkerIcon = "pin"
	MarkerIconDot MarkerIcon = "dot"
)

// Marker is a point of interest shown on the map.
type Marker struct {
	ID        string
	Title     string
	Details   string
	Latitude  float64
	Longitude float64
	Icon      MarkerIcon
	// Tooltip overrides the app-wide tooltip defaults for this marker.
	Tooltip config.TooltipConfig
}

// MarkerUpsert is published on bus.TopicMarkerUpsert.
type MarkerUpsert struct {
	Marker Marker
}

// MarkerRemoval is published on bus.TopicMarkerRemove.
type MarkerRemoval struct {
	ID string
}

// HasValidPosition reports whether the marker can be projected on a map.
func (m Marker) HasValidPosition() bool {
	lat, lon := m.Latitude, m.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}

	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DisplayTitle falls back to the ID when the marker has no title.
func (m Marker) DisplayTitle() string {
	if title := strings.TrimSpace(m.Title); title != "" {
		return title
	}

	return m.ID
}

// TooltipMarkup renders the marker as Markdown for its tooltip.
func (m Marker) TooltipMarkup() string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(escapeMarkdown(m.DisplayTitle()))
	b.WriteString("**")
	if details := strings.TrimSpace(m.Details); details != "" {
		b.WriteString("\n\n")
		b.WriteString(details)
	}

	return b.String()
}

func (m Marker) IconOrDefault() MarkerIcon {
	switch m.Icon {
	case MarkerIconDot:
		return MarkerIconDot
	default:
		return MarkerIconPin
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
