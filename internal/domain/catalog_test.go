package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skobkin/maptip/internal/tooltip"
)

const sampleCatalog = `version: 1
tooltip:
  show_delay_ms: 200
  padding: 6
markers:
  - id: berlin
    title: Berlin
    details: "**Capital** of Germany"
    lat: 52.52
    lon: 13.405
  - id: paris
    title: Paris
    lat: 48.8566
    lon: 2.3522
    icon: dot
    tooltip:
      width: 240
      max_width: 20em
      mouse_offset: [8, 0]
      track_mouse: true
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog), "inline")
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	markers := cat.Resolve()
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}

	berlin := markers[0]
	if berlin.ID != "berlin" || berlin.Latitude != 52.52 || berlin.Longitude != 13.405 {
		t.Fatalf("unexpected berlin marker: %+v", berlin)
	}
	if berlin.Tooltip.ShowDelayMs == nil || *berlin.Tooltip.ShowDelayMs != 200 {
		t.Fatalf("expected shared show delay on berlin")
	}
	if berlin.Tooltip.Padding.String() != "6px" {
		t.Fatalf("expected shared padding, got %v", berlin.Tooltip.Padding)
	}

	paris := markers[1]
	if paris.IconOrDefault() != MarkerIconDot {
		t.Fatalf("expected dot icon for paris")
	}
	if paris.Tooltip.Width.String() != "240px" || paris.Tooltip.MaxWidth.String() != "20em" {
		t.Fatalf("unexpected paris widths: %v %v", paris.Tooltip.Width, paris.Tooltip.MaxWidth)
	}
	if paris.Tooltip.MouseOffset == nil || paris.Tooltip.MouseOffset.X != 8 || paris.Tooltip.MouseOffset.Y != 0 {
		t.Fatalf("unexpected paris mouse offset: %+v", paris.Tooltip.MouseOffset)
	}
	if paris.Tooltip.TrackMouse == nil || !*paris.Tooltip.TrackMouse {
		t.Fatalf("expected track mouse override")
	}
	if *paris.Tooltip.ShowDelayMs != 200 {
		t.Fatalf("expected shared delay kept under marker override")
	}
	if opts := paris.Tooltip.Options(); opts.MinWidth != tooltip.Auto {
		t.Fatalf("expected unset min width to resolve to auto, got %v", opts.MinWidth)
	}
}

func TestCatalogMarkerOverrideDisablesSharedTracking(t *testing.T) {
	raw := `version: 1
tooltip:
  track_mouse: true
markers:
  - id: follows
    lat: 1
    lon: 2
  - id: still
    lat: 3
    lon: 4
    tooltip:
      track_mouse: false
`
	cat, err := ParseCatalog([]byte(raw), "inline")
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	markers := cat.Resolve()

	if !markers[0].Tooltip.Options().TrackMouse {
		t.Fatalf("expected shared track_mouse applied to %q", markers[0].ID)
	}
	if markers[1].Tooltip.Options().TrackMouse {
		t.Fatalf("expected marker track_mouse: false to win over the shared block")
	}
}

func TestParseCatalogRejectsUnknownFields(t *testing.T) {
	raw := "version: 1\nmarkers:\n  - id: a\n    lat: 1\n    lon: 2\n    colour: red\n"
	if _, err := ParseCatalog([]byte(raw), "inline"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestCatalogValidate(t *testing.T) {
	raw := `version: 2
tooltip:
  hide_delay_ms: -5
markers:
  - id: a
    lat: 1
    lon: 2
  - id: a
    lat: 95
    lon: 2
  - title: no id
  - id: b
    lat: 1
    lon: 1
    icon: star
`
	_, err := ParseCatalog([]byte(raw), "inline")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"unsupported catalog version 2",
		"tooltip: tooltip hide delay must not be negative",
		`markers[1] duplicate id "a"`,
		"markers[1] position",
		"markers[2].id is required",
		"markers[2] requires lat and lon",
		`markers[3].icon "star" is not supported`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error, got %v", want, err)
		}
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatalf("write catalog fixture: %v", err)
	}
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(cat.Markers) != 2 {
		t.Fatalf("unexpected marker count: %d", len(cat.Markers))
	}
}
