package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/tooltip"
)

// fakeSurface stands in for the tile map and counts navigation calls.
type fakeSurface struct {
	widget.BaseWidget

	calls map[string]int
}

func newFakeSurface() *fakeSurface {
	s := &fakeSurface{calls: make(map[string]int)}
	s.ExtendBaseWidget(s)

	return s
}

func (s *fakeSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func (s *fakeSurface) ZoomIn()   { s.calls["zoom_in"]++ }
func (s *fakeSurface) ZoomOut()  { s.calls["zoom_out"]++ }
func (s *fakeSurface) PanNorth() { s.calls["north"]++ }
func (s *fakeSurface) PanSouth() { s.calls["south"]++ }
func (s *fakeSurface) PanEast()  { s.calls["east"]++ }
func (s *fakeSurface) PanWest()  { s.calls["west"]++ }

// immediateTooltipConfig shows and hides synchronously without fading.
func immediateTooltipConfig() config.TooltipConfig {
	zero := 0
	fade := false

	return config.TooltipConfig{ShowDelayMs: &zero, HideDelayMs: &zero, FadeAnimation: &fade}
}

func newTestMapView(t *testing.T, opts mapViewOptions) (*mapView, fyne.Window) {
	t.Helper()
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	if opts.Scheduler == nil {
		opts.Scheduler = tooltip.NewTimerScheduler(fyne.Do)
	}
	view := newMapView(newFakeSurface(), opts)
	window := fynetest.NewTempWindow(t, view)
	window.Resize(fyne.NewSize(800, 600))
	view.Refresh()

	return view, window
}
