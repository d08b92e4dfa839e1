package ui

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/domain"
	"github.com/skobkin/maptip/internal/tooltip"
)

func berlinMarkers() []domain.Marker {
	return []domain.Marker{
		{ID: "berlin", Title: "Berlin", Latitude: 52.52, Longitude: 13.405},
		{ID: "potsdam", Title: "Potsdam", Latitude: 52.39, Longitude: 13.06},
	}
}

func TestMapViewOwnsTooltipLayer(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})

	if view.viewport.TooltipLayer() != tooltip.Layer(view.tooltipLayer) {
		t.Fatalf("expected viewport to expose the view's tooltip layer")
	}
	size := view.viewport.Size()
	if size.Width != float64(view.Size().Width) || size.Height != float64(view.Size().Height) {
		t.Fatalf("unexpected viewport size %+v", size)
	}
	if view.tooltipLayer.container.Size() != view.Size() {
		t.Fatalf("expected tooltip layer to cover the view")
	}
}

func TestMapViewLocalPointSubtractsViewOrigin(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(view)

	got := view.viewport.LocalPoint(tooltip.PointerEvent{Position: tooltip.Pt(float64(origin.X)+30, float64(origin.Y)+40)})
	if got != tooltip.Pt(30, 40) {
		t.Fatalf("unexpected local point %+v", got)
	}
}

func TestMapViewSetMarkersSyncsMarkers(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{TooltipDefaults: immediateTooltipConfig()})

	view.setMarkers(berlinMarkers(), true)
	if len(view.markerLayer.Objects) != 2 || len(view.tooltipLayer.container.Objects) != 2 {
		t.Fatalf("expected two icons and two tooltips, got %d/%d", len(view.markerLayer.Objects), len(view.tooltipLayer.container.Objects))
	}
	if view.emptyLabel.Visible() {
		t.Fatalf("expected empty label hidden with positioned markers")
	}
	berlin := view.markers["berlin"]

	updated := berlinMarkers()[:1]
	updated[0].Details = "Capital"
	updated[0].Icon = domain.MarkerIconDot
	view.setMarkers(updated, false)
	if view.markers["berlin"] != berlin {
		t.Fatalf("expected content updates to keep the marker")
	}
	if _, ok := view.markers["potsdam"]; ok {
		t.Fatalf("expected missing marker removed")
	}
	if len(view.markerLayer.Objects) != 1 || len(view.tooltipLayer.container.Objects) != 1 {
		t.Fatalf("expected one icon and one tooltip left, got %d/%d", len(view.markerLayer.Objects), len(view.tooltipLayer.container.Objects))
	}
	if view.markerLayer.Objects[0] != berlin.icon || berlin.Tooltip().Target() != tooltip.EventTarget(berlin.icon) {
		t.Fatalf("expected swapped icon to be placed and bound")
	}

	oldTip := berlin.Tooltip()
	track := true
	updated[0].Tooltip = config.TooltipConfig{TrackMouse: &track}
	view.setMarkers(updated, false)
	if view.markers["berlin"] == berlin {
		t.Fatalf("expected tooltip option change to rebuild the marker")
	}
	if !oldTip.Removed() {
		t.Fatalf("expected previous tooltip removed")
	}
	if len(view.tooltipLayer.container.Objects) != 1 {
		t.Fatalf("expected rebuilt marker to replace its overlay, got %d", len(view.tooltipLayer.container.Objects))
	}
}

func TestMapViewShowsEmptyLabelWithoutPositions(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	view.setMarkers([]domain.Marker{{ID: "nowhere", Latitude: 100}}, true)

	if !view.emptyLabel.Visible() {
		t.Fatalf("expected empty label without valid positions")
	}
	if view.markers["nowhere"].icon.Visible() {
		t.Fatalf("expected marker without position hidden")
	}
}

func TestMapViewInitialCenterUsesFocusedMarker(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{FocusMarkerID: "potsdam"})
	view.setMarkers(berlinMarkers(), true)

	want := centerCoordinateToViewport(mapCoordinate{Latitude: 52.39, Longitude: 13.06}, mapDefaultZoom)
	if view.viewState != want {
		t.Fatalf("unexpected center: got %+v want %+v", view.viewState, want)
	}
	if !view.autoCentered {
		t.Fatalf("expected map marked as auto-centered")
	}
}

func TestMapViewApplyViewportDisablesAutoCenter(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	view.applyViewport(config.MapViewportConfig{Set: true, Zoom: 6, X: 5, Y: -3})

	if view.viewState != (mapViewportState{Zoom: 6, X: 5, Y: -3}) {
		t.Fatalf("expected saved viewport applied, got %+v", view.viewState)
	}
	view.setMarkers(berlinMarkers(), false)
	if view.viewState != (mapViewportState{Zoom: 6, X: 5, Y: -3}) {
		t.Fatalf("expected saved viewport kept on marker updates, got %+v", view.viewState)
	}
}

func TestMapViewHoverShowsClampedTooltip(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{TooltipDefaults: immediateTooltipConfig()})
	view.setMarkers(berlinMarkers(), true)
	marker := view.markers["berlin"]
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(view)
	size := view.Size()

	abs := origin.Add(fyne.NewPos(size.Width-10, 40))
	marker.icon.MouseIn(&desktop.MouseEvent{PointEvent: fyne.PointEvent{AbsolutePosition: abs}})

	tip := marker.Tooltip()
	if tip.State() != tooltip.Shown {
		t.Fatalf("expected tooltip shown immediately, got %s", tip.State())
	}
	el := tip.Element()
	if el.Style(tooltip.StyleLeft) != "auto" || el.Style(tooltip.StyleRight) != "10px" {
		t.Fatalf("expected right edge clamping, got left=%q right=%q", el.Style(tooltip.StyleLeft), el.Style(tooltip.StyleRight))
	}
	if el.Style(tooltip.StyleTop) != "64px" {
		t.Fatalf("expected top below cursor, got %q", el.Style(tooltip.StyleTop))
	}

	marker.icon.MouseOut()
	if tip.State() != tooltip.Hidden {
		t.Fatalf("expected tooltip hidden after leave, got %s", tip.State())
	}
}

func TestMapViewViewportChangeHidesTooltips(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{TooltipDefaults: immediateTooltipConfig()})
	view.setMarkers(berlinMarkers(), true)
	tip := view.markers["berlin"].Tooltip()
	if err := tip.Show(tooltip.Pt(10, 10), nil); err != nil {
		t.Fatalf("show: %v", err)
	}

	view.handleDrag(fyne.NewDelta(mapDragPanThreshold, 0))
	if tip.Showing() {
		t.Fatalf("expected tooltip hidden while the viewport moves")
	}
}

func TestMapViewThemeVariantSwapsIcons(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{TooltipDefaults: immediateTooltipConfig()})
	view.setMarkers(berlinMarkers(), true)
	marker := view.markers["berlin"]
	before := marker.icon

	view.applyThemeVariant(theme.VariantLight)
	if marker.icon == before {
		t.Fatalf("expected icon swapped on theme change")
	}
	if marker.icon.image.Resource != markerResource(domain.MarkerIconPin, theme.VariantLight) {
		t.Fatalf("expected light marker artwork")
	}
	if marker.Tooltip().Target() != tooltip.EventTarget(marker.icon) {
		t.Fatalf("expected tooltip to follow the new icon")
	}
}

func TestMapViewScrollZooms(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	view.viewState = mapViewportState{Zoom: 5, X: 2, Y: -3}
	center := fyne.NewPos(view.Size().Width/2, view.Size().Height/2)

	view.handleScroll(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: center}, Scrolled: fyne.NewDelta(0, mapScrollZoomStep)})
	if view.viewState != (mapViewportState{Zoom: 6, X: 4, Y: -6}) {
		t.Fatalf("unexpected state after zoom in: %+v", view.viewState)
	}
	view.handleScroll(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: center}, Scrolled: fyne.NewDelta(0, -mapScrollZoomStep)})
	if view.viewState != (mapViewportState{Zoom: 5, X: 2, Y: -3}) {
		t.Fatalf("unexpected state after zoom out: %+v", view.viewState)
	}
	surface := view.surface.(*fakeSurface)
	if surface.calls["zoom_in"] != 1 || surface.calls["zoom_out"] != 1 {
		t.Fatalf("expected tile map to follow zoom, got %v", surface.calls)
	}
}

func TestMapViewScrollZoomInPansTowardCursor(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	view.viewState = mapViewportState{Zoom: 5}
	corner := fyne.NewPos(view.Size().Width-5, view.Size().Height-5)

	view.handleScroll(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: corner}, Scrolled: fyne.NewDelta(0, mapScrollZoomStep)})
	if view.viewState.Zoom != 6 || view.viewState.X <= 0 || view.viewState.Y <= 0 {
		t.Fatalf("expected zoom in towards the bottom right, got %+v", view.viewState)
	}
}

func TestMapViewDragPansInExpectedDirections(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	view.viewState = mapViewportState{Zoom: 5}

	steps := []struct {
		delta fyne.Delta
		want  mapViewportState
	}{
		{delta: fyne.NewDelta(mapDragPanThreshold, 0), want: mapViewportState{Zoom: 5, X: -1}},
		{delta: fyne.NewDelta(-mapDragPanThreshold, 0), want: mapViewportState{Zoom: 5}},
		{delta: fyne.NewDelta(0, mapDragPanThreshold), want: mapViewportState{Zoom: 5, Y: -1}},
		{delta: fyne.NewDelta(0, -mapDragPanThreshold), want: mapViewportState{Zoom: 5}},
		{delta: fyne.NewDelta(mapDragPanThreshold/2, 0), want: mapViewportState{Zoom: 5}},
	}
	for i, step := range steps {
		view.handleDrag(step.delta)
		if view.viewState != step.want {
			t.Fatalf("step %d: got %+v want %+v", i, view.viewState, step.want)
		}
	}
}

func TestMapViewViewportPersistDebouncesAndSavesLatest(t *testing.T) {
	updates := make(chan mapViewportState, 2)
	view, _ := newTestMapView(t, mapViewOptions{
		OnViewportSaved: func(zoom, x, y int) {
			updates <- mapViewportState{Zoom: zoom, X: x, Y: y}
		},
	})
	view.viewState = mapViewportState{Zoom: 5}

	view.handleDrag(fyne.NewDelta(mapDragPanThreshold, 0))
	view.handleDrag(fyne.NewDelta(mapDragPanThreshold, 0))

	select {
	case got := <-updates:
		if got != (mapViewportState{Zoom: 5, X: -2}) {
			t.Fatalf("unexpected persisted viewport: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for viewport save")
	}
	select {
	case <-updates:
		t.Fatalf("expected a single debounced save")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMapViewWatchAppliesStoreChanges(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	store := domain.NewMarkerStore()
	store.Upsert(berlinMarkers()[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.watch(ctx, store)
	if _, ok := view.markers["berlin"]; !ok {
		t.Fatalf("expected initial snapshot applied synchronously")
	}

	store.Upsert(berlinMarkers()[1])
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var ok bool
		fyne.DoAndWait(func() { _, ok = view.markers["potsdam"] })
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected store change applied to the map")
}

func TestMapViewReloadButtonOnlyWithHandler(t *testing.T) {
	view, _ := newTestMapView(t, mapViewOptions{})
	without := len(view.controls.Objects)

	calls := 0
	withReload, _ := newTestMapView(t, mapViewOptions{OnReload: func() error {
		calls++

		return nil
	}})
	if len(withReload.controls.Objects) != without+1 {
		t.Fatalf("expected an extra reload control, got %d vs %d", len(withReload.controls.Objects), without)
	}
	withReload.reloadMarkers()
	if calls != 1 {
		t.Fatalf("expected reload handler called once, got %d", calls)
	}
}
