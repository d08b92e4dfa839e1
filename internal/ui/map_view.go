package ui

import (
	"context"
	"image/color"
	"log/slog"
	"math"
	"reflect"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/domain"
	"github.com/skobkin/maptip/internal/resources"
	"github.com/skobkin/maptip/internal/tooltip"
)

const (
	mapDefaultZoom             = 11
	mapMarkerOutsidePad        = float32(20)
	mapScrollZoomStep          = float32(15)
	mapZoomFocusDeadZoneRatio  = float32(0.18)
	mapZoomFocusBoostRatio     = float32(0.65)
	mapDragPanThreshold        = float32(96)
	mapViewportPersistDebounce = 500 * time.Millisecond
)

var mapLogger = slog.With("component", "ui.map")

var _ tooltip.Viewport = (*mapViewport)(nil)

// mapSurface is the tile map drawn under the markers. *xwidget.Map satisfies it.
type mapSurface interface {
	fyne.CanvasObject
	ZoomIn()
	ZoomOut()
	PanNorth()
	PanSouth()
	PanEast()
	PanWest()
}

type mapViewOptions struct {
	TooltipDefaults config.TooltipConfig
	Scheduler       tooltip.Scheduler
	FocusMarkerID   string
	Variant         fyne.ThemeVariant
	OnViewportSaved func(zoom, x, y int)
	// OnReload re-reads the marker catalog. No reload button without it.
	OnReload        func() error
}

// mapView shows markers over a tile map. It owns the tooltip layer every
// marker tooltip is placed into.
type mapView struct {
	widget.BaseWidget

	surface   mapSurface
	viewState mapViewportState
	opts      mapViewOptions

	markers      map[string]*mapMarker
	data         []domain.Marker
	byID         map[string]domain.Marker
	autoCentered bool

	lastCanvasSize    fyne.Size
	scrollAccumulator float32
	dragAccumulatorX  float32
	dragAccumulatorY  float32
	persistSeq        atomic.Uint64

	viewport     *mapViewport
	interaction  *mapInteractionLayer
	markerLayer  *fyne.Container
	tooltipLayer *overlayLayer
	emptyLabel   *widget.Label
	emptyLayer   *fyne.Container
	controls     *fyne.Container
}

func newMapView(surface mapSurface, opts mapViewOptions) *mapView {
	if opts.Variant == "" {
		opts.Variant = theme.VariantDark
	}
	opts.TooltipDefaults.FillMissingDefaults()

	emptyLabel := widget.NewLabel("No markers yet")
	v := &mapView{
		surface:      surface,
		opts:         opts,
		markers:      make(map[string]*mapMarker),
		byID:         make(map[string]domain.Marker),
		markerLayer:  container.NewWithoutLayout(),
		tooltipLayer: newOverlayLayer(),
		emptyLabel:   emptyLabel,
		emptyLayer:   container.NewCenter(emptyLabel),
	}
	v.viewport = &mapViewport{view: v}
	v.interaction = newMapInteractionLayer(v.handleScroll, v.handleDrag)
	v.controls = v.newControlPanel()
	v.ExtendBaseWidget(v)

	return v
}

// mapViewport exposes a mapView to tooltips. Its layer is created together
// with the view and lives as long as the view.
type mapViewport struct {
	view *mapView
}

func (p *mapViewport) TooltipLayer() tooltip.Layer {
	return p.view.tooltipLayer
}

func (p *mapViewport) Size() tooltip.Size {
	size := p.view.Size()

	return tooltip.Size{Width: float64(size.Width), Height: float64(size.Height)}
}

// LocalPoint converts an absolute pointer position into view coordinates.
func (p *mapViewport) LocalPoint(ev tooltip.PointerEvent) tooltip.Point {
	var origin fyne.Position
	if app := fyne.CurrentApp(); app != nil {
		origin = app.Driver().AbsolutePositionForObject(p.view)
	}

	return ev.Position.Add(tooltip.Pt(-float64(origin.X), -float64(origin.Y)))
}

// watch applies marker store changes until ctx is done.
func (v *mapView) watch(ctx context.Context, store *domain.MarkerStore) {
	v.setMarkers(store.SnapshotSorted(), true)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-store.Changes():
				snapshot := store.SnapshotSorted()
				fyne.Do(func() {
					mapLogger.Debug("applying marker store changes", "marker_count", len(snapshot))
					v.setMarkers(snapshot, false)
				})
			}
		}
	}()
}

func (v *mapView) applyViewport(viewport config.MapViewportConfig) {
	if !viewport.Set {
		return
	}
	mapLogger.Debug("applying initial map viewport", "zoom", viewport.Zoom, "x", viewport.X, "y", viewport.Y)
	v.panToViewport(mapViewportState{Zoom: viewport.Zoom, X: viewport.X, Y: viewport.Y})
	v.autoCentered = true
}

func (v *mapView) setMarkers(markers []domain.Marker, initial bool) {
	seen := make(map[string]struct{}, len(markers))
	for _, marker := range markers {
		seen[marker.ID] = struct{}{}
		v.syncMarker(marker)
	}
	for id, existing := range v.markers {
		if _, ok := seen[id]; ok {
			continue
		}
		existing.Remove()
		delete(v.markers, id)
		delete(v.byID, id)
	}
	v.data = append([]domain.Marker(nil), markers...)

	if initial || !v.autoCentered {
		zoom := v.viewState.Zoom
		if zoom == 0 {
			zoom = mapDefaultZoom
		}
		if v.centerToPreferred(zoom) {
			mapLogger.Info("auto-centered map viewport", "zoom", v.viewState.Zoom, "x", v.viewState.X, "y", v.viewState.Y)
			v.autoCentered = true
		}
	}
	v.renderMarkers()
}

func (v *mapView) syncMarker(marker domain.Marker) {
	res := markerResource(marker.IconOrDefault(), v.opts.Variant)
	existing, ok := v.markers[marker.ID]
	prev := v.byID[marker.ID]
	v.byID[marker.ID] = marker

	if ok && reflect.DeepEqual(prev.Tooltip, marker.Tooltip) {
		if prev.TooltipMarkup() != marker.TooltipMarkup() {
			if err := existing.SetContent(tooltip.Markup(marker.TooltipMarkup())); err != nil {
				mapLogger.Warn("updating marker tooltip failed", "marker_id", marker.ID, "error", err)
			}
		}
		if prev.IconOrDefault() != marker.IconOrDefault() {
			if err := existing.SetIcon(res); err != nil {
				mapLogger.Warn("updating marker icon failed", "marker_id", marker.ID, "error", err)
			}
		}

		return
	}
	if ok {
		existing.Remove()
	}

	created := newMapMarker(res, tooltip.Markup(marker.TooltipMarkup()), v.tooltipOptions(marker))
	if err := created.AddTo(v); err != nil {
		mapLogger.Warn("adding marker failed", "marker_id", marker.ID, "error", err)
		delete(v.markers, marker.ID)

		return
	}
	v.markers[marker.ID] = created
}

func (v *mapView) tooltipOptions(marker domain.Marker) tooltip.Options {
	opts := v.opts.TooltipDefaults.Merge(marker.Tooltip).Options()
	opts.Scheduler = v.opts.Scheduler
	opts.Logger = slog.With("component", "tooltip", "marker_id", marker.ID)

	return opts
}

func markerResource(icon domain.MarkerIcon, variant fyne.ThemeVariant) fyne.Resource {
	name := resources.UIIconMarkerPin
	if icon == domain.MarkerIconDot {
		name = resources.UIIconMarkerDot
	}

	return resources.UIIconResource(name, variant)
}

// applyThemeVariant swaps every marker icon for the variant's artwork.
func (v *mapView) applyThemeVariant(variant fyne.ThemeVariant) {
	if v.opts.Variant == variant {
		return
	}
	mapLogger.Debug("applying map marker theme", "from", v.opts.Variant, "to", variant)
	v.opts.Variant = variant
	for id, marker := range v.markers {
		if err := marker.SetIcon(markerResource(v.byID[id].IconOrDefault(), variant)); err != nil {
			mapLogger.Warn("swapping marker icon failed", "marker_id", id, "error", err)
		}
	}
	v.renderMarkers()
}

func (v *mapView) centerToPreferred(zoom int) bool {
	center, ok := chooseMapCenter(v.data, v.opts.FocusMarkerID)
	if !ok {
		mapLogger.Debug("map center was not resolved", "marker_count", len(v.data))

		return false
	}
	v.panToViewport(centerCoordinateToViewport(center, zoom))

	return true
}

func (v *mapView) panToViewport(target mapViewportState) {
	v.setZoom(target.Zoom)
	for v.viewState.X < target.X {
		v.step(v.surface.PanEast, v.viewState.PanEast)
	}
	for v.viewState.X > target.X {
		v.step(v.surface.PanWest, v.viewState.PanWest)
	}
	for v.viewState.Y < target.Y {
		v.step(v.surface.PanSouth, v.viewState.PanSouth)
	}
	for v.viewState.Y > target.Y {
		v.step(v.surface.PanNorth, v.viewState.PanNorth)
	}
}

func (v *mapView) setZoom(target int) {
	target = clampZoom(target)
	for v.viewState.Zoom < target {
		v.step(v.surface.ZoomIn, v.viewState.ZoomIn)
	}
	for v.viewState.Zoom > target {
		v.step(v.surface.ZoomOut, v.viewState.ZoomOut)
	}
}

// step moves the tile map and the mirrored state together.
func (v *mapView) step(surface, state func()) {
	surface()
	state()
}

// renderMarkers re-projects every marker for the current viewport.
func (v *mapView) renderMarkers() {
	size := v.markerLayer.Size()
	positioned := 0
	visible := 0
	for _, marker := range v.data {
		m, ok := v.markers[marker.ID]
		if !ok {
			continue
		}
		coord, ok := markerCoordinate(marker)
		if !ok {
			m.icon.Hide()

			continue
		}
		positioned++

		pos, ok := projectCoordinateToScreen(coord, v.viewState, size)
		if !ok || !isMarkerVisible(pos, size) {
			m.icon.Hide()

			continue
		}
		visible++
		m.icon.placeAt(pos)
		m.icon.Show()
	}

	if positioned == 0 {
		v.emptyLabel.Show()
	} else {
		v.emptyLabel.Hide()
	}
	v.markerLayer.Refresh()
	v.emptyLayer.Refresh()
	mapLogger.Debug(
		"rendered map markers",
		"total_markers", len(v.data),
		"positioned_markers", positioned,
		"visible_markers", visible,
		"zoom", v.viewState.Zoom,
		"x", v.viewState.X,
		"y", v.viewState.Y,
	)
}

func isMarkerVisible(pos fyne.Position, size fyne.Size) bool {
	if size.Width <= 0 || size.Height <= 0 {
		return false
	}

	return pos.X >= -mapMarkerOutsidePad && pos.Y >= -mapMarkerOutsidePad &&
		pos.X <= size.Width+mapMarkerOutsidePad && pos.Y <= size.Height+mapMarkerOutsidePad
}

func (v *mapView) hideTooltips() {
	for _, marker := range v.markers {
		if tip := marker.Tooltip(); tip != nil {
			_ = tip.Hide()
		}
	}
}

// viewportChanged runs after any user driven pan or zoom.
func (v *mapView) viewportChanged(source string) {
	v.hideTooltips()
	mapLogger.Debug("map viewport changed", "source", source, "zoom", v.viewState.Zoom, "x", v.viewState.X, "y", v.viewState.Y)
	v.renderMarkers()
	v.scheduleViewportPersist()
}

func (v *mapView) newControlPanel() *fyne.Container {
	button := func(icon fyne.Resource, surface, state func()) *widget.Button {
		return widget.NewButtonWithIcon("", icon, func() {
			v.step(surface, state)
			v.viewportChanged("button")
		})
	}
	recenter := widget.NewButton("Center", func() {
		v.centerToPreferred(v.viewState.Zoom)
		v.viewportChanged("center")
	})

	panGrid := container.NewGridWithColumns(3,
		layout.NewSpacer(),
		button(theme.MoveUpIcon(), v.surface.PanNorth, v.viewState.PanNorth),
		layout.NewSpacer(),
		button(theme.NavigateBackIcon(), v.surface.PanWest, v.viewState.PanWest),
		layout.NewSpacer(),
		button(theme.NavigateNextIcon(), v.surface.PanEast, v.viewState.PanEast),
		layout.NewSpacer(),
		button(theme.MoveDownIcon(), v.surface.PanSouth, v.viewState.PanSouth),
		layout.NewSpacer(),
	)

	panel := container.NewVBox(
		button(theme.ZoomInIcon(), v.surface.ZoomIn, v.viewState.ZoomIn),
		button(theme.ZoomOutIcon(), v.surface.ZoomOut, v.viewState.ZoomOut),
		panGrid,
		recenter,
	)
	if v.opts.OnReload != nil {
		panel.Add(widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), v.reloadMarkers))
	}

	return panel
}

func (v *mapView) reloadMarkers() {
	if err := v.opts.OnReload(); err != nil {
		mapLogger.Warn("marker catalog reload failed", "error", err)
	}
}

func (v *mapView) handleScroll(event *fyne.ScrollEvent) {
	delta := event.Scrolled
	primary := delta.DY
	if math.Abs(float64(delta.DX)) > math.Abs(float64(primary)) {
		primary = delta.DX
	}
	if primary == 0 {
		return
	}
	v.scrollAccumulator += primary

	changed := false
	for v.scrollAccumulator >= mapScrollZoomStep {
		v.step(v.surface.ZoomIn, v.viewState.ZoomIn)
		v.panTowardsCursor(event.Position)
		v.scrollAccumulator -= mapScrollZoomStep
		changed = true
	}
	for v.scrollAccumulator <= -mapScrollZoomStep {
		v.step(v.surface.ZoomOut, v.viewState.ZoomOut)
		v.scrollAccumulator += mapScrollZoomStep
		changed = true
	}
	if changed {
		v.viewportChanged("scroll")
	}
}

// panTowardsCursor keeps the area under the cursor roughly in place while
// zooming in off-center.
func (v *mapView) panTowardsCursor(cursor fyne.Position) {
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	halfW, halfH := size.Width/2, size.Height/2
	xSteps := zoomFocusPanSteps(max(-1, min(1, (cursor.X-halfW)/halfW)))
	ySteps := zoomFocusPanSteps(max(-1, min(1, (cursor.Y-halfH)/halfH)))

	for ; xSteps > 0; xSteps-- {
		v.step(v.surface.PanEast, v.viewState.PanEast)
	}
	for ; xSteps < 0; xSteps++ {
		v.step(v.surface.PanWest, v.viewState.PanWest)
	}
	for ; ySteps > 0; ySteps-- {
		v.step(v.surface.PanSouth, v.viewState.PanSouth)
	}
	for ; ySteps < 0; ySteps++ {
		v.step(v.surface.PanNorth, v.viewState.PanNorth)
	}
}

func zoomFocusPanSteps(norm float32) int {
	abs := float32(math.Abs(float64(norm)))
	if abs < mapZoomFocusDeadZoneRatio {
		return 0
	}
	steps := 1
	if abs >= mapZoomFocusBoostRatio {
		steps = 2
	}
	if norm < 0 {
		return -steps
	}

	return steps
}

func (v *mapView) handleDrag(delta fyne.Delta) {
	if delta.DX == 0 && delta.DY == 0 {
		return
	}
	v.dragAccumulatorX += delta.DX
	v.dragAccumulatorY += delta.DY

	changed := false
	// Dragging the map right moves the viewport west, dragging down moves it north.
	for v.dragAccumulatorX >= mapDragPanThreshold {
		v.step(v.surface.PanWest, v.viewState.PanWest)
		v.dragAccumulatorX -= mapDragPanThreshold
		changed = true
	}
	for v.dragAccumulatorX <= -mapDragPanThreshold {
		v.step(v.surface.PanEast, v.viewState.PanEast)
		v.dragAccumulatorX += mapDragPanThreshold
		changed = true
	}
	for v.dragAccumulatorY >= mapDragPanThreshold {
		v.step(v.surface.PanNorth, v.viewState.PanNorth)
		v.dragAccumulatorY -= mapDragPanThreshold
		changed = true
	}
	for v.dragAccumulatorY <= -mapDragPanThreshold {
		v.step(v.surface.PanSouth, v.viewState.PanSouth)
		v.dragAccumulatorY += mapDragPanThreshold
		changed = true
	}
	if changed {
		v.viewportChanged("drag")
	}
}

func (v *mapView) scheduleViewportPersist() {
	if v.opts.OnViewportSaved == nil {
		return
	}

	state := v.viewState
	seq := v.persistSeq.Add(1)
	go func() {
		time.Sleep(mapViewportPersistDebounce)
		if v.persistSeq.Load() != seq {
			mapLogger.Debug("skipping stale map viewport persistence", "seq", seq)

			return
		}
		mapLogger.Info("persisting map viewport", "zoom", state.Zoom, "x", state.X, "y", state.Y)
		v.opts.OnViewportSaved(state.Zoom, state.X, state.Y)
	}()
}

func (v *mapView) CreateRenderer() fyne.WidgetRenderer {
	return &mapViewRenderer{
		view: v,
		objects: []fyne.CanvasObject{
			v.surface,
			v.interaction,
			v.markerLayer,
			v.emptyLayer,
			v.controls,
			v.tooltipLayer.container,
		},
	}
}

type mapViewRenderer struct {
	view    *mapView
	objects []fyne.CanvasObject
}

func (r *mapViewRenderer) Layout(size fyne.Size) {
	v := r.view
	for _, obj := range []fyne.CanvasObject{v.surface, v.interaction, v.markerLayer, v.emptyLayer, v.tooltipLayer.container} {
		obj.Move(fyne.NewPos(0, 0))
		obj.Resize(size)
	}

	panelSize := v.controls.MinSize()
	padding := theme.Padding()
	v.controls.Resize(panelSize)
	v.controls.Move(fyne.NewPos(max(0, size.Width-panelSize.Width-padding), padding))

	if v.lastCanvasSize != size {
		v.lastCanvasSize = size
		v.renderMarkers()
	}
}

func (r *mapViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(180, 120)
}

func (r *mapViewRenderer) Refresh() {
	for _, obj := range r.objects {
		obj.Refresh()
	}
	r.Layout(r.view.Size())
}

func (r *mapViewRenderer) Destroy() {}

func (r *mapViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// mapInteractionLayer sits over the tile map and turns drags and scrolls into
// viewport steps.
type mapInteractionLayer struct {
	widget.BaseWidget

	onScroll func(*fyne.ScrollEvent)
	onDrag   func(fyne.Delta)
	bg       *canvas.Rectangle
}

var (
	_ fyne.Scrollable = (*mapInteractionLayer)(nil)
	_ fyne.Draggable  = (*mapInteractionLayer)(nil)
)

func newMapInteractionLayer(onScroll func(*fyne.ScrollEvent), onDrag func(fyne.Delta)) *mapInteractionLayer {
	layer := &mapInteractionLayer{
		onScroll: onScroll,
		onDrag:   onDrag,
		bg:       canvas.NewRectangle(color.Transparent),
	}
	layer.ExtendBaseWidget(layer)

	return layer
}

func (l *mapInteractionLayer) Scrolled(event *fyne.ScrollEvent) {
	if l.onScroll != nil && event != nil {
		l.onScroll(event)
	}
}

func (l *mapInteractionLayer) Dragged(event *fyne.DragEvent) {
	if l.onDrag != nil && event != nil {
		l.onDrag(event.Dragged)
	}
}

func (l *mapInteractionLayer) DragEnd() {}

func (l *mapInteractionLayer) MinSize() fyne.Size {
	return fyne.NewSize(1, 1)
}

func (l *mapInteractionLayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(l.bg)
}
