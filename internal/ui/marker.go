package ui

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/maptip/internal/tooltip"
)

const (
	markerBaseSize         = float32(20)
	markerHoverSize        = float32(23)
	markerBaseTranslucent  = 0.08
	markerHoverTranslucent = 0.0
)

var errMarkerDetached = errors.New("marker is not on a map")

var (
	_ desktop.Hoverable   = (*markerIcon)(nil)
	_ tooltip.EventTarget = (*markerIcon)(nil)
)

// markerIcon is the visible marker. It turns desktop hover callbacks into
// pointer events for whatever listeners are bound to it.
type markerIcon struct {
	widget.BaseWidget
	tooltip.Listeners

	image   *canvas.Image
	hovered bool
	lastPos fyne.Position
}

func newMarkerIcon(res fyne.Resource) *markerIcon {
	image := canvas.NewImageFromResource(res)
	image.FillMode = canvas.ImageFillContain
	image.Translucency = markerBaseTranslucent

	icon := &markerIcon{image: image}
	icon.ExtendBaseWidget(icon)

	return icon
}

func (m *markerIcon) MinSize() fyne.Size {
	return fyne.NewSize(markerBaseSize, markerBaseSize)
}

func (m *markerIcon) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.image)
}

func (m *markerIcon) MouseIn(ev *desktop.MouseEvent) {
	m.setHovered(true)
	m.dispatch(tooltip.PointerEnter, ev)
}

func (m *markerIcon) MouseMoved(ev *desktop.MouseEvent) {
	m.dispatch(tooltip.PointerMove, ev)
}

func (m *markerIcon) MouseOut() {
	m.setHovered(false)
	m.dispatch(tooltip.PointerLeave, nil)
}

func (m *markerIcon) dispatch(kind tooltip.EventKind, ev *desktop.MouseEvent) {
	if ev != nil {
		m.lastPos = ev.AbsolutePosition
	}
	m.Dispatch(tooltip.PointerEvent{
		Kind:     kind,
		Position: tooltip.Pt(float64(m.lastPos.X), float64(m.lastPos.Y)),
	})
}

// placeAt moves the icon so that its bottom center sits on tip.
func (m *markerIcon) placeAt(tip fyne.Position) {
	size := m.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = m.MinSize()
		m.Resize(size)
	}
	m.Move(fyne.NewPos(tip.X-size.Width/2, tip.Y-size.Height))
}

func (m *markerIcon) setHovered(hovered bool) {
	if m.hovered == hovered {
		return
	}
	m.hovered = hovered

	oldSize := m.Size()
	if oldSize.Width <= 0 || oldSize.Height <= 0 {
		oldSize = m.MinSize()
	}
	tip := m.Position().Add(fyne.NewPos(oldSize.Width/2, oldSize.Height))

	side := markerBaseSize
	m.image.Translucency = markerBaseTranslucent
	if hovered {
		side = markerHoverSize
		m.image.Translucency = markerHoverTranslucent
	}
	m.Resize(fyne.NewSize(side, side))
	m.placeAt(tip)
	m.image.Refresh()
}

// mapMarker composes an icon with an optional tooltip. The tooltip targets
// the marker itself, so swapping the icon only needs a retarget.
type mapMarker struct {
	icon    *markerIcon
	tip     *tooltip.Tooltip
	view    *mapView
	content tooltip.Content
	opts    tooltip.Options
}

var _ tooltip.IconHolder = (*mapMarker)(nil)

func newMapMarker(res fyne.Resource, content tooltip.Content, opts tooltip.Options) *mapMarker {
	return &mapMarker{
		icon:    newMarkerIcon(res),
		content: content,
		opts:    opts,
	}
}

func (m *mapMarker) Icon() tooltip.EventTarget {
	if m.icon == nil {
		return nil
	}

	return m.icon
}

func (m *mapMarker) Tooltip() *tooltip.Tooltip {
	return m.tip
}

// AddTo puts the icon on view and binds a tooltip to it.
func (m *mapMarker) AddTo(view *mapView) error {
	if m.view != nil {
		m.Remove()
	}

	opts := m.opts
	opts.Viewport = view.viewport
	opts.Target = m
	opts.Content = m.content
	tip, err := tooltip.New(opts)
	if err != nil {
		return err
	}

	m.view = view
	m.tip = tip
	view.markerLayer.Add(m.icon)

	return nil
}

// SetIcon swaps the icon widget, keeping its position, and moves the tooltip
// listeners over to it. A hover on the old icon ends with the swap, so its
// tooltip goes away as if the pointer had left.
func (m *mapMarker) SetIcon(res fyne.Resource) error {
	next := newMarkerIcon(res)
	if m.view == nil {
		m.icon = next

		return nil
	}

	prev := m.icon
	if prev.hovered && m.tip != nil {
		if err := m.tip.Hide(); err != nil {
			return err
		}
	}
	next.Resize(next.MinSize())
	next.Move(prev.Position())
	if !prev.Visible() {
		next.Hide()
	}
	m.view.markerLayer.Remove(prev)
	m.view.markerLayer.Add(next)
	m.icon = next

	if m.tip == nil {
		return nil
	}

	return m.tip.SetTarget(m)
}

func (m *mapMarker) SetContent(content tooltip.Content) error {
	m.content = content
	if m.tip == nil {
		return errMarkerDetached
	}

	return m.tip.SetContent(content)
}

// Remove drops the tooltip and the icon from the map.
func (m *mapMarker) Remove() {
	if m.tip != nil {
		_ = m.tip.Remove()
		m.tip = nil
	}
	if m.view != nil {
		m.view.markerLayer.Remove(m.icon)
		m.view = nil
	}
}
