package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/maptip/internal/tooltip"
)

const overlayFadeDuration = 150 * time.Millisecond

var overlayLogger = slog.With("component", "ui.overlay")

var (
	_ tooltip.Layer   = (*overlayLayer)(nil)
	_ tooltip.Element = (*overlayElement)(nil)
)

// overlayLayer is a free-positioning container stacked above the markers.
type overlayLayer struct {
	container *fyne.Container
}

func newOverlayLayer() *overlayLayer {
	return &overlayLayer{container: container.NewWithoutLayout()}
}

func (l *overlayLayer) CreateElement(classes ...string) tooltip.Element {
	return newOverlayElement(l, classes)
}

func (l *overlayLayer) AppendChild(el tooltip.Element) {
	overlay, ok := el.(*overlayElement)
	if !ok {
		overlayLogger.Warn("ignoring foreign element", "type", fmt.Sprintf("%T", el))

		return
	}
	l.container.Add(overlay.root)
}

func (l *overlayLayer) remove(el *overlayElement) {
	l.container.Remove(el.root)
}

func (l *overlayLayer) size() fyne.Size {
	return l.container.Size()
}

// overlayElement renders a tooltip bubble. Styles use the CSS property names
// from the tooltip package; lengths in px or em are honored, anything else
// behaves as auto.
type overlayElement struct {
	layer   *overlayLayer
	classes map[string]struct{}
	styles  map[string]string
	opacity float64
	removed bool

	bg   *canvas.Rectangle
	body *fyne.Container
	root *fyne.Container
	rich *widget.RichText
	fade *fyne.Animation
}

func newOverlayElement(layer *overlayLayer, classes []string) *overlayElement {
	bg := canvas.NewRectangle(color.Transparent)
	bg.CornerRadius = theme.Padding()
	body := container.New(layout.NewCustomPaddedLayout(0, 0, 0, 0))

	e := &overlayElement{
		layer:   layer,
		classes: make(map[string]struct{}, len(classes)),
		styles:  make(map[string]string),
		bg:      bg,
		body:    body,
		root:    container.NewStack(bg, body),
	}
	for _, class := range classes {
		e.classes[class] = struct{}{}
	}
	e.root.Hide()

	return e
}

func (e *overlayElement) hasClass(class string) bool {
	_, ok := e.classes[class]

	return ok
}

func (e *overlayElement) SetStyle(prop, value string) {
	e.styles[prop] = value
	switch prop {
	case tooltip.StylePadding:
		top, right, bottom, left := parsePadding(value)
		e.body.Layout = layout.NewCustomPaddedLayout(top, bottom, left, right)
		e.relayout()
	case tooltip.StyleWidth, tooltip.StyleMinWidth, tooltip.StyleMaxWidth:
		e.relayout()
	case tooltip.StyleLeft, tooltip.StyleRight, tooltip.StyleTop, tooltip.StyleBottom:
		e.reposition()
	}
}

func (e *overlayElement) Style(prop string) string {
	return e.styles[prop]
}

func (e *overlayElement) SetOpacity(value float64) {
	value = max(0, min(1, value))
	previous := e.opacity
	e.opacity = value
	e.stopFade()

	if value == 0 {
		e.root.Hide()

		return
	}

	target := scaleAlpha(overlayBackgroundColor(), value)
	e.root.Show()
	if previous == 0 && e.hasClass(tooltip.ClassFade) {
		e.fade = canvas.NewColorRGBAAnimation(color.Transparent, target, overlayFadeDuration, func(c color.Color) {
			e.bg.FillColor = c
			e.bg.Refresh()
		})
		e.fade.Start()

		return
	}
	e.bg.FillColor = target
	e.bg.Refresh()
}

func (e *overlayElement) stopFade() {
	if e.fade == nil {
		return
	}
	e.fade.Stop()
	e.fade = nil
}

func (e *overlayElement) SetMarkup(markup string) {
	if e.rich == nil {
		e.rich = widget.NewRichTextFromMarkdown(markup)
	} else {
		e.rich.ParseMarkdown(markup)
	}
	e.setContent(e.rich)
}

// ReplaceChildren shows node as the only child. The node stays owned by the
// caller and is never destroyed here.
func (e *overlayElement) ReplaceChildren(node any) {
	switch v := node.(type) {
	case nil:
		e.setContent(nil)
	case fyne.CanvasObject:
		e.setContent(v)
	case string:
		e.setContent(widget.NewLabel(v))
	case fmt.Stringer:
		e.setContent(widget.NewLabel(v.String()))
	default:
		overlayLogger.Warn("unsupported tooltip node", "type", fmt.Sprintf("%T", node))
		e.setContent(nil)
	}
}

func (e *overlayElement) setContent(obj fyne.CanvasObject) {
	if obj == nil {
		e.body.Objects = nil
	} else {
		e.body.Objects = []fyne.CanvasObject{obj}
	}
	e.body.Refresh()
	e.relayout()
}

func (e *overlayElement) OffsetSize() tooltip.Size {
	size := e.root.Size()

	return tooltip.Size{Width: float64(size.Width), Height: float64(size.Height)}
}

func (e *overlayElement) Remove() {
	if e.removed {
		return
	}
	e.removed = true
	e.stopFade()
	e.layer.remove(e)
}

func (e *overlayElement) relayout() {
	if e.rich != nil {
		e.rich.Wrapping = fyne.TextWrapOff
	}
	natural := e.body.MinSize()
	width := natural.Width
	if px, ok := cssPixels(e.styles[tooltip.StyleWidth]); ok {
		width = px
	}
	if px, ok := cssPixels(e.styles[tooltip.StyleMinWidth]); ok && width < px {
		width = px
	}
	if px, ok := cssPixels(e.styles[tooltip.StyleMaxWidth]); ok && width > px {
		width = px
	}

	height := natural.Height
	if width < natural.Width && e.rich != nil && e.hasOnly(e.rich) {
		e.rich.Wrapping = fyne.TextWrapWord
		e.body.Resize(fyne.NewSize(width, natural.Height))
		height = e.body.MinSize().Height
	}

	e.root.Resize(fyne.NewSize(width, height))
	e.reposition()
}

func (e *overlayElement) hasOnly(obj fyne.CanvasObject) bool {
	return len(e.body.Objects) == 1 && e.body.Objects[0] == obj
}

func (e *overlayElement) reposition() {
	layerSize := e.layer.size()
	size := e.root.Size()

	var x, y float32
	if px, ok := cssPixels(e.styles[tooltip.StyleLeft]); ok {
		x = px
	} else if px, ok := cssPixels(e.styles[tooltip.StyleRight]); ok {
		x = layerSize.Width - px - size.Width
	}
	if px, ok := cssPixels(e.styles[tooltip.StyleTop]); ok {
		y = px
	} else if px, ok := cssPixels(e.styles[tooltip.StyleBottom]); ok {
		y = layerSize.Height - px - size.Height
	}
	e.root.Move(fyne.NewPos(x, y))
}

func overlayBackgroundColor() color.Color {
	if app := fyne.CurrentApp(); app != nil {
		settings := app.Settings()

		return settings.Theme().Color(theme.ColorNameOverlayBackground, settings.ThemeVariant())
	}

	return theme.DefaultTheme().Color(theme.ColorNameOverlayBackground, theme.VariantDark)
}

func scaleAlpha(c color.Color, factor float64) color.Color {
	nrgba, _ := color.NRGBAModel.Convert(c).(color.NRGBA)
	nrgba.A = uint8(float64(nrgba.A) * factor)

	return nrgba
}

// cssPixels converts a CSS length to Fyne units. Supports px, em and bare
// numbers.
func cssPixels(value string) (float32, bool) {
	value = strings.TrimSpace(value)
	unit := float32(1)
	switch {
	case value == "", value == "auto":
		return 0, false
	case strings.HasSuffix(value, "px"):
		value = strings.TrimSuffix(value, "px")
	case strings.HasSuffix(value, "em"):
		value = strings.TrimSuffix(value, "em")
		unit = theme.TextSize()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return 0, false
	}

	return float32(f) * unit, true
}

// parsePadding reads the 1 to 4 value CSS padding shorthand.
func parsePadding(value string) (top, right, bottom, left float32) {
	fields := strings.Fields(value)
	vals := make([]float32, 0, len(fields))
	for _, field := range fields {
		px, ok := cssPixels(field)
		if !ok {
			px = 0
		}
		vals = append(vals, px)
	}

	switch len(vals) {
	case 1:
		return vals[0], vals[0], vals[0], vals[0]
	case 2:
		return vals[0], vals[1], vals[0], vals[1]
	case 3:
		return vals[0], vals[1], vals[2], vals[1]
	case 4:
		return vals[0], vals[1], vals[2], vals[3]
	default:
		return 0, 0, 0, 0
	}
}
