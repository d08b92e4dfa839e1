package tooltip

// Class names understood by the styling layer.
const (
	ClassTooltip = "tooltip"
	ClassFade    = "tooltip-fade"
)

// Style properties written by the engine.
const (
	StylePosition = "position"
	StyleWidth    = "width"
	StyleMinWidth = "min-width"
	StyleMaxWidth = "max-width"
	StylePadding  = "padding"
	StyleLeft     = "left"
	StyleRight    = "right"
	StyleTop      = "top"
	StyleBottom   = "bottom"
)

// Element is the overlay node the tooltip creates and exclusively controls.
type Element interface {
	SetStyle(prop, value string)
	Style(prop string) string
	SetOpacity(opacity float64)
	// SetMarkup replaces the whole content with rendered markup.
	SetMarkup(markup string)
	// ReplaceChildren drops existing children and shows node instead. The
	// element must not take ownership of node.
	ReplaceChildren(node any)
	// OffsetSize is the natural rendered size of the element.
	OffsetSize() Size
	// Remove detaches the element from its parent.
	Remove()
}

// Layer is the per-viewport container tooltips are inserted into.
type Layer interface {
	CreateElement(classes ...string) Element
	AppendChild(el Element)
}

// Viewport is the host map surface.
type Viewport interface {
	Size() Size
	// LocalPoint converts a pointer event to a viewport-relative point.
	LocalPoint(ev PointerEvent) Point
	TooltipLayer() Layer
}
