package tooltip

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultShowDelay = 500 * time.Millisecond
	DefaultHideDelay = 500 * time.Millisecond
)

var (
	DefaultPadding     = Literal("2px 4px")
	DefaultMouseOffset = Point{X: 0, Y: 24}
)

// Content is tooltip content: either Markup or a Node.
type Content interface {
	apply(el Element)
}

// Markup is literal markup that replaces the overlay content.
type Markup string

func (m Markup) apply(el Element) {
	el.SetMarkup(string(m))
}

// Node wraps an externally owned content node. The tooltip only displays it;
// removing the tooltip never destroys the node.
type Node struct {
	Value any
}

func (n Node) apply(el Element) {
	el.ReplaceChildren(n.Value)
}

// Options configures a Tooltip. Unset Width, MinWidth, MaxWidth and Padding
// fall back to the defaults. Delays and MouseOffset are used as given, so
// start from DefaultOptions to get the documented defaults for those.
type Options struct {
	Width    Length
	MinWidth Length
	MaxWidth Length
	Padding  Length

	ShowDelay time.Duration
	HideDelay time.Duration

	MouseOffset   Point
	FadeAnimation bool
	TrackMouse    bool

	Content Content
	// Target is an EventTarget or an IconHolder.
	Target any
	// Viewport is required.
	Viewport Viewport

	// Scheduler is required. Its callbacks must arrive on the goroutine that
	// drives the tooltip.
	Scheduler Scheduler
	Logger    *slog.Logger
}

// DefaultOptions returns options populated with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Width:         Auto,
		MinWidth:      Auto,
		MaxWidth:      Auto,
		Padding:       DefaultPadding,
		ShowDelay:     DefaultShowDelay,
		HideDelay:     DefaultHideDelay,
		MouseOffset:   DefaultMouseOffset,
		FadeAnimation: true,
		TrackMouse:    false,
	}
}

func (o Options) withDefaults() Options {
	if o.Width.IsZero() {
		o.Width = Auto
	}
	if o.MinWidth.IsZero() {
		o.MinWidth = Auto
	}
	if o.MaxWidth.IsZero() {
		o.MaxWidth = Auto
	}
	if o.Padding.IsZero() {
		o.Padding = DefaultPadding
	}
	if o.Logger == nil {
		o.Logger = slog.With("component", "tooltip")
	}

	return o
}

// Validate checks option values. A missing viewport yields ErrNoViewport and
// a missing scheduler ErrNoScheduler.
func (o Options) Validate() error {
	if o.Viewport == nil {
		return ErrNoViewport
	}
	if o.Scheduler == nil {
		return ErrNoScheduler
	}
	if o.ShowDelay < 0 {
		return fmt.Errorf("%w: show delay must not be negative: %s", ErrInvalidOptions, o.ShowDelay)
	}
	if o.HideDelay < 0 {
		return fmt.Errorf("%w: hide delay must not be negative: %s", ErrInvalidOptions, o.HideDelay)
	}

	return nil
}
