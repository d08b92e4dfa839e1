// Package tooltip implements a cursor-following annotation overlay bound to
// a marker on a map surface.
//
// A Tooltip owns one overlay Element inserted into the viewport's tooltip
// layer. It listens to pointer enter, leave and (optionally) move events of a
// single target, positions the overlay next to the cursor clamped to the
// viewport, and shows or hides it after the configured delays.
//
// A Tooltip is not safe for concurrent use. Every method, and every timer
// callback delivered by the Scheduler, must run on the UI goroutine. After
// Remove all methods return ErrRemoved without touching the overlay.
package tooltip

import (
	"fmt"
	"log/slog"
	"time"
)

// State is the visibility state of a tooltip.
type State uint8

const (
	Hidden State = iota
	PendingShow
	Shown
	PendingHide
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case PendingShow:
		return "pending_show"
	case Shown:
		return "shown"
	case PendingHide:
		return "pending_hide"
	default:
		return "unknown"
	}
}

type Tooltip struct {
	opts     Options
	viewport Viewport
	el       Element
	target   EventTarget
	size     sizeCache
	state    State
	logger   *slog.Logger

	pending Timer
	// gen invalidates callbacks of superseded timers that could not be
	// stopped in time.
	gen uint64

	removed bool
}

var _ Listener = (*Tooltip)(nil)

// New creates a tooltip and attaches its overlay to the viewport's tooltip
// layer. It fails with ErrNoViewport when no viewport is configured.
func New(opts Options) (*Tooltip, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("create tooltip: %w", err)
	}
	opts = opts.withDefaults()

	layer := opts.Viewport.TooltipLayer()
	if layer == nil {
		return nil, fmt.Errorf("create tooltip: %w: viewport has no tooltip layer", ErrNoViewport)
	}

	classes := []string{ClassTooltip}
	if opts.FadeAnimation {
		classes = append(classes, ClassFade)
	}

	el := layer.CreateElement(classes...)
	el.SetStyle(StylePosition, "absolute")
	el.SetStyle(StyleWidth, opts.Width.String())
	el.SetStyle(StyleMinWidth, opts.MinWidth.String())
	el.SetStyle(StyleMaxWidth, opts.MaxWidth.String())
	el.SetStyle(StylePadding, opts.Padding.String())
	el.SetOpacity(0)

	t := &Tooltip{
		opts:     opts,
		viewport: opts.Viewport,
		el:       el,
		logger:   opts.Logger,
	}
	if opts.Content != nil {
		t.setContent(opts.Content)
	}

	layer.AppendChild(el)

	if opts.Target != nil {
		if err := t.SetTarget(opts.Target); err != nil {
			el.Remove()

			return nil, fmt.Errorf("create tooltip: %w", err)
		}
	}

	return t, nil
}

// SetTarget binds the tooltip to target, unbinding the previous target first.
// Objects implementing IconHolder are resolved to their icon. Binding the
// already bound target is a no-op and a nil target only unbinds.
func (t *Tooltip) SetTarget(target any) error {
	if t.removed {
		return ErrRemoved
	}

	resolved, err := resolveTarget(target)
	if err != nil {
		return err
	}
	if resolved == t.target {
		return nil
	}

	if t.target != nil {
		t.unbind(t.target)
	}
	if resolved != nil {
		t.bind(resolved)
	}
	t.target = resolved
	t.logger.Debug("tooltip target changed", "bound", resolved != nil, "track_mouse", t.opts.TrackMouse)

	return nil
}

func resolveTarget(target any) (EventTarget, error) {
	if target == nil {
		return nil, nil
	}
	if holder, ok := target.(IconHolder); ok {
		if icon := holder.Icon(); icon != nil {
			return icon, nil
		}
	}
	if et, ok := target.(EventTarget); ok {
		return et, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidTarget, target)
}

func (t *Tooltip) bind(target EventTarget) {
	target.AddListener(PointerEnter, t)
	target.AddListener(PointerLeave, t)
	if t.opts.TrackMouse {
		target.AddListener(PointerMove, t)
	}
}

func (t *Tooltip) unbind(target EventTarget) {
	target.RemoveListener(PointerEnter, t)
	target.RemoveListener(PointerLeave, t)
	if t.opts.TrackMouse {
		target.RemoveListener(PointerMove, t)
	}
}

// SetContent replaces the overlay content and invalidates the cached size.
// A nil content clears the overlay.
func (t *Tooltip) SetContent(c Content) error {
	if t.removed {
		return ErrRemoved
	}
	t.setContent(c)

	return nil
}

func (t *Tooltip) setContent(c Content) {
	if c == nil {
		c = Markup("")
	}
	c.apply(t.el)
	t.size.invalidate()
}

// SetPosition places the overlay at point plus the mouse offset, flipping to
// right/bottom anchoring on each axis where it would overflow the viewport.
func (t *Tooltip) SetPosition(point Point) error {
	if t.removed {
		return ErrRemoved
	}

	anchor := point.Add(t.opts.MouseOffset)
	overlay := t.size.measure(t.el)
	placement := Place(anchor, overlay, t.viewport.Size())

	t.el.SetStyle(StyleLeft, placement.Left.String())
	t.el.SetStyle(StyleRight, placement.Right.String())
	t.el.SetStyle(StyleTop, placement.Top.String())
	t.el.SetStyle(StyleBottom, placement.Bottom.String())

	return nil
}

// Show positions the tooltip at point and makes it visible after the show
// delay. A non-nil content replaces the current content first. A pending hide
// is cancelled and the tooltip stays visible.
func (t *Tooltip) Show(point Point, content Content) error {
	if t.removed {
		return ErrRemoved
	}
	if content != nil {
		t.setContent(content)
	}
	if err := t.SetPosition(point); err != nil {
		return err
	}

	switch t.state {
	case Shown, PendingShow:
		return nil
	case PendingHide:
		t.cancelPending()
		t.state = Shown
		t.logger.Debug("tooltip hide cancelled")

		return nil
	}

	if t.opts.ShowDelay <= 0 {
		t.reveal()

		return nil
	}
	t.schedule(PendingShow, t.opts.ShowDelay, t.reveal)

	return nil
}

// Hide makes a visible tooltip invisible after the hide delay. Hiding while a
// show is still pending cancels the show. Hiding a hidden tooltip is a no-op.
func (t *Tooltip) Hide() error {
	if t.removed {
		return ErrRemoved
	}

	switch t.state {
	case Hidden, PendingHide:
		return nil
	case PendingShow:
		t.cancelPending()
		t.state = Hidden
		t.logger.Debug("tooltip show cancelled")

		return nil
	}

	if t.opts.HideDelay <= 0 {
		t.conceal()

		return nil
	}
	t.schedule(PendingHide, t.opts.HideDelay, t.conceal)

	return nil
}

// Remove detaches the overlay and unbinds the target. Content nodes passed
// via Node stay untouched. Calling Remove twice returns ErrRemoved.
func (t *Tooltip) Remove() error {
	if t.removed {
		return ErrRemoved
	}

	t.cancelPending()
	t.el.Remove()
	t.el = nil
	if t.target != nil {
		t.unbind(t.target)
		t.target = nil
	}
	t.state = Hidden
	t.removed = true
	t.logger.Debug("tooltip removed")

	return nil
}

// HandlePointerEvent implements Listener for the bound target.
func (t *Tooltip) HandlePointerEvent(ev PointerEvent) {
	if t.removed {
		return
	}

	var err error
	switch ev.Kind {
	case PointerEnter:
		err = t.Show(t.viewport.LocalPoint(ev), nil)
	case PointerMove:
		if t.opts.TrackMouse {
			err = t.SetPosition(t.viewport.LocalPoint(ev))
		}
	case PointerLeave:
		err = t.Hide()
	}
	if err != nil {
		t.logger.Warn("handling pointer event failed", "event", ev.Kind, "error", err)
	}
}

// State returns the current visibility state.
func (t *Tooltip) State() State {
	return t.state
}

// Showing reports whether the overlay is currently visible.
func (t *Tooltip) Showing() bool {
	return t.state == Shown || t.state == PendingHide
}

// Target returns the bound event target, or nil.
func (t *Tooltip) Target() EventTarget {
	return t.target
}

// Element returns the overlay element, or nil after Remove.
func (t *Tooltip) Element() Element {
	return t.el
}

func (t *Tooltip) Removed() bool {
	return t.removed
}

func (t *Tooltip) reveal() {
	t.el.SetOpacity(1)
	t.state = Shown
	t.logger.Debug("tooltip shown")
}

func (t *Tooltip) conceal() {
	t.el.SetOpacity(0)
	t.state = Hidden
	t.logger.Debug("tooltip hidden")
}

func (t *Tooltip) schedule(next State, delay time.Duration, fn func()) {
	t.cancelPending()
	gen := t.gen
	t.state = next
	t.pending = t.opts.Scheduler.AfterFunc(delay, func() {
		if t.removed || gen != t.gen {
			return
		}
		t.pending = nil
		fn()
	})
	t.logger.Debug("tooltip transition scheduled", "state", next, "delay", delay)
}

func (t *Tooltip) cancelPending() {
	t.gen++
	if t.pending == nil {
		return
	}
	t.pending.Stop()
	t.pending = nil
}
