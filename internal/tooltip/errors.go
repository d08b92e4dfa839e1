package tooltip

import "errors"

var (
	// ErrNoViewport is returned by New when Options.Viewport is nil.
	ErrNoViewport = errors.New("no viewport configured for tooltip")
	// ErrNoScheduler is returned by New when Options.Scheduler is nil.
	ErrNoScheduler = errors.New("no scheduler configured for tooltip")
	// ErrRemoved is returned by every operation called after Remove.
	ErrRemoved = errors.New("tooltip is removed")
	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("invalid tooltip options")
	// ErrInvalidTarget is returned for targets that neither are an
	// EventTarget nor expose one.
	ErrInvalidTarget = errors.New("target does not support pointer events")
)
