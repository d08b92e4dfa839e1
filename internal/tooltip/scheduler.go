package tooltip

import "time"

// Timer is a cancellable one-shot scheduled task.
type Timer interface {
	// Stop prevents the task from running. It reports false when the task
	// already ran or was already stopped.
	Stop() bool
}

// Scheduler runs fn once after d. Implementations must invoke fn on the
// goroutine that owns the tooltip.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc. The timer
// goroutine hands fn to dispatch, which must run it on the UI goroutine (for
// Fyne, pass fyne.Do). A nil dispatch runs fn directly on the timer goroutine,
// which is only correct when the caller serializes tooltip access itself.
func NewTimerScheduler(dispatch func(func())) Scheduler {
	return timerScheduler{dispatch: dispatch}
}

type timerScheduler struct {
	dispatch func(func())
}

func (s timerScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if s.dispatch == nil {
		return time.AfterFunc(d, fn)
	}

	return time.AfterFunc(d, func() {
		s.dispatch(fn)
	})
}
