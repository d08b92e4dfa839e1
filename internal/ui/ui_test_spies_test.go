package ui

import (
	"slices"
	"testing"

	"fyne.io/fyne/v2"
	fynetest "fyne.io/fyne/v2/test"
)

// lifecycle records app and window calls in the order they happen.
type lifecycle struct {
	events []string
}

func (l *lifecycle) record(event string) {
	l.events = append(l.events, event)
}

func (l *lifecycle) expect(t *testing.T, want ...string) {
	t.Helper()
	if !slices.Equal(l.events, want) {
		t.Fatalf("lifecycle = %v, want %v", l.events, want)
	}
}

// recordingApp never enters the driver loop, so Run returns immediately.
type recordingApp struct {
	fyne.App
	log *lifecycle
}

func (a *recordingApp) Run() {
	a.log.record("run")
}

func (a *recordingApp) Quit() {
	a.log.record("quit")
}

type recordingWindow struct {
	fyne.Window
	log       *lifecycle
	intercept func()
}

func (w *recordingWindow) Show() {
	w.log.record("show")
}

func (w *recordingWindow) SetCloseIntercept(fn func()) {
	w.intercept = fn
}

// userClose acts like the window manager close button.
func (w *recordingWindow) userClose(t *testing.T) {
	t.Helper()
	if w.intercept == nil {
		t.Fatalf("close intercept not installed")
	}
	w.intercept()
}

func newRecordedShell(t *testing.T) (*lifecycle, *recordingApp, *recordingWindow) {
	t.Helper()
	base := fynetest.NewApp()
	t.Cleanup(base.Quit)

	log := &lifecycle{}
	return log,
		&recordingApp{App: base, log: log},
		&recordingWindow{Window: base.NewWindow("maptip"), log: log}
}
