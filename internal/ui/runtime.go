package ui

import (
	"sync"

	"fyne.io/fyne/v2"
)

type uiRuntime struct {
	fyApp  fyne.App
	window fyne.Window
	onQuit func()

	shutdownOnce sync.Once
}

func newUIRuntime(fyApp fyne.App, window fyne.Window, onQuit func()) *uiRuntime {
	r := &uiRuntime{fyApp: fyApp, window: window, onQuit: onQuit}
	if window != nil {
		window.SetCloseIntercept(r.Quit)
	}

	return r
}

func (r *uiRuntime) Quit() {
	r.shutdownOnce.Do(func() {
		appLogger.Info("quitting UI runtime")
		r.stop()
		if r.fyApp != nil {
			r.fyApp.Quit()
		}
	})
}

func (r *uiRuntime) Run() {
	if r.window != nil {
		r.window.Show()
	}
	if r.fyApp != nil {
		r.fyApp.Run()
	}
	appLogger.Info("UI runtime stopped")
	r.shutdownOnce.Do(r.stop)
}

func (r *uiRuntime) stop() {
	if r.onQuit != nil {
		r.onQuit()
	}
}
