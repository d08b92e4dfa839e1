package ui

import "fyne.io/fyne/v2"

// themeRuntime reapplies variant-specific artwork when the system theme changes.
type themeRuntime struct {
	fyApp         fyne.App
	applyMapTheme func(fyne.ThemeVariant)
}

func newThemeRuntime(fyApp fyne.App, applyMapTheme func(fyne.ThemeVariant)) *themeRuntime {
	if applyMapTheme == nil {
		applyMapTheme = func(fyne.ThemeVariant) {}
	}

	return &themeRuntime{fyApp: fyApp, applyMapTheme: applyMapTheme}
}

func (r *themeRuntime) BindSettings() {
	r.fyApp.Settings().AddListener(func(s fyne.Settings) {
		appLogger.Debug("theme settings changed")
		r.Apply(s.ThemeVariant())
	})
}

func (r *themeRuntime) Apply(variant fyne.ThemeVariant) {
	appLogger.Debug("applying theme resources", "theme", variant)
	r.applyMapTheme(variant)
}
