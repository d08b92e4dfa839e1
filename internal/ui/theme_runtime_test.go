package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
)

func TestThemeRuntimeApplyInvokesMapTheme(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	var got []fyne.ThemeVariant
	runtime := newThemeRuntime(app, func(variant fyne.ThemeVariant) {
		got = append(got, variant)
	})
	runtime.BindSettings()
	runtime.Apply(theme.VariantLight)

	if len(got) == 0 || got[len(got)-1] != theme.VariantLight {
		t.Fatalf("expected map theme callback with light variant, got %v", got)
	}
}

func TestThemeRuntimeToleratesMissingTarget(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	newThemeRuntime(app, nil).Apply(theme.VariantDark)
}
