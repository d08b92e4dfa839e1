package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	xwidget "fyne.io/x/fyne/widget"

	appmeta "github.com/skobkin/maptip/internal/app"
	"github.com/skobkin/maptip/internal/resources"
	"github.com/skobkin/maptip/internal/tooltip"
)

var appLogger = slog.With("component", "ui.app")

// Run opens the map window and blocks until the UI exits or ctx is done.
func Run(ctx context.Context, dep Dependencies) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fyApp := fyneapp.NewWithID(appmeta.AppID)
	fyApp.SetIcon(resources.AppIconResource())

	window := fyApp.NewWindow(appmeta.Name)
	window.Resize(fyne.NewSize(1000, 700))

	view := newMapTab(runCtx, dep, fyApp.Settings().ThemeVariant())
	window.SetContent(view)

	themes := newThemeRuntime(fyApp, view.applyThemeVariant)
	themes.BindSettings()

	rt := newUIRuntime(fyApp, window, dep.OnQuit)
	go func() {
		<-runCtx.Done()
		if ctx.Err() != nil {
			appLogger.Info("context cancelled: closing UI")
			fyne.Do(rt.Quit)
		}
	}()

	rt.Run()

	return nil
}

func newMapTab(ctx context.Context, dep Dependencies, variant fyne.ThemeVariant) *mapView {
	client := newTileHTTPClient(dep.MapTilesDir, dep.Config.Map.TileCacheMiB, dep.Config.Map.OfflineTiles)
	baseMap := xwidget.NewMapWithOptions(
		xwidget.WithOsmTiles(),
		xwidget.WithZoomButtons(false),
		xwidget.WithScrollButtons(false),
		xwidget.WithHTTPClient(client),
	)

	view := newMapView(baseMap, mapViewOptions{
		TooltipDefaults: dep.Config.Tooltip,
		Scheduler:       tooltip.NewTimerScheduler(fyne.Do),
		FocusMarkerID:   dep.FocusMarkerID,
		Variant:         variant,
		OnViewportSaved: dep.OnViewportChanged,
		OnReload:        dep.OnReload,
	})
	mapLogger.Info(
		"initializing map",
		"tile_cache_dir", dep.MapTilesDir,
		"offline_tiles", dep.Config.Map.OfflineTiles,
		"initial_viewport_set", dep.Config.Map.Viewport.Set,
		"initial_theme", variant,
	)
	view.applyViewport(dep.Config.Map.Viewport)
	if dep.Store != nil {
		view.watch(ctx, dep.Store)
	}

	return view
}
