package ui

import (
	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/domain"
)

// Dependencies is everything the desktop UI needs from the runtime.
type Dependencies struct {
	Config        config.AppConfig
	MapTilesDir   string
	Store         *domain.MarkerStore
	FocusMarkerID string

	OnViewportChanged func(zoom, x, y int)
	OnReload          func() error
	OnQuit            func()
}
