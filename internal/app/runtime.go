package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/skobkin/maptip/internal/bus"
	"github.com/skobkin/maptip/internal/config"
	"github.com/skobkin/maptip/internal/domain"
	"github.com/skobkin/maptip/internal/logging"
	"github.com/skobkin/maptip/internal/platform"
)

// Overrides are command line values that take precedence over the config
// file for this run only. They are never written back.
type Overrides struct {
	ConfigFile  string
	MarkersFile string
	LogLevel    string
	Offline     bool
}

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths Paths
	// Config is the effective configuration with overrides applied.
	Config config.AppConfig
	// saved is what goes back to disk.
	saved config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	Markers    *domain.MarkerStore

	lock platform.ConfigLock
}

func Initialize(parent context.Context, overrides Overrides) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	if path := strings.TrimSpace(overrides.ConfigFile); path != "" {
		paths.ConfigFile = path
	}

	return initialize(parent, paths, overrides)
}

func initialize(parent context.Context, paths Paths, overrides Overrides) (*Runtime, error) {
	saved, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg := applyOverrides(saved, overrides)

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
		saved:  saved,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting maptip runtime", "version", BuildVersion(), "build_date", BuildDateYMD())

	lock, err := platform.LockConfig(paths.ConfigFile)
	switch {
	case errors.Is(err, platform.ErrConfigLockUnsupported):
		slog.Warn("running without config lock", "error", err)
	case err != nil:
		_ = rt.Close()

		return nil, err
	}
	rt.lock = lock

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b

	store := domain.NewMarkerStore()
	rt.Markers = store
	markers, err := rt.loadMarkers()
	if err != nil {
		_ = rt.Close()

		return nil, err
	}
	store.Load(markers)
	store.Start(ctx, b)

	return rt, nil
}

func applyOverrides(cfg config.AppConfig, overrides Overrides) config.AppConfig {
	if level := strings.TrimSpace(overrides.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if path := strings.TrimSpace(overrides.MarkersFile); path != "" {
		cfg.MarkersFile = path
	}
	if overrides.Offline {
		cfg.Map.OfflineTiles = true
	}

	return cfg
}

// MarkersPath is the catalog file in use: the configured one or the default
// file next to the config.
func (r *Runtime) MarkersPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if path := strings.TrimSpace(r.Config.MarkersFile); path != "" {
		return path
	}

	return r.Paths.MarkersFile
}

// loadMarkers reads the catalog. A missing default catalog is not an error,
// a missing explicitly configured one is.
func (r *Runtime) loadMarkers() ([]domain.Marker, error) {
	path := r.MarkersPath()
	cat, err := domain.LoadCatalog(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && strings.TrimSpace(r.Config.MarkersFile) == "" {
			slog.Info("marker catalog not found, starting empty", "path", path)

			return nil, nil
		}

		return nil, err
	}
	markers := cat.Resolve()
	slog.Info("loaded marker catalog", "path", path, "marker_count", len(markers))

	return markers, nil
}

// ReloadMarkers re-reads the catalog and replaces every marker on the bus.
// The current markers stay in place when the catalog is invalid.
func (r *Runtime) ReloadMarkers() error {
	path := r.MarkersPath()
	cat, err := domain.LoadCatalog(path)
	if err != nil {
		slog.Warn("reload marker catalog", "path", path, "error", err)

		return err
	}
	domain.PublishCatalog(r.Bus, cat)
	slog.Info("reloaded marker catalog", "path", path, "marker_count", len(cat.Markers))

	return nil
}

// RememberMapViewport persists the viewport chosen by the user.
func (r *Runtime) RememberMapViewport(zoom, x, y int) {
	viewport := config.MapViewportConfig{Set: true, Zoom: zoom, X: x, Y: y}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved.Map.Viewport == viewport {
		return
	}
	saved := r.saved
	saved.Map.Viewport = viewport
	if err := config.Save(r.Paths.ConfigFile, saved); err != nil {
		slog.Warn("save map viewport", "error", err)

		return
	}
	r.saved = saved
	r.Config.Map.Viewport = viewport
}

func (r *Runtime) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.lock != nil {
		if err := r.lock.Release(); err != nil {
			slog.Warn("release config lock", "error", err)
		}
		r.lock = nil
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}
