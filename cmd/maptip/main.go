package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skobkin/maptip/internal/app"
	"github.com/skobkin/maptip/internal/ui"
)

type launchOptions struct {
	ConfigFile    string
	MarkersFile   string
	LogLevel      string
	FocusMarkerID string
	Offline       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(func(cmd *cobra.Command, opts launchOptions) error {
		return runViewer(cmd.Context(), stop, opts)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(launch func(*cobra.Command, launchOptions) error) *cobra.Command {
	var opts launchOptions

	cmd := &cobra.Command{
		Use:   app.Name,
		Short: "Map viewer with hover tooltips for markers",
		Long: `maptip shows the markers of a YAML catalog on an OpenStreetMap base map.
Hovering a marker shows its tooltip next to the cursor.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launch(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "Path to the config file")
	flags.StringVarP(&opts.MarkersFile, "markers", "m", "", "Path to the marker catalog")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&opts.FocusMarkerID, "focus", "", "Center the map on this marker ID")
	flags.BoolVar(&opts.Offline, "offline", false, "Serve map tiles from the cache only")

	cmd.AddCommand(validateCmd(), versionCmd())

	return cmd
}

func runViewer(ctx context.Context, stop func(), opts launchOptions) error {
	rt, err := app.Initialize(ctx, app.Overrides{
		ConfigFile:  opts.ConfigFile,
		MarkersFile: opts.MarkersFile,
		LogLevel:    opts.LogLevel,
		Offline:     opts.Offline,
	})
	if err != nil {
		return fmt.Errorf("initialize app runtime: %w", err)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			_ = rt.Close()
		})
	}
	defer closeRuntime()

	err = ui.Run(rt.Ctx, ui.Dependencies{
		Config:            rt.Config,
		MapTilesDir:       rt.Paths.MapTilesDir,
		Store:             rt.Markers,
		FocusMarkerID:     opts.FocusMarkerID,
		OnViewportChanged: rt.RememberMapViewport,
		OnReload:          rt.ReloadMarkers,
		OnQuit: func() {
			stop()
			closeRuntime()
		},
	})
	if err != nil {
		slog.Error("run ui", "error", err)

		return err
	}

	return nil
}
