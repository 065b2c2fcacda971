// Command rradiod wires the Controller and its Ports into a running
// process: load config, build the resolver/driver/controller, start every
// configured Port, and shut everything down gracefully on signal. Shaped
// directly after the teacher's main.go (structured slog setup, signal.Notify
// + context cancellation, graceful-shutdown sleep), generalized from "start
// one HTTP radio server" to "start a Controller plus N heterogeneous Ports."
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/config"
	"github.com/arung-agamani/rradio/internal/controller"
	"github.com/arung-agamani/rradio/internal/driver"
	"github.com/arung-agamani/rradio/internal/driver/execengine"
	"github.com/arung-agamani/rradio/internal/driver/localengine"
	"github.com/arung-agamani/rradio/internal/netprobe"
	"github.com/arung-agamani/rradio/internal/port/binaryport"
	"github.com/arung-agamani/rradio/internal/port/httpport"
	"github.com/arung-agamani/rradio/internal/state"
	"github.com/arung-agamani/rradio/internal/station"
)

// portDrainGrace is spec.md §5's "awaits Port drain with a bounded grace
// period (5 seconds); Ports that do not drain are aborted."
const portDrainGrace = 5 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting rradiod",
		"stations_directory", cfg.StationsDirectory,
		"initial_volume", cfg.InitialVolume,
	)

	bus := command.NewBus()
	bcast := state.NewBroadcaster()
	resolver := station.NewResolver(cfg.StationsDirectory, uint64(time.Now().UnixNano()))

	drv := driver.New(buildEngine(cfg))

	ctrl := controller.New(bus, bcast, resolver, drv, controller.Options{
		InitialVolume:                  cfg.InitialVolume,
		VolumeOffset:                   cfg.VolumeOffset,
		PauseBeforePlayingIncrement:    cfg.PauseBeforePlayingIncrement,
		MaxPauseBeforePlaying:          cfg.MaxPauseBeforePlaying,
		SmartGotoPreviousTrackDuration: cfg.SmartGotoPreviousTrackDuration,
		PlayErrorSoundOnGstreamerError: cfg.PlayErrorSoundOnGstreamerError,
		Notifications: controller.Notifications{
			Ready:          cfg.Notifications.Ready,
			PlaylistPrefix: cfg.Notifications.PlaylistPrefix,
			PlaylistSuffix: cfg.Notifications.PlaylistSuffix,
			Error:          cfg.Notifications.Error,
		},
	})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutdown signal received")
		cancel()
	}()

	portsDone := startPorts(ctx, cfg, bus, bcast)
	if cfg.Ping.Enabled {
		go netprobe.New(cfg.Ping.Target, cfg.Ping.Interval).Start(ctx)
	}

	ctrl.Run(ctx)

	awaitPortDrain(portsDone)
	slog.Info("rradiod stopped")
}

// buildEngine picks execengine when an [engine] command is configured,
// otherwise falls back to localengine so rradiod can run against local
// files without a real external media engine installed.
func buildEngine(cfg *config.Config) driver.Engine {
	if cfg.Engine.Command != "" {
		return execengine.New(cfg.Engine.Command, cfg.Engine.Args)
	}
	slog.Warn("no [engine] command configured, using the dependency-free local engine")
	return localengine.New(cfg.BufferingDuration)
}

// startPorts launches every configured Port and returns a channel closed
// once all of them have returned (drained or aborted).
func startPorts(ctx context.Context, cfg *config.Config, bus *command.Bus, bcast *state.Broadcaster) <-chan struct{} {
	var wg sync.WaitGroup

	if cfg.Web.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := httpport.New(httpport.Options{Addr: cfg.Web.ListenAddr, StaticDir: cfg.Web.StaticDir}, bus, bcast)
			if err := h.Run(ctx); err != nil {
				slog.Error("httpport exited with error", "error", err)
			}
		}()
	}

	if ln, err := net.Listen("tcp", ":9090"); err != nil {
		slog.Warn("binaryport: failed to bind, binary control port disabled", "error", err)
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			binaryport.Serve(ctx, ln, bus, bcast)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// awaitPortDrain waits for portsDone to close, up to portDrainGrace; Ports
// that haven't drained by then are left to be torn down by process exit.
func awaitPortDrain(portsDone <-chan struct{}) {
	select {
	case <-portsDone:
	case <-time.After(portDrainGrace):
		slog.Warn("port drain grace period elapsed, aborting remaining ports")
	}
}
