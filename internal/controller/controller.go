// Package controller implements the central state machine described in
// spec.md §4.5: it owns PlayerState, consumes Commands from the bus, drives
// the Station resolver and Playback driver, advances tracks, reacts to
// pipeline events, and publishes state. Everything runs on one goroutine's
// select loop — the same single-select-with-ticker shape as the teacher's
// Scheduler.Start in internal/playlist/scheduler.go and Broadcaster.Start in
// internal/radio/stream.go, generalized from "poll a clock, fan out bytes"
// to "multiplex commands, driver events, and resolver completions."
package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/driver"
	"github.com/arung-agamani/rradio/internal/state"
	"github.com/arung-agamani/rradio/internal/station"
)

// phase is the Controller's own internal state, distinct from state.Phase
// (the pipeline phase published to clients): it additionally tracks
// WaitingForPlaylist, BackingOffReconnect and notification playback, none
// of which are visible pipeline phases in their own right.
type phase int

const (
	phaseIdle phase = iota
	phaseWaitingForPlaylist
	phasePlayingTrack
	phasePausedTrack
	phaseBackingOffReconnect
	phasePlayingNotification
	phaseErrorState
)

// notificationKind identifies which configured notification URI to play.
type notificationKind int

const (
	notifyReady notificationKind = iota
	notifyPlaylistPrefix
	notifyPlaylistSuffix
	notifyError
)

// Notifications supplies the URIs configured for each notification kind; an
// empty URI means that notification is skipped.
type Notifications struct {
	Ready          string
	PlaylistPrefix string
	PlaylistSuffix string
	Error          string
}

func (n Notifications) uri(kind notificationKind) string {
	switch kind {
	case notifyReady:
		return n.Ready
	case notifyPlaylistPrefix:
		return n.PlaylistPrefix
	case notifyPlaylistSuffix:
		return n.PlaylistSuffix
	case notifyError:
		return n.Error
	default:
		return ""
	}
}

// Options configures timing constants the Controller needs, mirrored
// directly from the config keys in spec.md §6.
type Options struct {
	InitialVolume                  int
	VolumeOffset                   int
	PauseBeforePlayingIncrement    time.Duration
	MaxPauseBeforePlaying          time.Duration
	SmartGotoPreviousTrackDuration time.Duration
	PlayErrorSoundOnGstreamerError bool
	Notifications                  Notifications
}

// resolveResult carries a completed Resolver.Resolve call back into the
// Controller's select loop as an internal event, per spec.md §4.5's "the
// resolver runs as a spawned task whose completion is delivered to the
// Controller as an internal event."
type resolveResult struct {
	generation int
	playlist   *station.Playlist
	err        error
}

type pendingNotification struct {
	kind notificationKind
	uri  string
}

// Controller is the single-goroutine state machine. Run must be called
// exactly once; it blocks until ctx is cancelled.
type Controller struct {
	bus         *command.Bus
	broadcaster *state.Broadcaster
	resolver    *station.Resolver
	drv         *driver.Driver
	opts        Options

	// Everything below is touched only from the Run goroutine.
	cur state.PlayerState
	ph  phase

	playlist *station.Playlist
	index    int

	notificationQueue []pendingNotification
	inNotification    bool
	notifyReturnPhase phase
	afterNotification func()

	backoffDelay      time.Duration
	resolveGeneration int
	resolveResults    chan resolveResult

	trackLoadedAt time.Time
	seedCounter   uint64

	commands <-chan command.Envelope
}

// New builds a Controller. bus is the command source, broadcaster is where
// published PlayerStates go, resolver produces Playlists, drv drives
// playback.
func New(bus *command.Bus, broadcaster *state.Broadcaster, resolver *station.Resolver, drv *driver.Driver, opts Options) *Controller {
	initial := state.Empty
	initial.Volume = state.Clamp(opts.InitialVolume)

	return &Controller{
		bus:            bus,
		broadcaster:    broadcaster,
		resolver:       resolver,
		drv:            drv,
		opts:           opts,
		cur:            initial,
		ph:             phaseIdle,
		resolveResults: make(chan resolveResult, 1),
	}
}

// Run is the Controller's single-threaded cooperative loop: it selects over
// the command bus, driver events, a back-off timer, and resolver
// completions, processing one event at a time to completion before
// publishing — this keeps diffs coherent, per spec.md §4.5's
// state-publication policy.
func (c *Controller) Run(ctx context.Context) {
	commands := make(chan command.Envelope, 1)
	go pumpBus(ctx, c.bus, commands)
	c.commands = commands

	c.publish()

	var timer *time.Timer
	var timerC <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return

		case env, ok := <-c.commands:
			if !ok {
				c.commands = nil
				continue
			}
			c.handleCommand(env.Command)
			c.publish()

		case ev := <-c.drv.Events():
			c.handleDriverEvent(ev)
			c.publish()

		case res := <-c.resolveResults:
			c.handleResolveResult(res)
			c.publish()

		case <-timerC:
			timerC = nil
			c.handleBackoffExpired()
			c.publish()
		}

		if c.ph == phaseBackingOffReconnect {
			if timer == nil || timerC == nil {
				timer = time.NewTimer(c.backoffDelay)
				timerC = timer.C
			}
		} else if timer != nil {
			timer.Stop()
			timerC = nil
		}
	}
}

// pumpBus forwards every envelope from bus into out until ctx is cancelled,
// keeping the blocking Bus.Receive call off the Controller's own select
// statement.
func pumpBus(ctx context.Context, bus *command.Bus, out chan<- command.Envelope) {
	defer close(out)
	for {
		env, ok := bus.Receive(ctx)
		if !ok {
			return
		}
		select {
		case out <- env:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) shutdown() {
	c.drv.Stop()
	c.playlist = nil
	c.cur = state.Empty
	c.cur.Version = c.broadcaster.Latest().Version + 1
	c.broadcaster.Publish(c.cur)
	c.bus.Close()
}

// publish bumps the version and publishes only if something actually
// changed since the last publish, per spec.md §4.5's "No publishing while
// handling a single event's sub-steps — only at the event's completion."
func (c *Controller) publish() {
	latest := c.broadcaster.Latest()
	if state.Equal(latest, c.cur) {
		return
	}
	c.cur.Version = latest.Version + 1
	c.broadcaster.Publish(c.cur)
}

func (c *Controller) nextSeed() uint64 {
	c.seedCounter++
	return c.seedCounter
}

func (c *Controller) logEvent(msg string, args ...any) {
	slog.Debug(msg, args...)
}
