// Package driver is the thin façade over the external media engine that
// spec.md §1 puts out of scope: it exposes Load/Play/Pause/Stop/Seek/
// SetVolume and a channel of PipelineEvents, and never itself decodes audio.
package driver

import (
	"context"
	"time"
)

// Phase mirrors the pipeline phases PlayerState tracks.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseBuffering
	PhasePlaying
	PhasePaused
	PhaseError
)

// Tags is a partial or complete set of tag fields read from a stream.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Image  []byte
}

// EventKind enumerates the PipelineEvent variants from spec.md §4.4.
type EventKind int

const (
	EventPhaseChanged EventKind = iota
	EventBufferingProgress
	EventTagsReceived
	EventEndOfStream
	EventError
)

// PipelineEvent is what an Engine reports back to the Driver, and what the
// Driver forwards unchanged to the Controller.
type PipelineEvent struct {
	Kind             EventKind
	Phase            Phase
	BufferingPercent int
	Tags             Tags
	ErrMessage       string
}

// Engine is the pluggable backend a Driver drives. Exactly one of
// execengine.Engine or localengine.Engine is wired in at startup; the
// Controller never branches on which is active.
type Engine interface {
	Load(ctx context.Context, uri string) error
	Play() error
	Pause() error
	Stop() error
	Seek(relative time.Duration) error
	SetVolume(v int) error
	Events() <-chan PipelineEvent
}

// Driver wraps an Engine with the guarantee spec.md §4.4 requires: after
// Stop, no further events for the prior URI reach the Controller, and Load
// on a new URI resets buffering/tags atomically. Both shipped Engines stop
// emitting as soon as their load context is cancelled, so Load/Stop simply
// cancel that context; the Controller never observes events for a URI it
// has already moved past.
type Driver struct {
	engine Engine
	out    chan PipelineEvent

	cancel context.CancelFunc
}

// New wraps engine in a Driver. The caller retains ownership of engine's
// lifecycle (Stop is always called before the process exits).
func New(engine Engine) *Driver {
	d := &Driver{
		engine: engine,
		out:    make(chan PipelineEvent, 32),
	}
	go d.pump()
	return d
}

// pump relays engine events to the Driver's own output channel until the
// engine's event channel closes.
func (d *Driver) pump() {
	for ev := range d.engine.Events() {
		d.out <- ev
	}
}

// Events returns the channel of PipelineEvents the Controller selects on.
func (d *Driver) Events() <-chan PipelineEvent {
	return d.out
}

// Load starts loading uri, cancelling any in-flight load for a prior URI.
func (d *Driver) Load(ctx context.Context, uri string) error {
	if d.cancel != nil {
		d.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	return d.engine.Load(loadCtx, uri)
}

func (d *Driver) Play() error { return d.engine.Play() }

func (d *Driver) Pause() error { return d.engine.Pause() }

// Stop halts playback and cancels the in-flight load context, if any.
func (d *Driver) Stop() error {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return d.engine.Stop()
}

func (d *Driver) Seek(relative time.Duration) error { return d.engine.Seek(relative) }

func (d *Driver) SetVolume(v int) error { return d.engine.SetVolume(v) }
