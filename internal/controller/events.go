package controller

import (
	"context"

	"github.com/arung-agamani/rradio/internal/driver"
	"github.com/arung-agamani/rradio/internal/state"
	"github.com/arung-agamani/rradio/internal/station"
)

// handleDriverEvent reacts to one PipelineEvent from the Playback driver.
func (c *Controller) handleDriverEvent(ev driver.PipelineEvent) {
	switch ev.Kind {
	case driver.EventPhaseChanged:
		c.onPhaseChanged(ev.Phase)
	case driver.EventBufferingProgress:
		c.cur.BufferingPercent = state.Clamp(ev.BufferingPercent)
	case driver.EventTagsReceived:
		c.onTagsReceived(ev.Tags)
	case driver.EventEndOfStream:
		c.onEndOfStream()
	case driver.EventError:
		c.onPipelineError(ev.ErrMessage)
	}
}

func (c *Controller) onPhaseChanged(p driver.Phase) {
	if c.inNotification {
		// Notification playback does not alter the user-facing pipeline
		// phase; it is tracked only to know when EndOfStream ends it.
		return
	}
	switch p {
	case driver.PhaseBuffering:
		c.cur.Phase = state.PhaseBuffering
	case driver.PhasePlaying:
		c.cur.Phase = state.PhasePlaying
		c.cur.PipelineError = ""
		c.backoffDelay = 0
	case driver.PhasePaused:
		c.cur.Phase = state.PhasePaused
	case driver.PhaseStopped:
		c.cur.Phase = state.PhaseStopped
	case driver.PhaseError:
		c.cur.Phase = state.PhaseError
	}
}

func (c *Controller) onTagsReceived(t driver.Tags) {
	if c.inNotification {
		return
	}
	merged := c.cur.Tags
	if t.Title != "" {
		merged.Title = t.Title
	}
	if t.Artist != "" {
		merged.Artist = t.Artist
	}
	if t.Album != "" {
		merged.Album = t.Album
	}
	if t.Genre != "" {
		merged.Genre = t.Genre
	}
	if t.Image != nil {
		merged.Image = t.Image
	}
	c.cur.Tags = merged
}

// onEndOfStream implements spec.md §4.5's EndOfStream transition table.
func (c *Controller) onEndOfStream() {
	if c.inNotification {
		c.finishNotification()
		return
	}

	if c.playlist == nil {
		return
	}

	if c.playlist.Kind == station.KindFinite {
		if c.index+1 < c.playlist.Len() {
			c.doNextTrack()
		} else {
			c.finishFinitePlaylist()
		}
		return
	}

	c.enterBackoff()
}

// enterBackoff implements the infinite/live-source branch: "enter
// BackingOffReconnect with delay = previous_delay + increment, capped at
// max; on expiry, re-load() the same URI; on repeated EndOfStream without
// any PhaseChanged(playing) in between, keep accumulating delay until cap;
// once capped and still failing, emit error notification and go to Idle."
func (c *Controller) enterBackoff() {
	if c.backoffDelay == 0 {
		c.backoffDelay = c.opts.PauseBeforePlayingIncrement
	} else if c.backoffDelay >= c.opts.MaxPauseBeforePlaying {
		c.notifyThen(notifyError, c.doStop)
		return
	} else {
		c.backoffDelay += c.opts.PauseBeforePlayingIncrement
		if c.backoffDelay > c.opts.MaxPauseBeforePlaying {
			c.backoffDelay = c.opts.MaxPauseBeforePlaying
		}
	}
	c.ph = phaseBackingOffReconnect
	c.cur.Phase = state.PhaseBuffering
}

// handleBackoffExpired re-loads the same URI after the back-off delay
// elapses.
func (c *Controller) handleBackoffExpired() {
	if c.ph != phaseBackingOffReconnect || c.playlist == nil {
		return
	}
	track, ok := c.playlist.TrackAt(c.index)
	if !ok {
		c.doStop()
		return
	}
	c.ph = phasePlayingTrack
	if err := c.drv.Load(context.Background(), track.URI); err != nil {
		c.reportPipelineError(err.Error())
	}
}

// onPipelineError implements spec.md §4.5's Error(msg) transition: "If
// play_error_sound_on_gstreamer_error, enter PlayingNotification(Idle) with
// the error sound; else directly Idle. PlayerState's latest pipeline error
// is set to msg; cleared on the next successful PhaseChanged(playing)."
func (c *Controller) onPipelineError(msg string) {
	if c.inNotification {
		c.finishNotification()
		return
	}
	c.reportPipelineError(msg)
	c.doStop()
	if c.opts.PlayErrorSoundOnGstreamerError {
		c.enqueueNotification(notifyError)
	}
}
