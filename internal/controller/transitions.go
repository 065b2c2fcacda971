package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/state"
	"github.com/arung-agamani/rradio/internal/station"
)

// timeNow is a var so tests can fake the clock for smart-goto-previous
// boundary checks without sleeping.
var timeNow = time.Now

// handleCommand dispatches one Command per spec.md §4.5's transition table.
func (c *Controller) handleCommand(cmd command.Command) {
	switch cmd.Kind {
	case command.PlayStation:
		c.startPlayStation(cmd.StationIndex)
	case command.Stop:
		c.doStop()
	case command.PlayPause:
		c.doPlayPause()
	case command.PreviousTrack:
		c.doPreviousTrack()
	case command.NextTrack:
		c.doNextTrack()
	case command.SeekBackwards:
		c.drv.Seek(-cmd.SeekDuration)
	case command.SeekForwards:
		c.drv.Seek(cmd.SeekDuration)
	case command.VolumeUp:
		c.setVolume(c.cur.Volume + c.opts.VolumeOffset)
	case command.VolumeDown:
		c.setVolume(c.cur.Volume - c.opts.VolumeOffset)
	case command.SetVolume:
		c.setVolume(cmd.Volume)
	case command.PlayURL:
		c.playURL(cmd.URL)
	case command.Eject:
		c.doStop()
	case command.DebugPipeline:
		slog.Info("debug pipeline snapshot", "phase", c.ph, "state", c.cur)
	}
}

// startPlayStation handles PlayStation(i) from any state: spec.md §4.5 —
// "publish 'stopping previous' (stop driver), transition to
// WaitingForPlaylist, invoke resolver; on success, optionally play
// playlist_prefix notification, then load track 0; on failure, play error
// notification, go to Idle with pipeline error set."
func (c *Controller) startPlayStation(index string) {
	c.drv.Stop()
	c.playlist = nil
	c.index = 0
	c.notificationQueue = nil
	c.inNotification = false
	c.cur.Phase = state.PhaseStopped
	c.cur.HasCurrentTrack = false
	c.cur.Tags = state.Tags{}

	c.ph = phaseWaitingForPlaylist
	c.resolveGeneration++
	gen := c.resolveGeneration

	go func(gen int, idx string) {
		pl, err := c.resolver.Resolve(context.Background(), idx)
		c.resolveResults <- resolveResult{generation: gen, playlist: pl, err: err}
	}(gen, index)
}

func (c *Controller) handleResolveResult(res resolveResult) {
	if res.generation != c.resolveGeneration {
		return // superseded by a later PlayStation/Stop
	}
	if res.err != nil {
		c.reportPipelineError(res.err.Error())
		c.notifyThen(notifyError, func() { c.ph = phaseIdle })
		return
	}

	c.playlist = res.playlist
	c.index = 0
	c.cur.PipelineError = ""

	c.notifyThen(notifyPlaylistPrefix, c.loadCurrentTrack)
}

// loadCurrentTrack loads whatever track c.index points to within
// c.playlist, updating PlayerState's playlist/current-track fields.
func (c *Controller) loadCurrentTrack() {
	if c.playlist == nil {
		c.ph = phaseIdle
		return
	}
	track, ok := c.playlist.TrackAt(c.index)
	if !ok {
		c.ph = phaseIdle
		return
	}

	c.cur.Playlist = c.playlist
	c.cur.CurrentTrack = c.index
	c.cur.HasCurrentTrack = true
	c.cur.Tags = state.Tags{}
	c.cur.Phase = state.PhaseBuffering
	c.ph = phasePlayingTrack
	c.backoffDelay = 0
	c.trackLoadedAt = timeNow()

	if err := c.drv.Load(context.Background(), track.URI); err != nil {
		c.reportPipelineError(err.Error())
	}
}

func (c *Controller) doStop() {
	c.drv.Stop()
	c.playlist = nil
	c.index = 0
	c.resolveGeneration++ // invalidate any resolve still in flight
	c.ph = phaseIdle
	c.cur.Phase = state.PhaseStopped
	c.cur.Playlist = nil
	c.cur.HasCurrentTrack = false
	c.cur.CurrentTrack = 0
	c.cur.Tags = state.Tags{}
	c.cur.BufferingPercent = 0
}

// doPlayPause toggles between PlayingTrack and PausedTrack; no-op in Idle.
func (c *Controller) doPlayPause() {
	switch c.ph {
	case phasePlayingTrack:
		c.drv.Pause()
		c.ph = phasePausedTrack
		c.cur.Phase = state.PhasePaused
	case phasePausedTrack:
		c.drv.Play()
		c.ph = phasePlayingTrack
		c.cur.Phase = state.PhasePlaying
	}
}

// doPreviousTrack: if within smart_goto_previous_track_duration of the
// current track, load index-1 (saturating at 0); otherwise seek to 0 of
// the current track. UPnP wrap-around is explicitly not performed.
func (c *Controller) doPreviousTrack() {
	if c.playlist == nil {
		return
	}
	if timeNow().Sub(c.trackLoadedAt) >= c.opts.SmartGotoPreviousTrackDuration {
		c.drv.Seek(0)
		return
	}
	if c.index > 0 {
		c.index--
	}
	c.loadCurrentTrack()
}

// doNextTrack: load index+1; past the end of a finite playlist, optionally
// play playlist_suffix then go to Idle.
func (c *Controller) doNextTrack() {
	if c.playlist == nil {
		return
	}
	next := c.index + 1
	if next >= c.playlist.Len() {
		c.finishFinitePlaylist()
		return
	}
	c.index = next
	c.loadCurrentTrack()
}

func (c *Controller) finishFinitePlaylist() {
	c.notifyThen(notifyPlaylistSuffix, c.doStop)
}

func (c *Controller) setVolume(v int) {
	v = state.Clamp(v)
	c.cur.Volume = v
	c.drv.SetVolume(v)
}

// playURL synthesises a one-track playlist (title = uri) and plays
// immediately, per spec.md §4.5's PlayUrl handling.
func (c *Controller) playURL(uri string) {
	c.drv.Stop()
	c.playlist = &station.Playlist{
		Title:  uri,
		Tracks: []station.Track{{URI: uri, Title: uri}},
		Kind:   station.KindLive,
	}
	c.index = 0
	c.loadCurrentTrack()
}

func (c *Controller) reportPipelineError(msg string) {
	c.cur.PipelineError = msg
	slog.Warn("pipeline error", "message", msg)
}

// enqueueNotification queues kind's URI for playback, returning false
// without effect if no URI is configured for it.
func (c *Controller) enqueueNotification(kind notificationKind) bool {
	uri := c.opts.Notifications.uri(kind)
	if uri == "" {
		return false
	}
	c.notificationQueue = append(c.notificationQueue, pendingNotification{kind: kind, uri: uri})
	c.tryStartNextNotification()
	return true
}

// notifyThen queues kind's notification and defers action until the
// notification queue has fully drained (its own EndOfStream reaches
// finishNotification), instead of running action immediately: action
// typically issues its own drv.Load/Stop call, which would otherwise
// clobber the notification's drv.Load right back out from under it while
// leaving inNotification stuck true forever. If kind has no URI configured,
// nothing was queued, so action runs right away.
func (c *Controller) notifyThen(kind notificationKind, action func()) {
	if c.enqueueNotification(kind) {
		c.afterNotification = action
		return
	}
	action()
}

// tryStartNextNotification plays the head of the notification queue through
// the driver without disturbing the published current-track: spec.md §4.5
// — "the user-facing current-track is NOT replaced by the notification
// URI... Back-to-back notifications are queued and played in submission
// order."
func (c *Controller) tryStartNextNotification() {
	if c.inNotification || len(c.notificationQueue) == 0 {
		return
	}
	next := c.notificationQueue[0]
	c.notificationQueue = c.notificationQueue[1:]
	c.inNotification = true
	c.notifyReturnPhase = c.ph
	c.ph = phasePlayingNotification

	if err := c.drv.Load(context.Background(), next.uri); err != nil {
		c.finishNotification()
	}
}

func (c *Controller) finishNotification() {
	c.inNotification = false
	if len(c.notificationQueue) > 0 {
		c.tryStartNextNotification()
		return
	}

	action := c.afterNotification
	c.afterNotification = nil
	if action != nil {
		action()
		return
	}

	c.ph = c.notifyReturnPhase
	if c.ph == phasePlayingNotification {
		c.ph = phaseIdle
	}
}
