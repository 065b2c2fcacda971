// Package localengine implements driver.Engine as a dependency-free
// offline/test engine: it reads local files and extracts tags with
// github.com/dhowden/tag — the teacher's own dependency, used the same way
// in internal/playlist/track.go's extractTrackMetadata — instead of
// spawning a real decoder. It never produces audio output; it exists so the
// Controller's state machine can be exercised without an external media
// engine present.
package localengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"github.com/arung-agamani/rradio/internal/driver"
)

// Engine simulates playback timing for local files: it reads tags
// immediately on Load, then emits a synthetic EndOfStream after a fixed
// per-track duration (since no real decoder provides one).
type Engine struct {
	trackDuration time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	events  chan driver.PipelineEvent
	paused  bool
	volume  int
}

// New builds a localengine.Engine. trackDuration governs how long a track
// "plays" before a synthetic EndOfStream fires.
func New(trackDuration time.Duration) *Engine {
	return &Engine{
		trackDuration: trackDuration,
		events:        make(chan driver.PipelineEvent, 32),
		volume:        100,
	}
}

func (e *Engine) Events() <-chan driver.PipelineEvent { return e.events }

// Load reads uri as a local file path, extracts tags if present, and
// schedules a synthetic EndOfStream after trackDuration unless Stop or a
// subsequent Load cancels it first.
func (e *Engine) Load(ctx context.Context, uri string) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.paused = false
	e.mu.Unlock()

	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhaseBuffering})

	tags, err := readTags(uri)
	if err != nil {
		slog.Debug("localengine: could not read tags", "uri", uri, "error", err)
	} else if tags != nil {
		e.emit(driver.PipelineEvent{Kind: driver.EventTagsReceived, Tags: *tags})
	}

	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhasePlaying})

	go e.runClock(runCtx)

	return nil
}

func (e *Engine) runClock(ctx context.Context) {
	timer := time.NewTimer(e.trackDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
		e.emit(driver.PipelineEvent{Kind: driver.EventEndOfStream})
	case <-ctx.Done():
	}
}

func readTags(path string) (*driver.Tags, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("localengine: open: %w", err)
		}
		defer f.Close()

		m, err := tag.ReadFrom(f)
		if err != nil {
			return nil, fmt.Errorf("localengine: read tags: %w", err)
		}

		t := &driver.Tags{
			Title:  m.Title(),
			Artist: m.Artist(),
			Album:  m.Album(),
			Genre:  m.Genre(),
		}
		if pic := m.Picture(); pic != nil {
			t.Image = pic.Data
		}
		return t, nil
	}
	return nil, nil
}

func (e *Engine) emit(ev driver.PipelineEvent) {
	select {
	case e.events <- ev:
	default:
		slog.Warn("localengine: event channel full, dropping event", "kind", ev.Kind)
	}
}

func (e *Engine) Play() error {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhasePlaying})
	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhasePaused})
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhaseStopped})
	return nil
}

// Seek is a no-op: the local engine has no real timeline beyond its
// synthetic end-of-stream clock.
func (e *Engine) Seek(relative time.Duration) error {
	return nil
}

func (e *Engine) SetVolume(v int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	return nil
}
