// Package execengine implements driver.Engine by spawning a subprocess per
// URI and parsing its stdout for phase/tag/error lines, the same shape as
// the teacher's internal/ffmpeg.Encoder.Stream: exec.CommandContext, piped
// stdout/stderr, a background goroutine draining stderr into the logger.
package execengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arung-agamani/rradio/internal/driver"
)

// Engine drives an external media player subprocess. The binary is expected
// to emit one line per status change on stdout in the form
// "PHASE:<name>", "BUFFERING:<0-100>", "TAG:<key>=<value>", "EOS", or
// "ERROR:<message>" — the same kind of line-oriented status channel the
// teacher's ffmpeg wrapper logs from stderr, generalized here into the
// Controller's event stream instead of a log line.
type Engine struct {
	command string
	args    []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	events chan driver.PipelineEvent
	volume int
}

// New builds an Engine that runs command with args, substituting "{uri}" in
// args for the URI passed to Load.
func New(command string, args []string) *Engine {
	return &Engine{
		command: command,
		args:    args,
		events:  make(chan driver.PipelineEvent, 32),
		volume:  100,
	}
}

func (e *Engine) Events() <-chan driver.PipelineEvent { return e.events }

// Load spawns the subprocess for uri, tearing down any prior instance
// first. Buffering and tag state for the new URI starts clean because a
// fresh subprocess has no memory of the previous one.
func (e *Engine) Load(ctx context.Context, uri string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	args := make([]string, len(e.args))
	for i, a := range e.args {
		args[i] = strings.ReplaceAll(a, "{uri}", uri)
	}

	cmd := exec.CommandContext(runCtx, e.command, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("execengine: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("execengine: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("execengine: start: %w", err)
	}
	e.cmd = cmd

	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhaseBuffering})

	go e.drainStderr(stderr)
	go func() {
		// Wait closes the stdout pipe, so every line must be read first.
		e.drainStdout(runCtx, stdout)
		e.wait(runCtx, cmd)
	}()

	return nil
}

// drainStdout scans the subprocess's status lines and turns each into the
// matching PipelineEvent, until ctx is cancelled.
func (e *Engine) drainStdout(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "EOS":
			e.emit(driver.PipelineEvent{Kind: driver.EventEndOfStream})
		case strings.HasPrefix(line, "PHASE:"):
			e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: parsePhase(strings.TrimPrefix(line, "PHASE:"))})
		case strings.HasPrefix(line, "BUFFERING:"):
			e.emit(driver.PipelineEvent{Kind: driver.EventBufferingProgress, BufferingPercent: parsePercent(strings.TrimPrefix(line, "BUFFERING:"))})
		case strings.HasPrefix(line, "TAG:"):
			if key, value, ok := parseTagLine(line); ok {
				e.emit(driver.PipelineEvent{Kind: driver.EventTagsReceived, Tags: tagFromKeyValue(key, value)})
			}
		case strings.HasPrefix(line, "ERROR:"):
			e.emit(driver.PipelineEvent{Kind: driver.EventError, ErrMessage: strings.TrimPrefix(line, "ERROR:")})
		}
	}
}

func (e *Engine) drainStderr(stderr io.Reader) {
	buf := make([]byte, 1024)
	for {
		n, err := stderr.Read(buf)
		if n > 0 {
			slog.Debug("execengine subprocess stderr", "output", string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

func (e *Engine) wait(ctx context.Context, cmd *exec.Cmd) {
	if err := cmd.Wait(); err != nil && ctx.Err() == nil && cmd.ProcessState != nil && !cmd.ProcessState.Exited() {
		e.emit(driver.PipelineEvent{Kind: driver.EventError, ErrMessage: err.Error()})
	}
}

func (e *Engine) emit(ev driver.PipelineEvent) {
	select {
	case e.events <- ev:
	default:
		slog.Warn("execengine: event channel full, dropping event", "kind", ev.Kind)
	}
}

func (e *Engine) Play() error {
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhasePlaying})
	return nil
}

func (e *Engine) Pause() error {
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhasePaused})
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.emit(driver.PipelineEvent{Kind: driver.EventPhaseChanged, Phase: driver.PhaseStopped})
	return nil
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.cmd = nil
}

// Seek is not supported by the line-oriented subprocess protocol; reported
// as an error, which the Controller discards.
func (e *Engine) Seek(relative time.Duration) error {
	return fmt.Errorf("execengine: seek not supported by subprocess protocol")
}

func (e *Engine) SetVolume(v int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	return nil
}

func parsePhase(name string) driver.Phase {
	switch strings.TrimSpace(name) {
	case "stopped":
		return driver.PhaseStopped
	case "buffering":
		return driver.PhaseBuffering
	case "playing":
		return driver.PhasePlaying
	case "paused":
		return driver.PhasePaused
	case "error":
		return driver.PhaseError
	default:
		return driver.PhaseError
	}
}

func parseTagLine(line string) (key, value string, ok bool) {
	rest := strings.TrimPrefix(line, "TAG:")
	k, v, found := strings.Cut(rest, "=")
	if !found {
		return "", "", false
	}
	return k, v, true
}

func tagFromKeyValue(key, value string) driver.Tags {
	var t driver.Tags
	switch key {
	case "title":
		t.Title = value
	case "artist":
		t.Artist = value
	case "album":
		t.Album = value
	case "genre":
		t.Genre = value
	}
	return t
}

func parsePercent(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
