// Package console implements the key-sequence recognition adapter from
// spec.md §9: "Console key-sequence recognition belongs outside the core;
// it produces the same Command type as any other producer — no special
// path in the Controller." A two-digit station index is assembled from
// individual digit key presses, discarding the first digit if the second
// doesn't arrive within input_timeout (spec.md §8's boundary scenario).
package console

import (
	"time"

	"github.com/arung-agamani/rradio/internal/command"
)

// KeyEvent is one input event from whatever physical key source feeds this
// assembler (GPIO buttons, a keypad driver, etc. — out of scope here).
type KeyEvent struct {
	Digit     *byte // non-nil for a '0'-'9' key press
	Transport TransportKey
}

// TransportKey identifies a non-digit control key.
type TransportKey int

const (
	None TransportKey = iota
	PlayPause
	Stop
	NextTrack
	PreviousTrack
	VolumeUp
	VolumeDown
	Eject
)

// Assembler accumulates digit key presses into two-digit station indices
// and translates transport keys directly into Commands. It is not
// goroutine-safe; a single reader goroutine should own it and feed it
// events serially, per spec.md §4.1's "Producers: ... the console input
// adapter."
type Assembler struct {
	inputTimeout time.Duration
	pending      *byte
	pendingAt    time.Time
	now          func() time.Time
}

// NewAssembler builds an Assembler with the given input_timeout (spec.md
// §6's configured gap between the two station digits).
func NewAssembler(inputTimeout time.Duration) *Assembler {
	return &Assembler{inputTimeout: inputTimeout, now: time.Now}
}

// Feed processes one KeyEvent and returns the Command it produces, if any.
// A lone first digit never produces a Command by itself; it is buffered
// until a second digit arrives or input_timeout elapses.
func (a *Assembler) Feed(ev KeyEvent) (command.Command, bool) {
	now := a.now()

	if ev.Digit != nil {
		if a.pending == nil {
			a.pending = ev.Digit
			a.pendingAt = now
			return command.Command{}, false
		}

		// Two-digit input timeout: spec.md §8 — "pressing digit 1 then
		// waiting longer than input_timeout then pressing digit 2 MUST NOT
		// select station 12; the first digit is discarded."
		if now.Sub(a.pendingAt) > a.inputTimeout {
			a.pending = ev.Digit
			a.pendingAt = now
			return command.Command{}, false
		}

		index := string([]byte{*a.pending, *ev.Digit})
		a.pending = nil
		return command.Command{Kind: command.PlayStation, StationIndex: index}, true
	}

	// Any transport key discards a half-entered digit sequence.
	a.pending = nil

	switch ev.Transport {
	case PlayPause:
		return command.Command{Kind: command.PlayPause}, true
	case Stop:
		return command.Command{Kind: command.Stop}, true
	case NextTrack:
		return command.Command{Kind: command.NextTrack}, true
	case PreviousTrack:
		return command.Command{Kind: command.PreviousTrack}, true
	case VolumeUp:
		return command.Command{Kind: command.VolumeUp}, true
	case VolumeDown:
		return command.Command{Kind: command.VolumeDown}, true
	case Eject:
		return command.Command{Kind: command.Eject}, true
	default:
		return command.Command{}, false
	}
}
