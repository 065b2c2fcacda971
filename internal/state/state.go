// Package state owns the authoritative PlayerState snapshot, its diff
// encoding, and the latest-value broadcaster that fans it out to Ports.
package state

import "github.com/arung-agamani/rradio/internal/station"

// Phase is the pipeline phase of PlayerState.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseBuffering
	PhasePlaying
	PhasePaused
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseBuffering:
		return "buffering"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Tags holds the live tag set for the current track.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Image  []byte
}

func (t Tags) isZero() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Genre == "" && len(t.Image) == 0
}

// PlayerState is the authoritative, versioned snapshot of what the radio is
// doing. The Controller is its sole writer.
type PlayerState struct {
	Phase Phase

	Playlist        *station.Playlist // nil when no station is selected
	CurrentTrack    int               // valid iff Playlist != nil and in bounds
	HasCurrentTrack bool

	Tags Tags

	Volume int // clamped to [0,100]

	BufferingPercent int

	PipelineError string // cleared on next successful PhaseChanged(playing)

	Version uint64
}

// Clamp saturates v into [0,100].
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Clone returns a shallow copy. Playlist is shared by reference (it is
// immutable once resolved), so cloning never deep-copies track lists or
// image bytes.
func (s PlayerState) Clone() PlayerState {
	return s
}

// Empty is the zero-value baseline a Port diffs its first snapshot against.
var Empty = PlayerState{Phase: PhaseStopped}

// Equal reports whether two PlayerStates carry the same value. PlayerState
// is not comparable with == because Tags embeds a []byte image, so this is
// the supported equality check (used by tests and round-trip assertions).
func Equal(a, b PlayerState) bool {
	return a.Phase == b.Phase &&
		a.Playlist == b.Playlist &&
		a.CurrentTrack == b.CurrentTrack &&
		a.HasCurrentTrack == b.HasCurrentTrack &&
		tagsEqual(a.Tags, b.Tags) &&
		a.Volume == b.Volume &&
		a.BufferingPercent == b.BufferingPercent &&
		a.PipelineError == b.PipelineError &&
		a.Version == b.Version
}
