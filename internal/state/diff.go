package state

import (
	"bytes"

	"github.com/arung-agamani/rradio/internal/station"
)

// Diff is the field-wise delta between two PlayerStates. A field's pointer
// (or ok-bool, for zero-value-ambiguous fields) is non-nil/true iff that
// field's value differs from the baseline. Diffs are computed against a
// Port's own last-sent snapshot, so a slow Port that misses intermediate
// versions still ends up with a lossless, coherent diff at the field level.
type Diff struct {
	Phase *Phase `json:"phase,omitempty"`

	// PlaylistChanged distinguishes "no change" from "playlist cleared":
	// when true, Playlist carries the new value (nil means cleared).
	PlaylistChanged bool               `json:"-"`
	Playlist        *station.Playlist  `json:"playlist,omitempty"`

	CurrentTrackChanged bool `json:"-"`
	HasCurrentTrack     *bool `json:"hasCurrentTrack,omitempty"`
	CurrentTrack        *int  `json:"currentTrack,omitempty"`

	Tags *Tags `json:"tags,omitempty"`

	Volume *int `json:"volume,omitempty"`

	BufferingPercent *int `json:"bufferingPercent,omitempty"`

	PipelineErrorChanged bool    `json:"-"`
	PipelineError        *string `json:"pipelineError,omitempty"`

	Version uint64 `json:"version"`
}

// IsEmpty reports whether the diff carries no field changes (only Version
// may differ).
func (d Diff) IsEmpty() bool {
	return d.Phase == nil && !d.PlaylistChanged && !d.CurrentTrackChanged &&
		d.Tags == nil && d.Volume == nil && d.BufferingPercent == nil &&
		!d.PipelineErrorChanged
}

func tagsEqual(a, b Tags) bool {
	return a.Title == b.Title && a.Artist == b.Artist && a.Album == b.Album &&
		a.Genre == b.Genre && bytes.Equal(a.Image, b.Image)
}

// ComputeDiff returns the field-wise delta taking `from` to `to`. Playlist
// equality is by pointer identity (playlists are immutable once resolved,
// so identity comparison avoids re-hashing potentially large track lists).
func ComputeDiff(from, to PlayerState) Diff {
	d := Diff{Version: to.Version}

	if from.Phase != to.Phase {
		p := to.Phase
		d.Phase = &p
	}

	if from.Playlist != to.Playlist {
		d.PlaylistChanged = true
		d.Playlist = to.Playlist
	}

	if from.HasCurrentTrack != to.HasCurrentTrack || from.CurrentTrack != to.CurrentTrack {
		d.CurrentTrackChanged = true
		has := to.HasCurrentTrack
		d.HasCurrentTrack = &has
		idx := to.CurrentTrack
		d.CurrentTrack = &idx
	}

	if !tagsEqual(from.Tags, to.Tags) {
		t := to.Tags
		d.Tags = &t
	}

	if from.Volume != to.Volume {
		v := to.Volume
		d.Volume = &v
	}

	if from.BufferingPercent != to.BufferingPercent {
		bp := to.BufferingPercent
		d.BufferingPercent = &bp
	}

	if from.PipelineError != to.PipelineError {
		d.PipelineErrorChanged = true
		e := to.PipelineError
		d.PipelineError = &e
	}

	return d
}

// Apply returns the PlayerState obtained by applying d on top of base. It is
// the inverse of ComputeDiff: Apply(a, ComputeDiff(a, b)) == b field-for-field.
func Apply(base PlayerState, d Diff) PlayerState {
	out := base

	if d.Phase != nil {
		out.Phase = *d.Phase
	}
	if d.PlaylistChanged {
		out.Playlist = d.Playlist
	}
	if d.CurrentTrackChanged {
		if d.HasCurrentTrack != nil {
			out.HasCurrentTrack = *d.HasCurrentTrack
		}
		if d.CurrentTrack != nil {
			out.CurrentTrack = *d.CurrentTrack
		} else {
			out.CurrentTrack = 0
		}
	}
	if d.Tags != nil {
		out.Tags = *d.Tags
	}
	if d.Volume != nil {
		out.Volume = *d.Volume
	}
	if d.BufferingPercent != nil {
		out.BufferingPercent = *d.BufferingPercent
	}
	if d.PipelineErrorChanged && d.PipelineError != nil {
		out.PipelineError = *d.PipelineError
	}
	out.Version = d.Version

	return out
}
