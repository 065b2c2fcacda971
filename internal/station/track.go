// Package station resolves a two-digit station index into a Playlist by
// scanning the stations directory and dispatching to the matching parser
// (m3u, pls, or a TOML descriptor for CD/USB/UPnP sources).
package station

// Track is an immutable playable item once resolved.
type Track struct {
	URI            string
	Title          string
	IsNotification bool
}

// Kind distinguishes a playlist that is expected to run to completion
// (finite: device directories, UPnP containers) from one backed by a
// stream that can drop and reconnect indefinitely (live: m3u/pls radio
// streams). Finite playlists advance normally on EndOfStream; live
// playlists enter the Controller's reconnect back-off instead.
//
// The original spec is silent on which station sources count as "live" vs
// "finite" — this mapping (m3u/pls => Live, device/UPnP => Finite) is the
// resolution documented in DESIGN.md under Open Questions.
type Kind int

const (
	KindFinite Kind = iota
	KindLive
)

// Playlist is the ordered, immutable track list produced by the resolver
// for one station.
type Playlist struct {
	StationIndex string
	Title        string
	Tracks       []Track
	Kind         Kind
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tracks)
}

// TrackAt returns the track at idx and whether idx is in bounds.
func (p *Playlist) TrackAt(idx int) (Track, bool) {
	if p == nil || idx < 0 || idx >= len(p.Tracks) {
		return Track{}, false
	}
	return p.Tracks[idx], true
}
