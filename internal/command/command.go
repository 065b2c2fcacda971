// Package command defines the user-intent commands the Controller consumes
// and the multi-producer queue that delivers them.
package command

import "time"

// Kind identifies which variant a Command carries.
type Kind int

const (
	PlayStation Kind = iota
	Stop
	PlayPause
	PreviousTrack
	NextTrack
	SeekBackwards
	SeekForwards
	VolumeUp
	VolumeDown
	SetVolume
	PlayURL
	Eject
	DebugPipeline
)

// String returns a human-readable name, used in logging.
func (k Kind) String() string {
	switch k {
	case PlayStation:
		return "PlayStation"
	case Stop:
		return "Stop"
	case PlayPause:
		return "PlayPause"
	case PreviousTrack:
		return "PreviousTrack"
	case NextTrack:
		return "NextTrack"
	case SeekBackwards:
		return "SeekBackwards"
	case SeekForwards:
		return "SeekForwards"
	case VolumeUp:
		return "VolumeUp"
	case VolumeDown:
		return "VolumeDown"
	case SetVolume:
		return "SetVolume"
	case PlayURL:
		return "PlayURL"
	case Eject:
		return "Eject"
	case DebugPipeline:
		return "DebugPipeline"
	default:
		return "Unknown"
	}
}

// Command is a tagged variant describing one unit of user intent.
// Only the fields relevant to Kind are populated.
type Command struct {
	Kind          Kind
	StationIndex  string        // PlayStation
	SeekDuration  time.Duration // SeekBackwards, SeekForwards
	Volume        int           // SetVolume
	URL           string        // PlayURL
}

// Envelope wraps a Command with the identity of its producer and the time it
// was enqueued, so the bus can preserve per-producer FIFO ordering and tests
// can assert it.
type Envelope struct {
	Command   Command
	PortID    string
	Enqueued  time.Time
}
