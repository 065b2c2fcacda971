package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/state"
)

// commandMessage is the wire representation of a command.Command: a string
// kind plus only the fields that kind uses, matching the teacher's gin.H
// JSON shape (named fields, no positional tuples) generalized to a command
// envelope instead of a REST response body.
type commandMessage struct {
	Kind         string `json:"kind"`
	StationIndex string `json:"stationIndex,omitempty"`
	SeekMillis   int64  `json:"seekMillis,omitempty"`
	Volume       int    `json:"volume,omitempty"`
	URL          string `json:"url,omitempty"`
}

var kindNames = map[command.Kind]string{
	command.PlayStation:   "playStation",
	command.Stop:          "stop",
	command.PlayPause:     "playPause",
	command.PreviousTrack: "previousTrack",
	command.NextTrack:     "nextTrack",
	command.SeekBackwards: "seekBackwards",
	command.SeekForwards:  "seekForwards",
	command.VolumeUp:      "volumeUp",
	command.VolumeDown:    "volumeDown",
	command.SetVolume:     "setVolume",
	command.PlayURL:       "playUrl",
	command.Eject:         "eject",
	command.DebugPipeline: "debugPipeline",
}

var namesToKind = func() map[string]command.Kind {
	m := make(map[string]command.Kind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

// EncodeCommand renders cmd as the JSON payload carried inside a frame.
func EncodeCommand(cmd command.Command) ([]byte, error) {
	name, ok := kindNames[cmd.Kind]
	if !ok {
		return nil, fmt.Errorf("wire: unknown command kind %v", cmd.Kind)
	}
	msg := commandMessage{
		Kind:         name,
		StationIndex: cmd.StationIndex,
		SeekMillis:   cmd.SeekDuration.Milliseconds(),
		Volume:       cmd.Volume,
		URL:          cmd.URL,
	}
	return json.Marshal(msg)
}

// DecodeCommand parses a frame payload into a command.Command, validating
// the syntactic shape of fields that have one (station index, seek
// duration, URL). Volume is not range-checked here: per spec.md §4.6/§6,
// out-of-range volumes saturate rather than close the Port, so bounds
// enforcement is left to Controller.setVolume's clamp. A decode error
// closes only the Port that produced it.
func DecodeCommand(payload []byte) (command.Command, error) {
	var msg commandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return command.Command{}, fmt.Errorf("wire: malformed command payload: %w", err)
	}
	kind, ok := namesToKind[msg.Kind]
	if !ok {
		return command.Command{}, fmt.Errorf("wire: unknown command kind %q", msg.Kind)
	}

	cmd := command.Command{Kind: kind}
	switch kind {
	case command.PlayStation:
		if !isTwoDigitIndex(msg.StationIndex) {
			return command.Command{}, fmt.Errorf("wire: station index %q is not two digits", msg.StationIndex)
		}
		cmd.StationIndex = msg.StationIndex
	case command.SeekBackwards, command.SeekForwards:
		if msg.SeekMillis < 0 {
			return command.Command{}, fmt.Errorf("wire: negative seek duration")
		}
		cmd.SeekDuration = time.Duration(msg.SeekMillis) * time.Millisecond
	case command.SetVolume:
		// Out-of-range volumes are not a decode error: spec.md's volume
		// invariant saturates rather than rejects ("out-of-range commands
		// saturate, not reject"). Controller.setVolume clamps via
		// state.Clamp; decode-time validation is reserved for genuinely
		// syntactic checks like the station index.
		cmd.Volume = msg.Volume
	case command.PlayURL:
		if msg.URL == "" {
			return command.Command{}, fmt.Errorf("wire: empty url")
		}
		cmd.URL = msg.URL
	}
	return cmd, nil
}

func isTwoDigitIndex(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// EncodeDiff renders d as the JSON payload carried inside a frame. Diff
// already carries json tags suited for wire transmission (see
// internal/state/diff.go), so this is a thin wrapper kept for symmetry with
// EncodeCommand and to give callers one obvious place to change the wire
// format later.
func EncodeDiff(d state.Diff) ([]byte, error) {
	return json.Marshal(d)
}
