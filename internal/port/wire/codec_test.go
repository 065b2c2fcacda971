package wire

import (
	"testing"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
)

func TestEncodeDecodeCommandRoundTrip(t *testing.T) {
	cases := []command.Command{
		{Kind: command.PlayStation, StationIndex: "07"},
		{Kind: command.Stop},
		{Kind: command.SeekForwards, SeekDuration: 15 * time.Second},
		{Kind: command.SetVolume, Volume: 42},
		{Kind: command.PlayURL, URL: "http://example/stream.mp3"},
		{Kind: command.Eject},
	}
	for _, cmd := range cases {
		payload, err := EncodeCommand(cmd)
		if err != nil {
			t.Fatalf("EncodeCommand(%+v): %v", cmd, err)
		}
		got, err := DecodeCommand(payload)
		if err != nil {
			t.Fatalf("DecodeCommand(%s): %v", payload, err)
		}
		if got != cmd {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, cmd)
		}
	}
}

func TestDecodeCommandPassesOutOfRangeVolumeThrough(t *testing.T) {
	// Out-of-range volumes must not close the Port: spec.md's invariant is
	// that they saturate (via Controller.setVolume's clamp), not get
	// rejected at decode time.
	payload := []byte(`{"kind":"setVolume","volume":250}`)
	cmd, err := DecodeCommand(payload)
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if cmd.Volume != 250 {
		t.Errorf("expected the raw out-of-range volume to pass through undecoded, got %d", cmd.Volume)
	}
}

func TestDecodeCommandRejectsNonTwoDigitStationIndex(t *testing.T) {
	payload := []byte(`{"kind":"playStation","stationIndex":"7"}`)
	if _, err := DecodeCommand(payload); err == nil {
		t.Fatal("expected an error for a non-two-digit station index")
	}
}

func TestDecodeCommandRejectsUnknownKind(t *testing.T) {
	payload := []byte(`{"kind":"doBarrelRoll"}`)
	if _, err := DecodeCommand(payload); err == nil {
		t.Fatal("expected an error for an unknown command kind")
	}
}

func TestDecodeCommandRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeCommand([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
