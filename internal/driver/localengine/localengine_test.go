package localengine

import (
	"context"
	"testing"
	"time"

	"github.com/arung-agamani/rradio/internal/driver"
)

func TestLoadEmitsBufferingThenPlaying(t *testing.T) {
	e := New(50 * time.Millisecond)

	if err := e.Load(context.Background(), "http://example.com/stream.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	first := <-e.Events()
	if first.Kind != driver.EventPhaseChanged || first.Phase != driver.PhaseBuffering {
		t.Fatalf("expected buffering event, got %+v", first)
	}

	second := <-e.Events()
	if second.Kind != driver.EventPhaseChanged || second.Phase != driver.PhasePlaying {
		t.Fatalf("expected playing event, got %+v", second)
	}
}

func TestLoadEmitsEndOfStreamAfterTrackDuration(t *testing.T) {
	e := New(20 * time.Millisecond)
	if err := e.Load(context.Background(), "http://example.com/stream.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	<-e.Events() // buffering
	<-e.Events() // playing

	select {
	case ev := <-e.Events():
		if ev.Kind != driver.EventEndOfStream {
			t.Fatalf("expected EndOfStream, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EndOfStream")
	}
}

func TestStopCancelsPendingEndOfStream(t *testing.T) {
	e := New(2 * time.Second)
	if err := e.Load(context.Background(), "http://example.com/stream.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	<-e.Events() // buffering
	<-e.Events() // playing

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	ev := <-e.Events()
	if ev.Kind != driver.EventPhaseChanged || ev.Phase != driver.PhaseStopped {
		t.Fatalf("expected stopped event, got %+v", ev)
	}

	select {
	case ev := <-e.Events():
		t.Fatalf("expected no further events after stop, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSeekIsNoOp(t *testing.T) {
	e := New(time.Second)
	if err := e.Seek(5 * time.Second); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestSetVolumeDoesNotError(t *testing.T) {
	e := New(time.Second)
	if err := e.SetVolume(42); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
