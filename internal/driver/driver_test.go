package driver

import (
	"context"
	"testing"
	"time"
)

type fakeEngine struct {
	events   chan PipelineEvent
	loaded   []string
	loadCtx  context.Context
	stopped  int
	volumes  []int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan PipelineEvent, 16)}
}

func (f *fakeEngine) Load(ctx context.Context, uri string) error {
	f.loaded = append(f.loaded, uri)
	f.loadCtx = ctx
	return nil
}
func (f *fakeEngine) Play() error                        { return nil }
func (f *fakeEngine) Pause() error                       { return nil }
func (f *fakeEngine) Stop() error                         { f.stopped++; return nil }
func (f *fakeEngine) Seek(d time.Duration) error          { return nil }
func (f *fakeEngine) SetVolume(v int) error               { f.volumes = append(f.volumes, v); return nil }
func (f *fakeEngine) Events() <-chan PipelineEvent        { return f.events }

func TestDriverForwardsEngineEvents(t *testing.T) {
	fe := newFakeEngine()
	d := New(fe)

	fe.events <- PipelineEvent{Kind: EventPhaseChanged, Phase: PhasePlaying}

	select {
	case ev := <-d.Events():
		if ev.Kind != EventPhaseChanged || ev.Phase != PhasePlaying {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded event")
	}
}

func TestDriverLoadDelegatesToEngine(t *testing.T) {
	fe := newFakeEngine()
	d := New(fe)

	if err := d.Load(context.Background(), "http://example.com/a"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(fe.loaded) != 1 || fe.loaded[0] != "http://example.com/a" {
		t.Errorf("expected engine.Load called with uri, got %+v", fe.loaded)
	}
}

func TestDriverStopCancelsInFlightLoadContext(t *testing.T) {
	fe := newFakeEngine()
	d := New(fe)

	ctx := context.Background()
	if err := d.Load(ctx, "http://example.com/a"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if fe.stopped != 1 {
		t.Errorf("expected engine.Stop called once, got %d", fe.stopped)
	}
	if fe.loadCtx.Err() == nil {
		t.Error("expected the in-flight load context to be cancelled by Stop")
	}
}

func TestDriverSetVolumeDelegatesToEngine(t *testing.T) {
	fe := newFakeEngine()
	d := New(fe)

	if err := d.SetVolume(42); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if len(fe.volumes) != 1 || fe.volumes[0] != 42 {
		t.Errorf("expected volume 42 delegated, got %+v", fe.volumes)
	}
}
