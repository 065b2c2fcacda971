package binaryport

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port/wire"
	"github.com/arung-agamani/rradio/internal/state"
)

func TestPortSendsInitialSnapshotOverTheWire(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	bus := command.NewBus()
	bcast := state.NewBroadcaster()
	bcast.Publish(state.PlayerState{Phase: state.PhasePlaying, Volume: 33, Version: 1})

	p := New("test", serverConn, bus, bcast)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	payload, err := wire.ReadFrame(bufio.NewReader(clientConn))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected a non-empty initial diff payload")
	}
}

func TestPortEnqueuesDecodedCommandsFromClient(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	bus := command.NewBus()
	bcast := state.NewBroadcaster()

	p := New("test", serverConn, bus, bcast)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	payload, err := wire.EncodeCommand(command.Command{Kind: command.Stop})
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	if err := wire.WriteFrame(clientConn, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	env, ok := bus.Receive(context.Background())
	if !ok {
		t.Fatal("expected an envelope on the bus")
	}
	if env.Command.Kind != command.Stop || env.PortID != "test" {
		t.Errorf("got %+v, want Stop from port test", env)
	}
}

func TestPortClosesOnMalformedCommandFrame(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	bus := command.NewBus()
	bcast := state.NewBroadcaster()

	p := New("test", serverConn, bus, bcast)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	if err := wire.WriteFrame(clientConn, []byte("not valid json")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected Run to return an error for a malformed command frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected Port to close after a malformed command frame")
	}
}
