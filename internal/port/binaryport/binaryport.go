// Package binaryport implements a Port over a raw net.Conn (TCP, or a Unix
// socket for the physical console), carrying length-prefixed binary frames
// per spec.md §6. Framing is grounded on the teacher's stdout/stderr pipe
// draining goroutines in internal/ffmpeg.Encoder.Stream, generalized from
// "drain a subprocess pipe into log lines" to "drain a socket into decoded
// Commands and encode PlayerStateDiffs back onto it."
package binaryport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port"
	"github.com/arung-agamani/rradio/internal/port/wire"
	"github.com/arung-agamani/rradio/internal/state"
)

// Port is one connected binary client.
type Port struct {
	id    string
	conn  net.Conn
	bus   *command.Bus
	bcast *state.Broadcaster
}

// New wraps an accepted connection as a Port. id identifies the client in
// logs (typically its remote address).
func New(id string, conn net.Conn, bus *command.Bus, bcast *state.Broadcaster) *Port {
	return &Port{id: id, conn: conn, bus: bus, bcast: bcast}
}

func (p *Port) ID() string { return p.id }

// Run drives both halves of the connection until ctx is cancelled or either
// half errors; an error on either half terminates the whole Port (spec.md
// §4.6: "any I/O error terminates the Port task; the Controller is
// unaffected").
func (p *Port) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	go func() {
		errCh <- p.sendLoop(runCtx)
	}()
	go func() {
		errCh <- p.receiveLoop(runCtx)
	}()

	err := <-errCh
	cancel()
	// Closing unblocks whichever half is still parked in a blocking
	// conn.Read/Write; ctx cancellation alone cannot interrupt those.
	p.conn.Close()
	<-errCh
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	port.LogDisconnect(p.id, err)
	return err
}

func (p *Port) sendLoop(ctx context.Context) error {
	w := bufio.NewWriter(p.conn)
	return port.PushDiffs(ctx, p.bcast, func(d state.Diff) error {
		payload, err := wire.EncodeDiff(d)
		if err != nil {
			return err
		}
		if err := wire.WriteFrame(w, payload); err != nil {
			return err
		}
		return w.Flush()
	})
}

func (p *Port) receiveLoop(ctx context.Context) error {
	r := bufio.NewReader(p.conn)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		payload, err := wire.ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		cmd, err := wire.DecodeCommand(payload)
		if err != nil {
			// spec.md §4.6: "Decode errors close that Port only."
			return err
		}
		port.Enqueue(p.bus, p.id, cmd)
	}
}
