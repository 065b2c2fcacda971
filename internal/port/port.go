// Package port implements the per-client Port adapters described in
// spec.md §4.6: binaryport, wsport and httpport all consume the same
// state.Broadcaster and feed the same command.Bus, differing only in wire
// encoding and transport.
package port

import (
	"context"
	"log/slog"
	"time"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/state"
)

// Port is a running per-client adapter. Run blocks until the client
// disconnects, ctx is cancelled, or an unrecoverable I/O error occurs.
type Port interface {
	ID() string
	Run(ctx context.Context) error
}

// PushDiffs implements the send-half of a Port's lifecycle (spec.md §4.6):
// "on connect, the Port observes the current PlayerState, encodes it as an
// initial full snapshot (a diff against the empty state)... Thereafter it
// subscribes to the broadcaster; on each wake, it reads the latest snapshot
// and, if its version exceeds the last-sent version, computes
// diff(last_sent, latest) and writes it." send is called with every
// non-empty diff in order; PushDiffs returns when ctx is cancelled or send
// returns an error.
func PushDiffs(ctx context.Context, bcast *state.Broadcaster, send func(state.Diff) error) error {
	sub := bcast.Subscribe()
	defer sub.Unsubscribe()

	last := state.Empty
	sentInitial := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Wake():
		}

		latest := bcast.Latest()
		if sentInitial && latest.Version <= last.Version {
			continue
		}
		diff := state.ComputeDiff(last, latest)
		last = latest
		if !sentInitial {
			sentInitial = true
		} else if diff.IsEmpty() {
			continue
		}
		if err := send(diff); err != nil {
			return err
		}
	}
}

// Enqueue stamps cmd with portID and the current time and sends it to bus.
// Every Port's receive-loop enqueues through this so the Envelope shape is
// consistent regardless of transport.
func Enqueue(bus *command.Bus, portID string, cmd command.Command) {
	bus.Send(command.Envelope{Command: cmd, PortID: portID, Enqueued: time.Now()})
}

// LogDisconnect implements spec.md §7's "Port I/O: local to the port; log
// and close" policy uniformly across transports.
func LogDisconnect(portID string, err error) {
	if err != nil {
		slog.Info("port disconnected", "port", portID, "error", err)
	} else {
		slog.Info("port disconnected", "port", portID)
	}
}
