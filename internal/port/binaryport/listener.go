package binaryport

import (
	"context"
	"log/slog"
	"net"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/state"
)

// Serve accepts connections on ln until ctx is cancelled, spawning one Port
// goroutine per connection. ln may be a TCP listener or a Unix socket
// listener (the physical console case from spec.md §4.6).
func Serve(ctx context.Context, ln net.Listener, bus *command.Bus, bcast *state.Broadcaster) {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("binaryport: accept failed", "error", err)
			return
		}
		p := New(conn.RemoteAddr().String(), conn, bus, bcast)
		go func() {
			if err := p.Run(ctx); err != nil {
				slog.Debug("binaryport: port exited", "port", p.ID(), "error", err)
			}
		}()
	}
}
