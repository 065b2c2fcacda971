package console

import (
	"context"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port"
)

// PortID is the fixed producer identity console-sourced commands carry on
// the bus.
const PortID = "console"

// Source delivers raw KeyEvents, e.g. from a GPIO button driver or a
// terminal keypad reader. Out of scope here per spec.md §9.
type Source interface {
	Events() <-chan KeyEvent
}

// Run reads KeyEvents from src, assembles them with a, and enqueues the
// resulting Commands onto bus until ctx is cancelled or src's channel
// closes.
func Run(ctx context.Context, src Source, a *Assembler, bus *command.Bus) {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if cmd, produced := a.Feed(ev); produced {
				port.Enqueue(bus, PortID, cmd)
			}
		}
	}
}
