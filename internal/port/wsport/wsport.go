// Package wsport carries the same JSON Command/PlayerStateDiff payloads as
// binaryport over a websocket connection, one payload per binary message
// and without binaryport's 4-byte length prefix. Grounded on the retrieved pack's
// go-radio-v2 and grimnir_radio manifests, both of which reach for
// gorilla/websocket for exactly this radio-control-plane fan-out.
package wsport

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port"
	"github.com/arung-agamani/rradio/internal/port/wire"
	"github.com/arung-agamani/rradio/internal/state"
)

// Upgrader is shared across connections; CheckOrigin is permissive because
// spec.md's Non-goals explicitly exclude authentication and this is a LAN
// control-plane appliance, not a public service.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Port is one connected websocket client.
type Port struct {
	id    string
	conn  *websocket.Conn
	bus   *command.Bus
	bcast *state.Broadcaster
}

// New wraps an already-upgraded websocket connection.
func New(id string, conn *websocket.Conn, bus *command.Bus, bcast *state.Broadcaster) *Port {
	return &Port{id: id, conn: conn, bus: bus, bcast: bcast}
}

// Accept upgrades an incoming HTTP request to a websocket Port. id
// identifies the client in logs.
func Accept(id string, w http.ResponseWriter, r *http.Request, bus *command.Bus, bcast *state.Broadcaster) (*Port, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return New(id, conn, bus, bcast), nil
}

func (p *Port) ID() string { return p.id }

func (p *Port) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- p.sendLoop(runCtx) }()
	go func() { errCh <- p.receiveLoop(runCtx) }()

	err := <-errCh
	cancel()
	// Closing unblocks whichever half is still parked in a blocking
	// ReadMessage/WriteMessage; ctx cancellation alone cannot interrupt those.
	p.conn.Close()
	<-errCh
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	port.LogDisconnect(p.id, err)
	return err
}

// sendLoop pushes one websocket binary message per diff. A websocket
// message already carries its own length/boundary, so unlike binaryport no
// additional length prefix is written within the message — only the JSON
// diff payload itself.
func (p *Port) sendLoop(ctx context.Context) error {
	return port.PushDiffs(ctx, p.bcast, func(d state.Diff) error {
		payload, err := wire.EncodeDiff(d)
		if err != nil {
			return err
		}
		return p.conn.WriteMessage(websocket.BinaryMessage, payload)
	})
}

func (p *Port) receiveLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, payload, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
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
