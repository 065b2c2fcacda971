package wsport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arung-agamani/rradio/internal/command"
	"github.com/arung-agamani/rradio/internal/port/wire"
	"github.com/arung-agamani/rradio/internal/state"
)

func startTestServer(t *testing.T, bus *command.Bus, bcast *state.Broadcaster) (string, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		p, err := Accept("test", w, r, bus, bcast)
		if err != nil {
			return
		}
		p.Run(context.Background())
	})
	srv := httptest.NewServer(mux)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return url, srv.Close
}

func TestWsPortSendsInitialSnapshotAndEnqueuesCommands(t *testing.T) {
	bus := command.NewBus()
	bcast := state.NewBroadcaster()
	bcast.Publish(state.PlayerState{Phase: state.PhasePlaying, Volume: 61, Version: 1})

	url, closeSrv := startTestServer(t, bus, bcast)
	defer closeSrv()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected a non-empty initial diff payload")
	}

	cmdPayload, err := wire.EncodeCommand(command.Command{Kind: command.NextTrack})
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, cmdPayload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	env, ok := bus.Receive(ctx)
	if !ok {
		t.Fatal("expected an envelope on the bus")
	}
	if env.Command.Kind != command.NextTrack {
		t.Errorf("got %+v, want NextTrack", env)
	}
}
