package dashboard

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replay/stream"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count never reached %d, have %d", n, h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	defer h.Close()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, h, 1)

	h.Broadcast(Frame{Type: "progress", Data: map[string]int{"current": 5, "total": 10}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, "progress", frame.Type)
}

func TestHubMultipleClients(t *testing.T) {
	h := NewHub()
	defer h.Close()
	srv := httptest.NewServer(h)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, h, 2)

	h.Broadcast(Frame{Type: "bar"})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), `"type":"bar"`)
	}
}

func TestHubClientDisconnect(t *testing.T) {
	h := NewHub()
	defer h.Close()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)

	// Broadcasting with no clients is a no-op.
	h.Broadcast(Frame{Type: "bar"})
}

func TestHubStream(t *testing.T) {
	h := NewHub()
	defer h.Close()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, h, 1)

	bus := stream.NewBus()
	sub := bus.Subscribe(16)
	done := make(chan struct{})
	go func() {
		h.Stream(sub)
		close(done)
	}()

	bus.Publish(stream.Event{Type: stream.EventProgress, Payload: stream.Progress{Current: 1, Total: 2}})
	bus.Close()
	<-done

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(msg, &frame))
	assert.Equal(t, string(stream.EventProgress), frame.Type)
}
