// Package dashboard pushes replay events to websocket subscribers so an
// external viewer can follow a run live.
package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/replay/stream"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 256
	maxMessageSize = 512
)

// Frame is the JSON envelope sent to websocket clients.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans event frames out to connected websocket clients. A client that
// cannot keep up is disconnected; the engine is never blocked.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP upgrades the request to a websocket and streams frames until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards inbound messages; the dashboard protocol is push-only.
// It exists to notice closed connections promptly.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast marshals the frame once and queues it to every client. Clients
// whose queue is full are dropped.
func (h *Hub) Broadcast(frame Frame) {
	msg, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.drop(c)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}

// Stream converts bus events into frames and broadcasts them until the
// subscription closes. Run it on its own goroutine.
func (h *Hub) Stream(sub *stream.Subscription) {
	for ev := range sub.Events() {
		h.Broadcast(Frame{Type: string(ev.Type), Data: ev.Payload})
	}
}
