// Package wsbridge streams a session's bus.Event traffic to WebSocket
// clients: one broadcast channel plus register/unregister client sets,
// fanning out the game engine's ActionExecuted/TurnPrepared/ProofGenerated
// event taxonomy.
package wsbridge

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ocx/roguevm/internal/workers/bus"
)

// Frame is the JSON shape written to each WebSocket client — a thin,
// wire-safe projection of bus.Event (Delta/Err don't survive JSON
// encoding as-is, so the bridge flattens Err into a string and leaves
// Delta out).
type Frame struct {
	Kind        string `json:"kind"`
	SessionID   string `json:"session_id"`
	Nonce       uint64 `json:"nonce"`
	Actor       uint32 `json:"actor,omitempty"`
	Error       string `json:"error,omitempty"`
	BatchStatus string `json:"batch_status,omitempty"`
}

func toFrame(e *bus.Event) Frame {
	f := Frame{
		Kind:        string(e.Kind),
		SessionID:   e.SessionID,
		Nonce:       uint64(e.Nonce),
		Actor:       uint32(e.Actor),
		BatchStatus: e.BatchStatus,
	}
	if e.Err != nil {
		f.Error = e.Err.Error()
	}
	return f
}

// Hub fans a session's bus events out to every connected WebSocket
// client for that session.
type Hub struct {
	sessionID  string
	bus        *bus.Bus
	busCh      chan *bus.Event
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	stop       chan struct{}
}

// NewHub subscribes to b and starts the hub's run loop for sessionID.
func NewHub(sessionID string, b *bus.Bus) *Hub {
	h := &Hub{
		sessionID:  sessionID,
		bus:        b,
		busCh:      b.Subscribe(),
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
			}
			h.mu.Unlock()
			h.bus.Unsubscribe(h.busCh)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}
			h.mu.Unlock()

		case e := <-h.busCh:
			if e.SessionID != h.sessionID {
				continue
			}
			frame := toFrame(e)
			h.mu.RLock()
			for c := range h.clients {
				if err := c.WriteJSON(frame); err != nil {
					slog.Warn("wsbridge write failed, dropping client", "err", err)
					c.Close()
					delete(h.clients, c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop closes every client connection and unsubscribes from the bus.
func (h *Hub) Stop() { close(h.stop) }

// ServeHTTP upgrades the request to a WebSocket and registers it with
// the hub. Clients are read-only: any inbound message is discarded, and
// the read loop exists only to detect disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("wsbridge upgrade failed", "err", err)
		return
	}
	h.register <- conn
	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
