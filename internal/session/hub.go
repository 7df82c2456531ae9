package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	// maxParked bounds the sessions kept for reconnecting peers.
	maxParked = 64
	parkTTL   = 5 * time.Minute
)

type parkedSession struct {
	session *Session
	at      time.Time
}

// Hub tracks the live connections. Sessions never share state; the hub
// registers and closes them, and parks the session of a departed peer
// so a reconnect resumes its scene.
type Hub struct {
	opts Options

	mu         sync.RWMutex
	clients    map[string]*Client
	parked     map[string]parkedSession
	parkOrder  []string
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(opts Options) *Hub {
	return &Hub{
		opts:       opts,
		clients:    make(map[string]*Client),
		parked:     make(map[string]parkedSession),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop closes every connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Parked returns the number of sessions waiting for their peer.
func (h *Hub) Parked() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.parked)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	n := len(h.clients)
	h.mu.Unlock()

	slog.Info("client joined", "client", client.ID, "peer", client.Peer, "resumed", client.resumed, "clients", n)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	if client.Peer != "" && client.session.Scene() != nil {
		h.park(client.Peer, client.session)
	}
	n := len(h.clients)
	h.mu.Unlock()

	slog.Info("client left", "client", client.ID, "clients", n)
}

// park keeps s for peer, evicting the oldest entry when full. Callers hold
// h.mu.
func (h *Hub) park(peer string, s *Session) {
	if _, ok := h.parked[peer]; !ok {
		h.parkOrder = append(h.parkOrder, peer)
	}
	h.parked[peer] = parkedSession{session: s, at: time.Now()}
	for len(h.parked) > maxParked {
		oldest := h.parkOrder[0]
		h.parkOrder = h.parkOrder[1:]
		delete(h.parked, oldest)
		slog.Debug("parked session evicted", "peer", oldest)
	}
}

// resume hands the parked session of peer to a new connection, or nil.
func (h *Hub) resume(peer string) *Session {
	if peer == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.parked[peer]
	if !ok {
		return nil
	}
	delete(h.parked, peer)
	for i, k := range h.parkOrder {
		if k == peer {
			h.parkOrder = append(h.parkOrder[:i], h.parkOrder[i+1:]...)
			break
		}
	}
	if time.Since(p.at) > parkTTL {
		return nil
	}
	return p.session
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	// closing the connection ends the client's read loop, which returns
	// from the handler and cancels the write loop
	for id, c := range h.clients {
		if c.conn != nil {
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.clients, id)
	}
	clear(h.parked)
	h.parkOrder = nil
	slog.Info("hub stopped")
}
