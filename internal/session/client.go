package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 << 20 // scenes carry their features inline
	sendBuffer = 256
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *Session
	ID      string
	// Peer is the browser's reconnect key.
	Peer    string
	resumed bool
}

// NewClient creates the client of a new connection. A peer with a parked
// session resumes it under the session's original id.
func NewClient(hub *Hub, conn *websocket.Conn, id, peer string) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		ID:   id,
		Peer: peer,
	}
	if s := hub.resume(peer); s != nil {
		c.session, c.ID, c.resumed = s, s.ID, true
	} else {
		c.session = New(id, hub.opts)
	}
	return c
}

// ParsePeer returns the canonical form of a client-supplied uuid, or a new
// one when raw is not a uuid.
func ParsePeer(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// greet queues the welcome and, for a resumed session, the scene at its
// last view.
func (c *Client) greet() {
	payload, _ := json.Marshal(WelcomePayload{SessionID: c.ID, Peer: c.Peer, Resumed: c.resumed})
	c.Send(&Message{Type: TypeWelcome, SessionID: c.ID, Payload: payload})
	if c.resumed {
		if ready := c.session.Ready(); ready != nil {
			c.Send(ready)
		}
	}
}

// ReadPump feeds inbound messages to the client's session one at a time
// and queues the replies. It returns when the connection closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.greet()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ID)
			c.Send(c.session.errorMessage(&msg, CodeBadPayload, err.Error()))
			continue
		}
		msg.SessionID = c.ID

		for _, reply := range c.session.Handle(&msg) {
			c.Send(reply)
		}
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg. A full buffer drops it; geometry messages supersede each
// other, so the next one repairs the client.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}
