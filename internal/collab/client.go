package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	maxQueued  = 256
)

// Client is one websocket connection in a track room. Outgoing messages
// wait in an outbox; a newer frame replaces any frame still waiting, so a
// slow connection skips stale frames instead of falling behind.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	DisplayName string
	TrackID     string
	ClientID    string

	mu     sync.Mutex
	outbox []*Message
	closed bool
	wake   chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, displayName, trackID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		DisplayName: displayName,
		TrackID:     trackID,
		ClientID:    clientID,
		wake:        make(chan struct{}, 1),
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	log := c.hub.log.With("client", c.ClientID, "track", c.TrackID)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			log.Debug("read error", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("invalid message", "error", err)
			c.Send(errorMessage(fmt.Errorf("invalid message: %w", err)))
			continue
		}
		msg.ClientID = c.ClientID
		msg.TrackID = c.TrackID
		c.hub.handleMessage(c, &msg)
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
		case <-c.wake:
			msgs, closed := c.take()
			for _, m := range msgs {
				writeCtx, cancel := context.WithTimeout(ctx, writeWait)
				err := wsjson.Write(writeCtx, c.conn, m)
				cancel()
				if err != nil {
					c.hub.log.Debug("write error", "error", err, "client", c.ClientID)
					return
				}
			}
			if closed {
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

// Send queues msg for the write pump. It never blocks.
func (c *Client) Send(msg *Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if msg.Type == TypeFrame {
		c.outbox = slices.DeleteFunc(c.outbox, func(m *Message) bool { return m.Type == TypeFrame })
	}
	if len(c.outbox) >= maxQueued {
		c.mu.Unlock()
		c.hub.log.Warn("client outbox full, dropping message", "client", c.ClientID, "type", msg.Type)
		return
	}
	c.outbox = append(c.outbox, msg)
	c.mu.Unlock()
	c.notify()
}

// close stops accepting messages; the write pump flushes what is queued
// and exits.
func (c *Client) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.notify()
}

func (c *Client) take() ([]*Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.outbox
	c.outbox = nil
	return out, c.closed
}

func (c *Client) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func decode(payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
