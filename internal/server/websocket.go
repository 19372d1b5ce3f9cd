package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
	"luxury-tycoon/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Message types pushed to websocket clients.
const (
	MessageSnapshot = "snapshot"
	MessageResult   = "result"
	MessageError    = "error"
)

// Message is the envelope of every frame the server sends.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Result   *session.Result  `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type wsClient struct {
	server  *Server
	conn    *websocket.Conn
	send    chan Message
	limiter *rateLimiter
}

// serveWS upgrades the connection, pushes the current snapshot and then
// every published snapshot, and dispatches action messages from the peer.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	c := &wsClient{
		server:  s,
		conn:    conn,
		send:    make(chan Message, 16),
		limiter: newRateLimiter(s.cfg.ActionRate, s.cfg.ActionBurst, nil),
	}
	snaps := s.hub.Subscribe(models.TopicAll)

	snap := s.session.Snapshot()
	c.send <- Message{Type: MessageSnapshot, Snapshot: &snap}

	ctx, cancel := context.WithCancel(context.Background())
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	go c.writePump(ctx, snaps)
	go func() {
		defer func() {
			cancel()
			s.hub.Unsubscribe(models.TopicAll, snaps)
			s.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client disconnected")
		}()
		c.readPump(ctx)
	}()
}

// readPump dispatches action messages until the connection fails.
func (c *wsClient) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn().Err(err).Msg("WebSocket read failed")
			}
			return
		}

		msg := Message{Type: MessageError}
		action, err := DecodeAction(data)
		switch {
		case err != nil:
			msg.Error = err.Error()
		case !c.limiter.Allow():
			msg.Error = errors.ErrRateLimited.Error()
		default:
			res := c.server.session.Dispatch(ctx, action)
			msg = Message{Type: MessageResult, Result: &res}
		}

		select {
		case c.send <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *wsClient) writePump(ctx context.Context, snaps <-chan models.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}

		case snap, ok := <-snaps:
			if !ok {
				// The hub stopped.
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(Message{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) write(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Warn().Err(err).Msg("Failed to encode websocket message")
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
