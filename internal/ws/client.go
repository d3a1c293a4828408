package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pairsync/pairsync/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Time allowed for the auth handshake frame to arrive
	authWait = 10 * time.Second

	// Maximum inbound frame size
	maxMessageSize = 64 << 10

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one authenticated websocket connection. It holds only the bound
// profile's identity; display data is re-fetched per operation since another
// session may rename the profile concurrently.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	profileID   model.ProfileID
	connectedAt time.Time
	logger      *slog.Logger
}

// newClient creates a Client bound to an authenticated profile identity
func newClient(hub *Hub, conn *websocket.Conn, profileID model.ProfileID, logger *slog.Logger) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		profileID:   profileID,
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("profile_id", string(profileID))),
	}
}

// Send delivers an event to this client only
func (c *Client) Send(event string, data any) {
	c.hub.SendTo(c, event, data)
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. One writePump per client; gorilla/websocket
// permits at most one concurrent writer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// readPump reads frames and hands them to handle one at a time, preserving
// per-connection event ordering. It returns when the connection drops.
func (c *Client) readPump(handle func(Envelope)) {
	defer func() {
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn("malformed frame", slog.Any("error", err))
			continue
		}

		handle(env)
	}
}
