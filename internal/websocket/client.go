package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send small control messages.
	maxMessageSize = 4096
)

// Client is a single websocket connection of an authenticated user.
type Client struct {
	OwnerID string
	Send    chan []byte
	hub     *Hub
	conn    *websocket.Conn
}

// Reply queues a message for this connection only.
func (c *Client) Reply(message []byte) {
	c.hub.SendTo(c, message)
}

// NewClient creates a client for conn belonging to ownerID.
func NewClient(hub *Hub, conn *websocket.Conn, ownerID string) *Client {
	return &Client{
		OwnerID: ownerID,
		Send:    make(chan []byte, 16),
		hub:     hub,
		conn:    conn,
	}
}

// ReadPump reads messages from the connection until it fails and hands
// each one to handle. It unregisters the client on exit.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", c.OwnerID).Msg("Websocket closed unexpectedly")
			}
			return
		}
		if handle != nil {
			handle(c, message)
		}
	}
}

// WritePump writes queued messages to the connection and keeps it alive
// with pings. It returns when Send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
