package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one live websocket connection bound to an authenticated user.
// A user may hold any number of concurrent clients (tabs, devices); each
// runs its own read and write pump.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
	logger *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, log *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, hub.cfg.SendBufferSize),
		logger: log.With(zap.String("user_id", userID.String())),
	}
}

// UserID returns the authenticated user behind this connection
func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Send queues a frame for delivery. A slow consumer whose buffer is full
// loses the frame rather than blocking the broadcaster; live traffic is
// best-effort and the durable stores remain the source of truth.
func (c *Client) Send(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("dropping frame for slow websocket consumer")
	}
}

// readPump consumes inbound frames until the connection dies, then
// unregisters the client. It enforces the read limit and keeps the
// connection alive via the pong deadline.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		c.hub.handleFrame(c, raw)
	}
}

// writePump drains the send queue onto the wire and pings on an interval
// shorter than the pong deadline
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
