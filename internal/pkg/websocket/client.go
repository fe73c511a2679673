package websocket

import (
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 4 * 1024
)

// Subscription selects which messages a stream receives
type Subscription struct {
	UserID uuid.UUID
	// With scopes the stream to one conversation when set
	With *uuid.UUID
}

// Wants reports whether the message belongs on this stream
func (s Subscription) Wants(m *models.Message) bool {
	if s.With != nil {
		return m.Between(s.UserID, *s.With)
	}
	return m.SenderID == s.UserID || m.ReceiverID == s.UserID
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan *models.Message

	sub Subscription

	// IDs already written during replay, skipped when they arrive live
	replayed map[uuid.UUID]struct{}

	logger zerolog.Logger
}

func newClient(h *Hub, conn *websocket.Conn, sub Subscription) *Client {
	return &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan *models.Message, h.buffer),
		sub:      sub,
		replayed: make(map[uuid.UUID]struct{}),
		logger:   h.logger.With().Str("userID", sub.UserID.String()).Logger(),
	}
}

func (c *Client) writeEvent(event dto.StreamEvent) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(event)
}

// readPump discards client frames and detects closed connections
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected stream close")
			} else {
				c.logger.Debug().Err(err).Msg("Stream read ended")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// The hub closed the queue: shutdown or slow subscriber
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed, reconnect with since"))
				return
			}
			if _, dup := c.replayed[message.ID]; dup {
				delete(c.replayed, message.ID)
				continue
			}
			if err := c.writeEvent(dto.StreamEvent{Type: dto.StreamEventMessage, Message: message}); err != nil {
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
