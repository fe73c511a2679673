package websocket

import (
	"context"
	"net/http"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/gorilla/websocket"
)

// ReplayFunc loads the stored messages a new subscriber missed
type ReplayFunc func(ctx context.Context) ([]*models.Message, error)

// Serve upgrades the request and attaches a subscriber. The subscriber is
// registered before replay runs, so messages stored meanwhile are queued and
// de-duplicated against the replay instead of being lost.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sub Subscription, replay ReplayFunc) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("userID", sub.UserID.String()).Msg("Failed to upgrade stream connection")
		return err
	}

	client := newClient(h, conn, sub)
	if err := h.add(client); err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return err
	}

	if err := client.replay(r.Context(), replay); err != nil {
		client.logger.Error().Err(err).Msg("Stream replay failed")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "replay failed"))
		h.remove(client)
		conn.Close()
		return err
	}

	go client.writePump()
	go client.readPump()

	client.logger.Info().Str("remoteAddr", conn.RemoteAddr().String()).Msg("Stream connection established")
	return nil
}

func (c *Client) replay(ctx context.Context, replay ReplayFunc) error {
	if replay != nil {
		msgs, err := replay(ctx)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if err := c.writeEvent(dto.StreamEvent{Type: dto.StreamEventMessage, Message: m}); err != nil {
				return err
			}
			c.replayed[m.ID] = struct{}{}
		}
	}
	return c.writeEvent(dto.StreamEvent{Type: dto.StreamEventReplay})
}
