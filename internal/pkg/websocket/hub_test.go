package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/app/models/dto"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessage(from, to uuid.UUID, content string) *models.Message {
	return &models.Message{
		ID:         uuid.New(),
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		Status:     models.MessageSent,
		CreatedAt:  time.Now().UTC(),
	}
}

func startHub(t *testing.T, cfg HubConfig) *Hub {
	t.Helper()
	h := NewHub(cfg, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func dial(t *testing.T, h *Hub, sub Subscription, replay ReplayFunc) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, sub, replay)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) dto.StreamEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event dto.StreamEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestServeReplaysThenStreamsWithoutDuplicates(t *testing.T) {
	h := startHub(t, HubConfig{Buffer: 8})
	alice, bob := uuid.New(), uuid.New()
	stored := newMessage(bob, alice, "missed while offline")

	conn := dial(t, h, Subscription{UserID: alice}, func(context.Context) ([]*models.Message, error) {
		return []*models.Message{stored}, nil
	})

	first := readEvent(t, conn)
	require.Equal(t, dto.StreamEventMessage, first.Type)
	assert.Equal(t, stored.ID, first.Message.ID)
	assert.Equal(t, dto.StreamEventReplay, readEvent(t, conn).Type)
	assert.Equal(t, 1, h.SubscriberCount(alice))

	live := newMessage(alice, bob, "hello")
	h.Broadcast(stored)
	h.Broadcast(live)

	next := readEvent(t, conn)
	require.Equal(t, dto.StreamEventMessage, next.Type)
	assert.Equal(t, live.ID, next.Message.ID)
}

func TestServeScopesToConversation(t *testing.T) {
	h := startHub(t, HubConfig{Buffer: 8})
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	conn := dial(t, h, Subscription{UserID: alice, With: &bob}, nil)
	assert.Equal(t, dto.StreamEventReplay, readEvent(t, conn).Type)

	h.Broadcast(newMessage(carol, alice, "other conversation"))
	wanted := newMessage(bob, alice, "from bob")
	h.Broadcast(wanted)

	event := readEvent(t, conn)
	assert.Equal(t, wanted.ID, event.Message.ID)
}

func TestShutdownClosesStreams(t *testing.T) {
	h := NewHub(HubConfig{Buffer: 8}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	alice := uuid.New()
	conn := dial(t, h, Subscription{UserID: alice}, nil)
	assert.Equal(t, dto.StreamEventReplay, readEvent(t, conn).Type)

	cancel()
	<-h.Done()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	h.Broadcast(newMessage(alice, uuid.New(), "after shutdown"))
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub(HubConfig{Buffer: 1}, zerolog.Nop())
	alice, bob := uuid.New(), uuid.New()
	client := &Client{send: make(chan *models.Message, 1), sub: Subscription{UserID: alice}}
	h.clients[alice] = map[*Client]struct{}{client: {}}

	first := newMessage(bob, alice, "one")
	h.broadcastMessage(first)
	h.broadcastMessage(newMessage(bob, alice, "two"))

	queued, ok := <-client.send
	require.True(t, ok)
	assert.Equal(t, first.ID, queued.ID)
	_, ok = <-client.send
	assert.False(t, ok)
	assert.Zero(t, h.SubscriberCount(alice))
}

func TestSubscriptionWants(t *testing.T) {
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	all := Subscription{UserID: alice}
	assert.True(t, all.Wants(newMessage(bob, alice, "")))
	assert.True(t, all.Wants(newMessage(alice, carol, "")))
	assert.False(t, all.Wants(newMessage(bob, carol, "")))

	scoped := Subscription{UserID: alice, With: &bob}
	assert.True(t, scoped.Wants(newMessage(alice, bob, "")))
	assert.False(t, scoped.Wants(newMessage(carol, alice, "")))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
