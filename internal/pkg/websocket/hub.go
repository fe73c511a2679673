package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ErrHubClosed is returned when a subscriber arrives after shutdown
var ErrHubClosed = errors.New("stream hub is closed")

// HubConfig configures a Hub
type HubConfig struct {
	// Buffer is the per-subscriber queue length; a full queue drops the subscriber
	Buffer int
	// AllowedOrigins restricts websocket origins; empty allows any
	AllowedOrigins []string
	// Subscribers and Dropped are optional collectors
	Subscribers prometheus.Gauge
	Dropped     prometheus.Counter
}

// Hub fans stored messages out to the stream subscribers of both participants
type Hub struct {
	// Registered clients keyed by user ID
	clients map[uuid.UUID]map[*Client]struct{}
	mu      sync.RWMutex

	broadcast  chan *models.Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	buffer      int
	upgrader    websocket.Upgrader
	subscribers prometheus.Gauge
	dropped     prometheus.Counter

	logger zerolog.Logger
}

// NewHub creates a new Hub; call Run to start it
func NewHub(cfg HubConfig, logger zerolog.Logger) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	h := &Hub{
		clients:     make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:   make(chan *models.Message, cfg.Buffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		buffer:      cfg.Buffer,
		subscribers: cfg.Subscribers,
		dropped:     cfg.Dropped,
		logger:      logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run serializes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info().Msg("Stream hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.sub.UserID
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	if h.subscribers != nil {
		h.subscribers.Inc()
	}

	h.logger.Info().
		Str("userID", userID.String()).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Stream subscriber registered")
}

// unregisterClient removes a client and closes its queue
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) bool {
	userID := client.sub.UserID
	clients, ok := h.clients[userID]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
	if h.subscribers != nil {
		h.subscribers.Dec()
	}
	h.logger.Info().Str("userID", userID.String()).Msg("Stream subscriber unregistered")
	return true
}

// broadcastMessage queues the message for every interested subscriber of
// the sender and the receiver. Subscribers with a full queue are dropped.
func (h *Hub) broadcastMessage(message *models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, userID := range []uuid.UUID{message.SenderID, message.ReceiverID} {
		for client := range h.clients[userID] {
			if !client.sub.Wants(message) {
				continue
			}
			select {
			case client.send <- message:
			default:
				slow = append(slow, client)
			}
		}
	}

	for _, client := range slow {
		if h.removeLocked(client) {
			if h.dropped != nil {
				h.dropped.Inc()
			}
			h.logger.Warn().
				Str("userID", client.sub.UserID.String()).
				Int("buffer", h.buffer).
				Msg("Dropped slow stream subscriber")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Broadcast hands a stored message to the hub. It never blocks after shutdown.
func (h *Hub) Broadcast(message *models.Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) add(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SubscriberCount returns the number of open streams of a user
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
