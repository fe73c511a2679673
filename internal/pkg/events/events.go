// Package events publishes domain events such as connection changes and sent messages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event subjects, relative to the configured prefix
const (
	ConnectionRequested = "connections.requested"
	ConnectionAccepted  = "connections.accepted"
	ConnectionRejected  = "connections.rejected"
	ConnectionRemoved   = "connections.removed"
	ConnectionBlocked   = "connections.blocked"
	MessageSent         = "messages.sent"
	MessagesRead        = "messages.read"
	UserRegistered      = "users.registered"
	JobApplied          = "jobs.applied"
	StartupReviewed     = "startups.reviewed"
	EventRegistered     = "events.registered"
)

// Envelope is the JSON body of every published event
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

// Recorder is notified of every successfully published event type
type Recorder interface {
	RecordEvent(eventType string)
}

// NATSPublisher publishes events as JSON on "<prefix>.<eventType>"
type NATSPublisher struct {
	conn     *nats.Conn
	prefix   string
	recorder Recorder
	logger   zerolog.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, prefix string, recorder Recorder, logger zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("mentorbridge-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info().Str("url", url).Str("prefix", prefix).Msg("NATS publisher initialized")
	return &NATSPublisher{conn: nc, prefix: prefix, recorder: recorder, logger: logger}, nil
}

// Subject returns the full subject for an event type
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Publish sends one event
func (p *NATSPublisher) Publish(_ context.Context, eventType string, data interface{}) error {
	body, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	subject := p.Subject(eventType)
	if err := p.conn.Publish(subject, body); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	if p.recorder != nil {
		p.recorder.RecordEvent(eventType)
	}
	p.logger.Debug().Str("subject", subject).Msg("Event published")
	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// LogPublisher only logs events; used when no NATS url is configured
type LogPublisher struct {
	recorder Recorder
	logger   zerolog.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(recorder Recorder, logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{recorder: recorder, logger: logger}
}

// Publish logs the event type
func (p *LogPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	if p.recorder != nil {
		p.recorder.RecordEvent(eventType)
	}
	p.logger.Debug().Str("event", eventType).Msg("Event emitted")
	return nil
}

// Close is a no-op
func (p *LogPublisher) Close() error { return nil }

// RecordingPublisher keeps events in memory for assertions in tests
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Envelope
}

// Publish appends the event
func (p *RecordingPublisher) Publish(_ context.Context, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	return nil
}

// Close is a no-op
func (p *RecordingPublisher) Close() error { return nil }

// Types returns the recorded event types in publish order
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Envelope(nil), p.events...)
}
