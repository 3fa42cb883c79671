package events

import (
	"context"
	"encoding/json"
	"time"
)

// Domain event names published by the application. Consumers are
// external; nothing in this process subscribes.
const (
	UserSignedUp     = "user.signed_up"
	WebsiteGenerated = "website.generated"
	WebsitePublished = "website.published"
)

// DefaultChannel is the broker channel all domain events go to.
const DefaultChannel = "growthzi.events"

// Event is the JSON envelope put on the wire.
type Event struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Backend defines the broker-agnostic publish operation.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher emits domain events to a broker channel. A nil Publisher
// or a Publisher without a backend silently drops events, so callers
// can publish unconditionally whether or not a broker is configured.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{backend: backend, channel: channel}
}

// Publish marshals and sends a domain event. Failures are returned for
// logging; they must never fail the originating request.
func (p *Publisher) Publish(ctx context.Context, name string, data any) error {
	if p == nil || p.backend == nil {
		return nil
	}
	payload, err := json.Marshal(Event{
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, payload, map[string]string{"event": name})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
