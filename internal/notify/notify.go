// Package notify publishes sync pass outcomes to message brokers so other
// services learn when a device's backlog reached the remote store.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultSubject is the NATS subject and Kafka topic used when none is configured.
const DefaultSubject = "groweasy.sync.completed"

// Event describes one successful sync pass.
type Event struct {
	PassID      string    `json:"pass_id"`
	DeviceID    string    `json:"device_id"`
	Count       int       `json:"count"`
	CompletedAt time.Time `json:"completed_at"`
}

// Encode returns the JSON wire form of the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers sync events.
type Publisher interface {
	PublishSyncCompleted(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// PublishSyncCompleted implements Publisher.
func (Noop) PublishSyncCompleted(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// Multi fans an event out to several publishers. Every publisher is
// attempted; the errors are joined.
type Multi []Publisher

// PublishSyncCompleted implements Publisher.
func (m Multi) PublishSyncCompleted(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSyncCompleted(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Publisher.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
