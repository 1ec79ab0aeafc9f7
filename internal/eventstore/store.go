package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving pass events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, passID, eventType string, payload []byte, metadata map[string]string) error

	// GetByPassID retrieves all events for a specific generation pass.
	GetByPassID(ctx context.Context, passID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

// Record appends a typed event to the store.
func Record(ctx context.Context, store Store, e Event) error {
	return store.Append(ctx, e.PassID(), e.Type(), e.Payload(), e.Metadata())
}
