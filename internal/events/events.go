// Package events publishes ledger change notifications after commit.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"carteira/internal/uuid"
)

// Routing keys.
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	BalancesRepaired   = "ledger.repaired"
)

// Event is a lightweight notification. ID is unique per event; consumers
// fetch full state by ResourceID.
type Event struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	UserID     string           `json:"user_id"`
	ResourceID string           `json:"resource_id"`
	Deltas     map[string]int64 `json:"deltas,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, userID, resourceID string, deltas map[string]int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		Deltas:     deltas,
		OccurredAt: time.Now().UTC(),
	}
}

// Marshal encodes the event body.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

// Publish records e, or returns Err when set.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
