package events

import "sync/atomic"

// Kind represents the type of domain event produced by the trip service.
type Kind string

const (
	TripCreated Kind = "trip_created"
	TripDeleted Kind = "trip_deleted"
)

// Event carries only ids; consumers read the full record from storage.
type Event struct {
	Kind   Kind
	TripID string
	UserID string
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
type Bus struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full. A nil bus drops everything.
func (b *Bus) Publish(evt Event) bool {
	if b == nil {
		return false
	}
	select {
	case b.ch <- evt:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}

// Dropped reports how many events were discarded because the buffer was full.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
