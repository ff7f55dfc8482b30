package store

import (
	"sync"

	"site-chat-backend/internal/models"
)

// Event is one change-feed item. Exactly one of the fields is set.
type Event struct {
	Message   *models.Message
	TimeEntry *models.TimeEntry
}

// Subscription is a cancellable handle on a change feed. Events arrive on
// the channel returned by Events, which is closed when the subscription
// ends. Close is idempotent and remains a no-op after the owning store has
// been torn down.
type Subscription struct {
	events  chan Event
	closeFn func()
	once    sync.Once
}

// NewSubscription creates a subscription with the given event buffer. The
// producer owns the events channel obtained via Publish and must close it
// when closeFn has been observed; closeFn is invoked at most once.
func NewSubscription(buffer int, closeFn func()) *Subscription {
	return &Subscription{
		events:  make(chan Event, buffer),
		closeFn: closeFn,
	}
}

// NewNoopSubscription returns a subscription that never delivers events.
// Closing it closes the event channel.
func NewNoopSubscription() *Subscription {
	s := &Subscription{events: make(chan Event)}
	s.closeFn = func() { close(s.events) }
	return s
}

// Events returns the channel events are delivered on.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Publish offers an event to the subscriber without blocking. It reports
// whether the event was accepted; a full buffer drops the event.
func (s *Subscription) Publish(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// CloseEvents closes the event channel. Only the producing goroutine may
// call it, after it has stopped publishing.
func (s *Subscription) CloseEvents() {
	close(s.events)
}

// Close cancels the subscription. Safe to call multiple times, including
// after the subscription has already ended.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.closeFn()
		}
	})
}
