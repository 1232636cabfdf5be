// Package bus is the in-process publish/subscribe channel the admin views use
// to stay consistent without sharing state: a status-changing write publishes
// a typed event, and independent consumers (notification writer, dashboards)
// react to it.
package bus

import "sync"

type Topic string

const (
	TopicProfileUpdated        Topic = "profile.updated"
	TopicRegistrationSubmitted Topic = "registration.submitted"
	TopicReservationsUpdated   Topic = "reservations.updated"
	TopicMenuUpdated           Topic = "menu.updated"
	TopicTopUpResolved         Topic = "topup.resolved"
)

// ProfileUpdated carries the changed account fields so consumers can patch
// their copy without a refetch.
type ProfileUpdated struct {
	AccountID string
	Fields    map[string]string
}

// RegistrationSubmitted announces a new pending account registration.
type RegistrationSubmitted struct {
	AccountID string
	Name      string
}

// ReservationsUpdated carries no payload; consumers refetch.
type ReservationsUpdated struct{}

// MenuUpdated carries no payload; consumers refetch.
type MenuUpdated struct{}

// TopUpResolved announces a verification verdict for a wallet top-up.
type TopUpResolved struct {
	TopUpID   string
	AccountID string
	Approved  bool
}

type Handler func(payload any)

// Bus fans events out to subscribers synchronously. Handlers must not block;
// anything slow belongs in the handler's own goroutine.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Topic]map[int]Handler
}

func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe func.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers payload to every subscriber of the topic.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}
