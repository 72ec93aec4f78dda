package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventCommentCreated  = "comment.created"
	EventReactionToggled = "reaction.toggled"
)

// Event is delivered to subscribers after a successful state change.
type Event struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Notifier fans events out to registered subscribers, synchronously and
// in registration order. Delivery is fire-and-forget: subscribers own
// their error handling.
type Notifier struct {
	mu          sync.RWMutex
	subscribers []func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Subscribe(fn func(Event)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, fn)
}

// Emit is a no-op on a nil Notifier so services can be wired without one.
func (n *Notifier) Emit(name string, payload interface{}) {
	if n == nil {
		return
	}

	event := Event{
		ID:      uuid.New(),
		Name:    name,
		Payload: payload,
		At:      time.Now(),
	}

	n.mu.RLock()
	subscribers := make([]func(Event), len(n.subscribers))
	copy(subscribers, n.subscribers)
	n.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
