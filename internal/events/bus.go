// Package events is the in-process signaling channel between features:
// views raise events, the app shell consumes them. Delivery is synchronous
// and stays within the process.
package events

import "sync"

// Topic identifies a cross-feature event.
type Topic string

const (
	ShowLogin             Topic = "showLogin"
	ShowRegister          Topic = "showRegister"
	ShowProfile           Topic = "showProfile"
	NavigateToChat        Topic = "navigateToChat"
	NavigateToScanHistory Topic = "navigateToScanHistory"
	NavigateToTools       Topic = "navigateToTools"
	NavigateHome          Topic = "navigateHome"
	ProfileUpdated        Topic = "profileUpdated"
)

// Payload carries the small payload objects events travel with.
type Payload struct {
	SessionID string
	ScanID    string
	UserID    string
}

// Handler consumes one event.
type Handler func(p Payload)

// Bus is a synchronous publish-subscribe bus. Handlers run in subscription
// order on the publisher's goroutine.
type Bus struct {
	mu       sync.Mutex
	handlers map[Topic][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers a handler for the topic.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers the event to every subscriber of the topic.
func (b *Bus) Publish(topic Topic, p Payload) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.Unlock()

	for _, h := range handlers {
		h(p)
	}
}
