package events

import (
	"formsentry/internal/logger"
	. "formsentry/internal/models"
	"sync"
	"time"
)

const (
	EventCaptureComplete = "capture.complete"
	EventSessionCreated  = "session.created"
)

type Event struct {
	Type     string    `json:"type"`
	UID      string    `json:"uid,omitempty"`
	FormID   string    `json:"formId,omitempty"`
	FormType FormType  `json:"formType,omitempty"`
	Time     time.Time `json:"time"`
}

// EventBus fans pipeline events out to subscribers (the websocket feed).
// Publishes never block: a slow subscriber drops events rather than
// stalling the capture pipeline.
type EventBus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
	log         logger.Logger
}

func New() *EventBus {
	return &EventBus{
		subscribers: map[int]chan Event{},
		log:         logger.New("EventBus"),
	}
}

func (b *EventBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

func (b *EventBus) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.log.Function("Publish").Warn("subscriber lagging, dropping event",
				"eventType", event.Type)
		}
	}
}

func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
	return nil
}
