package events

import (
	"testing"

	. "formsentry/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{Type: EventCaptureComplete, UID: "uid-1", FormType: FormTypeCF7})

	event := <-ch
	assert.Equal(t, EventCaptureComplete, event.Type)
	assert.Equal(t, "uid-1", event.UID)
	assert.False(t, event.Time.IsZero(), "publish must stamp the event time")
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := New()
	defer bus.Close()

	_, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Nobody reads; the buffer fills and further publishes drop.
	for i := 0; i < 100; i++ {
		bus.Publish(Event{Type: EventCaptureComplete})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe is a no-op.
	unsubscribe()
}

func TestPublishAfterCloseIsNoOp(t *testing.T) {
	bus := New()

	ch, _ := bus.Subscribe()
	assert.NoError(t, bus.Close())

	_, open := <-ch
	assert.False(t, open)

	bus.Publish(Event{Type: EventSessionCreated})
	assert.NoError(t, bus.Close())
}
