package websockets

import (
	"formsentry/config"
	"formsentry/internal/events"
	"formsentry/internal/logger"

	"github.com/gofiber/websocket/v2"
)

// Manager streams pipeline events to connected operator dashboards.
type Manager struct {
	eventBus *events.EventBus
	config   config.Config
	log      logger.Logger
}

func New(eventBus *events.EventBus, config config.Config) (*Manager, error) {
	log := logger.New("websockets")

	if eventBus == nil {
		return nil, log.ErrMsg("event bus is required")
	}

	return &Manager{
		eventBus: eventBus,
		config:   config,
		log:      log,
	}, nil
}

// HandleWebSocket pushes capture events to one connection until the
// client goes away.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	eventCh, unsubscribe := m.eventBus.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				log.Er("failed to write event, dropping connection", err)
				return
			}
		case <-closed:
			return
		}
	}
}
