package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"github.com/ternarybob/concord/internal/models"
	"golang.org/x/time/rate"
)

// eventStreamID is the bus recipient id the stream consumes from.
const eventStreamID = "event_stream"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// EventStream fans debate events from the message bus out to websocket
// clients. Broadcasts are throttled so a burst of events cannot flood
// slow clients.
type EventStream struct {
	bus      interfaces.MessageBus
	logger   arbor.ILogger
	throttle *rate.Limiter

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEventStream creates a stopped event stream over the bus.
func NewEventStream(messageBus interfaces.MessageBus, logger arbor.ILogger) *EventStream {
	return &EventStream{
		bus:      messageBus,
		logger:   logger,
		throttle: rate.NewLimiter(rate.Limit(20), 50),
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Start subscribes to debate events and launches the pump.
func (e *EventStream) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	e.bus.Subscribe(eventStreamID, []string{models.MessageTypeDebateEvent})

	common.SafeGo(e.logger, "event-stream", func() {
		defer close(e.done)
		e.pump(ctx)
	})
}

// Stop halts the pump and closes every client connection.
func (e *EventStream) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done

	e.bus.Unsubscribe(eventStreamID, nil)

	e.mu.Lock()
	for conn := range e.clients {
		conn.Close()
	}
	e.clients = make(map[*websocket.Conn]*sync.Mutex)
	e.mu.Unlock()
}

// pump drains the event queue and broadcasts until the context is done.
func (e *EventStream) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := e.bus.Receive(ctx, eventStreamID, time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Bus not running yet; back off and retry.
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		if !e.throttle.Allow() {
			e.logger.Debug().
				Str("message_id", msg.ID).
				Msg("Event dropped by throttle")
			continue
		}

		e.broadcast(msg)
	}
}

// broadcast writes one event to every connected client. Write failures
// drop the client.
func (e *EventStream) broadcast(msg *models.AgentMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to encode event")
		return
	}

	e.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(e.clients))
	for conn, mu := range e.clients {
		conns[conn] = mu
	}
	e.mu.Unlock()

	for conn, mu := range conns {
		mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		mu.Unlock()

		if err != nil {
			e.removeClient(conn)
		}
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (e *EventStream) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	e.mu.Lock()
	e.clients[conn] = &sync.Mutex{}
	count := len(e.clients)
	e.mu.Unlock()

	e.logger.Debug().
		Int("clients", count).
		Str("remote", r.RemoteAddr).
		Msg("WebSocket client connected")

	// Reader loop exists only to observe the close; inbound messages are
	// discarded.
	common.SafeGo(e.logger, "ws-reader", func() {
		defer e.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

func (e *EventStream) removeClient(conn *websocket.Conn) {
	e.mu.Lock()
	if _, ok := e.clients[conn]; ok {
		delete(e.clients, conn)
		conn.Close()
	}
	e.mu.Unlock()
}
