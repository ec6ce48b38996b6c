package sse

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/readloopapp/readloop-server/internal/id"
)

const (
	// queueDepth is the shared broadcast queue size.
	queueDepth = 1000
	// clientQueueDepth is the per-connection buffer; slow clients drop
	// events past this.
	clientQueueDepth = 100
	heartbeatEvery   = 30 * time.Second
)

// Client is one live event-stream connection.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// Events with a UserID are only delivered to clients whose UserID
	// matches. Empty string means "receive all broadcasts".
	UserID string
}

// close releases both channels; the handler's select sees Done first.
func (c *Client) close() {
	close(c.Done)
	close(c.EventChan)
}

// Manager fans published events out to connected clients. Writes go
// through a single queue consumed by Start's loop.
type Manager struct {
	logger *slog.Logger
	queue  chan Event

	mu      sync.RWMutex // guards clients
	clients map[string]*Client

	// closing guards the closed flag and the queue close. Publish holds
	// it in read mode across its send so Shutdown can never close the
	// queue under an in-flight send.
	closing sync.RWMutex
	closed  bool

	loop sync.WaitGroup
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		queue:   make(chan Event, queueDepth),
		clients: make(map[string]*Client),
	}
}

// Start runs the fan-out loop until ctx is canceled. Call once, in a
// goroutine, at startup.
func (m *Manager) Start(ctx context.Context) {
	m.loop.Add(1)
	defer m.loop.Done()

	m.logger.Info("SSE manager starting")

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-m.queue:
			m.fanOut(event)
		case <-heartbeat.C:
			m.fanOut(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.dropAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, drains what is already queued, and
// waits for the fan-out loop. Draining is bounded by ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("SSE manager shutdown initiated")

	m.closing.Lock()
	m.closed = true
	close(m.queue)
	m.closing.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.fanOut(event)
		}
	}()

	select {
	case <-drained:
		m.logger.Info("SSE events drained successfully")
	case <-ctx.Done():
		m.logger.Warn("SSE event drain timeout, some events may be lost")
	}

	m.loop.Wait()
	m.logger.Info("SSE manager shutdown complete")
	return nil
}

// fanOut delivers one event to every eligible client without blocking.
func (m *Manager) fanOut(event Event) {
	stats := struct{ delivered, dropped, filtered int }{}

	m.mu.RLock()
	for _, client := range m.clients {
		// User-targeted events skip everyone else.
		if event.UserID != "" && client.UserID != event.UserID {
			stats.filtered++
			continue
		}
		select {
		case client.EventChan <- event:
			stats.delivered++
		default:
			// Full per-client buffer; the client is stuck or slow.
			stats.dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}
	m.mu.RUnlock()

	if event.Type == EventHeartbeat {
		return
	}
	m.logger.Debug("event broadcast",
		slog.String("event_type", string(event.Type)),
		slog.Group("stats",
			slog.Int("delivered", stats.delivered),
			slog.Int("filtered", stats.filtered),
			slog.Int("dropped", stats.dropped)))
}

// Connect registers a stream for userID and returns its client handle.
func (m *Manager) Connect(userID string) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		UserID:      userID,
		EventChan:   make(chan Event, clientQueueDepth),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("user_id", userID),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect deregisters a client and closes its channels. Unknown IDs
// are a no-op, so the handler can defer this unconditionally.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	total := len(m.clients)
	m.mu.Unlock()
	if !ok {
		return
	}

	client.close()

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// Publish queues an event for fan-out. Events published after Shutdown
// are discarded; a full queue drops the event rather than blocking the
// caller.
func (m *Manager) Publish(event Event) {
	m.closing.RLock()
	defer m.closing.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- event:
	default:
		m.logger.Error("SSE event channel full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// Emit queues a named event with an arbitrary payload. It satisfies the
// store's EventEmitter so transactional writes, like rating recomputes,
// can surface live updates.
func (m *Manager) Emit(event string, payload any) {
	m.Publish(Event{
		Type:      EventType(event),
		Data:      payload,
		Timestamp: time.Now(),
	})
}

// PublishToUser queues an event visible only to userID's streams.
func (m *Manager) PublishToUser(userID string, event Event) {
	event.UserID = userID
	m.Publish(event)
}

// Clients iterates over the connected clients under the read lock.
func (m *Manager) Clients() iter.Seq[*Client] {
	return func(yield func(*Client) bool) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		for _, client := range m.clients {
			if !yield(client) {
				return
			}
		}
	}
}

// ClientCount reports how many streams are connected.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) dropAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, client := range m.clients {
		client.close()
	}
	clear(m.clients)
	m.logger.Info("all SSE clients disconnected")
}
