package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Manager owns the websocket upgrade and the per-address subscriber lists
// used to push portfolio updates.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[string]map[uuid.UUID]*wsClient
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func NewWebSocketManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[string]map[uuid.UUID]*wsClient),
	}
}

// Upgrade switches the HTTP connection to the websocket protocol.
func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

// Subscribe registers a connection for updates on the given address and
// returns the client id used to unsubscribe.
func (m *Manager) Subscribe(address string, conn *websocket.Conn) uuid.UUID {
	id := uuid.New()

	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.subscribers[address]
	if !ok {
		clients = make(map[uuid.UUID]*wsClient)
		m.subscribers[address] = clients
	}
	clients[id] = &wsClient{conn: conn}

	m.logger.Debug("WebSocket subscriber added", "address", address, "client_id", id)
	return id
}

// Unsubscribe drops a subscriber. The connection itself is closed by the
// caller.
func (m *Manager) Unsubscribe(address string, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, ok := m.subscribers[address]
	if !ok {
		return
	}
	delete(clients, id)
	if len(clients) == 0 {
		delete(m.subscribers, address)
	}

	m.logger.Debug("WebSocket subscriber removed", "address", address, "client_id", id)
}

// Send pushes a payload to a single subscriber. Like Broadcast it goes
// through the client's write lock, so it is safe to call while the
// refresher is broadcasting to the same connection. Unknown clients are a
// no-op.
func (m *Manager) Send(address string, id uuid.UUID, payload any) error {
	m.mu.RLock()
	client := m.subscribers[address][id]
	m.mu.RUnlock()

	if client == nil {
		return nil
	}
	return client.writeJSON(payload)
}

// Broadcast pushes a payload to every subscriber of the address. Write
// failures are logged and the offending client is skipped; the read loop in
// the handler notices the dead connection and unsubscribes it.
func (m *Manager) Broadcast(address string, payload any) {
	m.mu.RLock()
	clients := make([]*wsClient, 0, len(m.subscribers[address]))
	for _, c := range m.subscribers[address] {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(payload); err != nil {
			m.logger.Warn("Failed to push update to subscriber", "address", address, "error", err)
		}
	}
}

// SubscriberCount reports how many clients are watching an address.
func (m *Manager) SubscriberCount(address string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[address])
}
