package websockets

import (
	"sync"
	"time"

	"doacin/config"
	"doacin/internal/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	EventDonationCreated   = "donation.created"
	EventDonationConfirmed = "donation.confirmed"
	EventDonationRejected  = "donation.rejected"
	EventCapibasSynced     = "capibas.synced"

	writeTimeout = 5 * time.Second
)

// Conn is the part of a websocket connection the manager uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn    Conn
	userID  string
	writeMu sync.Mutex
}

func (c *client) write(message Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(message)
}

// Manager keeps the open connections of each user and pushes events to
// them.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	closed  bool
	log     logger.Logger
}

func New(config config.Config) (*Manager, error) {
	return &Manager{
		clients: make(map[string]map[*client]struct{}),
		log:     logger.New("websockets"),
	}, nil
}

// HandleWebSocket serves a fiber websocket upgraded by the auth middleware,
// which stores the user id in the "userID" local.
func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	m.Serve(userID, c)
}

// Serve registers conn for userID and blocks until the peer goes away.
// Incoming frames are read and discarded.
func (m *Manager) Serve(userID string, conn Conn) {
	log := m.log.Function("Serve")

	if userID == "" {
		log.Warn("rejecting websocket without user")
		_ = conn.Close()
		return
	}

	c := &client{conn: conn, userID: userID}
	if !m.register(c) {
		_ = conn.Close()
		return
	}
	log.Debug("websocket connected", "userID", userID)

	defer func() {
		m.unregister(c)
		_ = conn.Close()
		log.Debug("websocket disconnected", "userID", userID)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) register(c *client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if m.clients[c.userID] == nil {
		m.clients[c.userID] = make(map[*client]struct{})
	}
	m.clients[c.userID][c] = struct{}{}
	return true
}

func (m *Manager) unregister(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conns, ok := m.clients[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.clients, c.userID)
		}
	}
}

// Notify sends an event to every connection of userID. Connections that
// fail the write are dropped.
func (m *Manager) Notify(userID, eventType string, data any) {
	if m == nil {
		return
	}

	m.mu.RLock()
	targets := make([]*client, 0, len(m.clients[userID]))
	for c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	message := Message{
		ID:        id.String(),
		Type:      eventType,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	for _, c := range targets {
		if err := c.write(message); err != nil {
			m.log.Function("Notify").Warn("dropping websocket after failed write", "userID", userID, "error", err)
			m.unregister(c)
			_ = c.conn.Close()
		}
	}
}

func (m *Manager) ConnectionCount(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID])
}

// Close disconnects everyone; Serve calls then return.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	var all []*client
	for _, conns := range m.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	m.clients = make(map[string]map[*client]struct{})
	m.mu.Unlock()

	for _, c := range all {
		_ = c.conn.Close()
	}
	return nil
}
