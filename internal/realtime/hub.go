package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Mirror receives a copy of every room broadcast. Publish must not block.
type Mirror interface {
	Publish(code, event string, payload []byte)
}

// Hub tracks live connections and the room each one is subscribed to, and
// fans room events out to them.
type Hub struct {
	clients map[string]*Client            // connID -> client
	rooms   map[string]map[string]*Client // code -> connID -> client
	mu      sync.RWMutex
	logger  *zap.Logger
	mirror  Mirror
}

// NewHub creates a new WebSocket hub. mirror may be nil.
func NewHub(logger *zap.Logger, mirror Mirror) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		logger:  logger,
		mirror:  mirror,
	}
}

// Register makes a connection addressable by its id.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID))
}

// Unregister forgets a connection and drops every room subscription it holds.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	for code, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// Subscribe adds a registered connection to a room's audience.
func (h *Hub) Subscribe(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*Client)
	}
	h.rooms[code][connID] = c
}

// Unsubscribe removes a connection from a room's audience.
func (h *Hub) Unsubscribe(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.rooms[code]; ok {
		delete(m, connID)
		if len(m) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Broadcast sends an event to every connection subscribed to code and hands
// a copy to the mirror.
func (h *Hub) Broadcast(code, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("broadcast marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	for _, c := range h.rooms[code] {
		c.enqueue(msg)
	}
	h.mu.RUnlock()

	if h.mirror != nil {
		h.mirror.Publish(code, event, data)
	}
}

// SendToClient sends a message to a single connection.
func (h *Hub) SendToClient(connID string, msg WSMessage) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(msg)
}

// AudienceCount returns the number of connections subscribed to code.
func (h *Hub) AudienceCount(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
