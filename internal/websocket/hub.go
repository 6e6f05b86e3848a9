package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a change notification pushed to an owner's connected clients.
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Hub tracks connected clients per owner. Messages only ever reach the
// clients of the owner they are published for.
type Hub struct {
	mu      sync.RWMutex
	owners  map[string]map[*Client]struct{}
	count   int
	onCount func(int)
	logger  *slog.Logger
}

// NewHub creates a new Hub. onCount, when non-nil, is called with the total
// number of clients after every change.
func NewHub(logger *slog.Logger, onCount func(int)) *Hub {
	return &Hub{
		owners:  make(map[string]map[*Client]struct{}),
		onCount: onCount,
		logger:  logger,
	}
}

// Register adds a client to its owner's set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.owners[c.ownerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.owners[c.ownerID] = set
	}
	set[c] = struct{}{}
	h.count++
	n := h.count
	h.mu.Unlock()

	h.report(n)
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set := h.owners[c.ownerID]
	if _, ok := set[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.owners, c.ownerID)
	}
	close(c.send)
	h.count--
	n := h.count
	h.mu.Unlock()

	h.report(n)
}

func (h *Hub) report(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// Publish sends msg to every client of ownerID.
func (h *Hub) Publish(ownerID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.owners[ownerID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropped message for slow client", "owner", ownerID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// OwnerClientCount returns the number of clients connected for ownerID.
func (h *Hub) OwnerClientCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.owners[ownerID])
}
