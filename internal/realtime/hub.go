package realtime

import (
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active subscriptions per keyspace and broadcasts key events
// (set, deleted, evicted) to them.
type Hub struct {
	mu                sync.RWMutex
	keyspaceToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			keyspaceToClients: make(map[string]map[Client]struct{}),
		}
	})
	return hubInstance
}

// Subscribe adds a client under a keyspace name.
func (h *Hub) Subscribe(keyspace string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.keyspaceToClients[keyspace]; !ok {
		h.keyspaceToClients[keyspace] = make(map[Client]struct{})
	}
	h.keyspaceToClients[keyspace][client] = struct{}{}
}

// Unsubscribe removes a client; if the keyspace has no more clients, cleans up its map.
func (h *Hub) Unsubscribe(keyspace string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.keyspaceToClients[keyspace]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.keyspaceToClients, keyspace)
		}
	}
}

// Broadcast sends a message to all subscribers of a keyspace.
func (h *Hub) Broadcast(keyspace string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.keyspaceToClients[keyspace]
	for c := range clients {
		if ok := c.Send(message); !ok {
			// client write failed; let the handler clean it up on its side
		}
	}
}
