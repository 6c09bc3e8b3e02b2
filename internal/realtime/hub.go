package realtime

import (
	"sync"

	"ms-marketplace/internal/models"
)

const subscriberBuffer = 16

// Subscriber is one connected client in a room.
type Subscriber struct {
	Events chan models.RealtimeEvent
}

// Hub fans events out to room subscribers in process. Sends are non-blocking;
// a subscriber whose buffer is full misses the event rather than stalling the
// publisher. Members that join after an event never see it.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Join(roomKey string) *Subscriber {
	sub := &Subscriber{Events: make(chan models.RealtimeEvent, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomKey] == nil {
		h.rooms[roomKey] = make(map[*Subscriber]struct{})
	}
	h.rooms[roomKey][sub] = struct{}{}
	return sub
}

func (h *Hub) Leave(roomKey string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[roomKey]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, roomKey)
		}
	}
}

func (h *Hub) Publish(roomKey string, event models.RealtimeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[roomKey] {
		select {
		case sub.Events <- event:
		default:
		}
	}
}

// RoomSize reports current membership, mostly for tests and diagnostics.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}
