package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks WebSocket clients per session room.
type Hub struct {
	rooms      map[string]map[*Client]bool // sessionID -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.sessionID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.sessionID] = room
			}
			room[client] = true
			n := len(room)
			h.mu.Unlock()
			close(client.joined)
			log.Printf("[WS] Client joined session %s (%d connected)", client.sessionID, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.sessionID]; ok && room[client] {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, client.sessionID)
				}
			}
			h.mu.Unlock()
			client.close()
			log.Printf("[WS] Client left session %s", client.sessionID)
		}
	}
}

// Broadcast sends msg to every client of a session. Slow clients drop frames.
func (h *Hub) Broadcast(sessionID string, msg interface{}) {
	h.mu.RLock()
	room := h.rooms[sessionID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Error marshaling message for session %s: %v", sessionID, err)
		return
	}
	for _, c := range clients {
		if !c.trySend(data) {
			log.Printf("[WS] Send buffer full for session %s, dropping message", sessionID)
		}
	}
}

// CloseRoom disconnects every client of a session.
func (h *Hub) CloseRoom(sessionID string) {
	h.mu.Lock()
	room := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	for c := range room {
		c.close()
	}
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	for _, room := range rooms {
		for c := range room {
			c.close()
		}
	}
}
