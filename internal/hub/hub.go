package hub

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
)

type Client struct {
	ID     string
	UserID string
	Send   chan []byte

	mu    sync.Mutex
	rooms map[string]bool
}

func NewClient(id, userID string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Send:   make(chan []byte, 16),
		rooms:  make(map[string]bool),
	}
}

func (c *Client) inRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[roomID]
}

// Hub fans server events out to connected relay clients. Entity lifecycle
// events go to every client; chat events go to members of the room.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) JoinRoom(client *Client, roomID string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.rooms[roomID] = true
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	delete(client.rooms, roomID)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers an envelope to every connected client.
func (h *Hub) Broadcast(env event.Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("channel", string(env.Channel)).Msg("marshal envelope")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.send(client, payload)
	}
}

// BroadcastRoom delivers an envelope to members of roomID. excludeClientID
// skips the originating connection (typing signals are not echoed).
func (h *Hub) BroadcastRoom(roomID string, env event.Envelope, excludeClientID string) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("channel", string(env.Channel)).Msg("marshal envelope")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.ID == excludeClientID || !client.inRoom(roomID) {
			continue
		}
		h.send(client, payload)
	}
}

func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		log.Warn().Str("client_id", client.ID).Msg("drop message for slow client")
	}
}
