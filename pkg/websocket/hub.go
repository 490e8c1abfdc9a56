package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"reliefnet/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room names. Every SOS record gets a chat room; volunteers and admins also
// sit in role-wide rooms that receive new-request notifications.
const (
	roomVolunteers = "volunteers"
	roomAdmins     = "admins"
)

func sosRoom(id primitive.ObjectID) string {
	return "sos_" + id.Hex()
}

// Event is the server→client wire format.
type Event struct {
	Type      string      `json:"type"`
	SOSID     string      `json:"sos_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

const (
	EventWelcome       = "welcome"
	EventNewSOS        = "newSOS"
	EventStatusUpdated = "sosStatusUpdated"
	EventChatMessage   = "chatMessage"
)

// Hub is the process-local subscriber registry: connected sessions and the
// rooms they joined. It is rebuilt from scratch on restart; there is no
// redelivery queue or offline mailbox. A session that was not connected when
// an event fired reconciles with a full fetch from the store.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	switch client.Role {
	case "volunteer":
		h.joinRoom(client, roomVolunteers)
	case "admin":
		h.joinRoom(client, roomAdmins)
	}

	h.sendToClient(client, Event{
		Type:      EventWelcome,
		Timestamp: time.Now().Unix(),
		Data:      map[string]string{"session_id": client.SessionID},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		// A dropped connection just leaves the fan-out set, nothing more.
		for roomID, room := range h.rooms {
			if _, exists := room[client]; exists {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
	}
}

// BroadcastNewSOS notifies every connected volunteer and admin session that
// a Pending request entered the pool.
func (h *Hub) BroadcastNewSOS(sos *models.SOSRequest) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	event := Event{
		Type:      EventNewSOS,
		SOSID:     sos.ID.Hex(),
		Timestamp: time.Now().Unix(),
		Data:      sos,
	}

	seen := make(map[*Client]bool)
	for _, roomID := range []string{roomVolunteers, roomAdmins} {
		for client := range h.rooms[roomID] {
			if !seen[client] {
				seen[client] = true
				h.sendToClient(client, event)
			}
		}
	}
}

// BroadcastStatusUpdate goes to every connected session: requesters are
// anonymous and hold no room membership, so status changes fan out globally
// and clients filter by id.
func (h *Hub) BroadcastStatusUpdate(sos *models.SOSRequest) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	event := Event{
		Type:      EventStatusUpdated,
		SOSID:     sos.ID.Hex(),
		Timestamp: time.Now().Unix(),
		Data:      sos,
	}

	for client := range h.clients {
		h.sendToClient(client, event)
	}
}

// BroadcastChatMessage goes only to the sessions subscribed to the record's
// chat room.
func (h *Hub) BroadcastChatMessage(sosID primitive.ObjectID, msg models.ChatMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	event := Event{
		Type:      EventChatMessage,
		SOSID:     sosID.Hex(),
		Timestamp: msg.Timestamp.Unix(),
		Data:      msg,
	}

	for client := range h.rooms[sosRoom(sosID)] {
		h.sendToClient(client, event)
	}
}

// sendToClient delivers best effort: a session whose send buffer is full is
// evicted rather than allowed to stall everyone else. Callers hold the lock.
func (h *Hub) sendToClient(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
		for roomID, room := range h.rooms {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) JoinSOSRoom(client *Client, sosID primitive.ObjectID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.joinRoom(client, sosRoom(sosID))
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)

		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}
