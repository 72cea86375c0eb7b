package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"messenger-backend/apperrors"
	"messenger-backend/models"

	"github.com/google/uuid"
)

// Hub routes lifecycle events to the sessions currently joined to a
// conversation's room. Rooms hold no durable state: they appear on first join
// and disappear when the last member leaves. Delivery is best-effort and
// at-most-once per session; history catch-up is the job of the REST page
// endpoint, not the hub.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// RoomToken names the broadcast room of a conversation: both ids sorted into
// canonical order and joined with "_", so join(A,B) and join(B,A) address the
// same room.
func RoomToken(userA, userB uuid.UUID) string {
	a, b := userA.String(), userB.String()
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// Join adds the client to the conversation's room. The client's verified
// identity must be one of the two participants.
func (h *Hub) Join(client *Client, participantA, participantB uuid.UUID) (string, error) {
	if client.UserID != participantA && client.UserID != participantB {
		return "", apperrors.ErrNotParticipant
	}

	token := RoomToken(participantA, participantB)
	h.mu.Lock()
	r, ok := h.rooms[token]
	if !ok {
		r = &room{clients: make(map[*Client]struct{})}
		h.rooms[token] = r
	}
	r.mu.Lock()
	r.clients[client] = struct{}{}
	r.mu.Unlock()
	h.mu.Unlock()

	client.trackRoom(token)
	return token, nil
}

// Leave removes the client from a room, dropping the room once empty.
func (h *Hub) Leave(client *Client, token string) {
	h.mu.Lock()
	if r, ok := h.rooms[token]; ok {
		r.mu.Lock()
		delete(r.clients, client)
		if len(r.clients) == 0 {
			delete(h.rooms, token)
		}
		r.mu.Unlock()
	}
	h.mu.Unlock()

	client.untrackRoom(token)
}

// Disconnect removes the client from every room it joined and closes its
// outbound queue. Safe to call more than once.
func (h *Hub) Disconnect(client *Client) {
	for _, token := range client.joinedRooms() {
		h.Leave(client, token)
	}
	client.close()
}

// MemberCount reports how many sessions are currently joined to a room.
func (h *Hub) MemberCount(token string) int {
	h.mu.RLock()
	r, ok := h.rooms[token]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (h *Hub) PublishCreated(message models.Message) {
	h.broadcast(RoomToken(message.SenderID, message.RecipientID), event{
		Type:    "new-message",
		Message: message,
	})
}

func (h *Hub) PublishEdited(message models.Message) {
	h.broadcast(RoomToken(message.SenderID, message.RecipientID), event{
		Type:    "edit-message",
		Message: message,
	})
}

func (h *Hub) PublishDeleted(messageID, sender, recipient uuid.UUID) {
	h.broadcast(RoomToken(sender, recipient), event{
		Type: "delete-message",
		Message: deletedPayload{
			ID:        messageID,
			Sender:    sender,
			Recipient: recipient,
		},
	})
}

type event struct {
	Type    string `json:"type"`
	Message any    `json:"message"`
}

type deletedPayload struct {
	ID        uuid.UUID `json:"id"`
	Sender    uuid.UUID `json:"sender"`
	Recipient uuid.UUID `json:"recipient"`
}

// broadcast fans an event out to every member of the room. A missing or empty
// room is a no-op: the peer may simply be offline. Only the room's own lock is
// held during fan-out, so unrelated conversations never contend.
func (h *Hub) broadcast(token string, evt event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", evt.Type, err)
		return
	}

	h.mu.RLock()
	r, ok := h.rooms[token]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for client := range r.clients {
		if !client.enqueue(data) {
			log.Printf("Dropping %s event for client %s: send buffer full or closed", evt.Type, client.UserID)
		}
	}
}
