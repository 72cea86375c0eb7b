package handlers

import (
	"context"
	"log"
	"time"

	"messenger-backend/identity"
	"messenger-backend/websocket"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WsHandler struct {
	hub           *websocket.Hub
	verifier      identity.Verifier
	verifyTimeout time.Duration
}

func NewWsHandler(hub *websocket.Hub, verifier identity.Verifier, verifyTimeout time.Duration) *WsHandler {
	return &WsHandler{hub: hub, verifier: verifier, verifyTimeout: verifyTimeout}
}

type wsFrame struct {
	Type         string `json:"type"`
	Token        string `json:"token,omitempty"`
	ParticipantA string `json:"participant_a,omitempty"`
	ParticipantB string `json:"participant_b,omitempty"`
}

// ServeWs runs one websocket session. Identity is verified exactly once, on
// the first frame; afterwards the client may join and leave conversation
// rooms and receives lifecycle events published by the REST mutations.
func (h *WsHandler) ServeWs(c *websocketcontrib.Conn) {
	var authMsg wsFrame
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"type": "error", "error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.verifyTimeout)
	ident, err := h.verifier.Verify(ctx, authMsg.Token)
	cancel()
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"type": "error", "error": "Invalid token"})
		c.Close()
		return
	}

	client := websocket.NewClient(ident.SubjectID, ident.Login, c)
	go client.WritePump()
	defer func() {
		log.Printf("Disconnecting client: %s", client.UserID)
		h.hub.Disconnect(client)
	}()

	client.SendJSON(fiber.Map{"type": "authenticated"})
	log.Printf("WebSocket client authenticated: %s", client.UserID)

	for {
		var frame wsFrame
		if err := c.ReadJSON(&frame); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", client.UserID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", client.UserID, err)
			}
			return
		}

		switch frame.Type {
		case "join-room":
			participantA, participantB, ok := parseFrameParticipants(client, frame)
			if !ok {
				continue
			}
			room, err := h.hub.Join(client, participantA, participantB)
			if err != nil {
				client.SendJSON(fiber.Map{"type": "error", "error": "User is not a participant"})
				continue
			}
			client.SendJSON(fiber.Map{"type": "joined", "room": room})
		case "leave-room":
			participantA, participantB, ok := parseFrameParticipants(client, frame)
			if !ok {
				continue
			}
			h.hub.Leave(client, websocket.RoomToken(participantA, participantB))
		default:
			client.SendJSON(fiber.Map{"type": "error", "error": "Unknown frame type"})
		}
	}
}

func parseFrameParticipants(client *websocket.Client, frame wsFrame) (uuid.UUID, uuid.UUID, bool) {
	participantA, errA := uuid.Parse(frame.ParticipantA)
	participantB, errB := uuid.Parse(frame.ParticipantB)
	if errA != nil || errB != nil {
		client.SendJSON(fiber.Map{"type": "error", "error": "Invalid participant id"})
		return uuid.Nil, uuid.Nil, false
	}
	return participantA, participantB, true
}
