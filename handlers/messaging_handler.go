package handlers

import (
	"encoding/json"
	"fmt"

	"messenger-backend/identity"
	"messenger-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MessagingHandler struct {
	svc *services.MessengerService
}

func NewMessagingHandler(svc *services.MessengerService) *MessagingHandler {
	return &MessagingHandler{svc: svc}
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Content     string `json:"content" validate:"required"`
}

type EditMessageRequest struct {
	MessageID  string `json:"message_id" validate:"required,uuid"`
	NewContent string `json:"new_content" validate:"required"`
}

type DeleteMessageRequest struct {
	MessageID string `json:"message_id" validate:"required,uuid"`
}

func (h *MessagingHandler) FindPerson(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name query parameter is required"})
	}

	persons, err := h.svc.FindPerson(c.Context(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"persons": persons})
}

func (h *MessagingHandler) GetOldMessages(c *fiber.Ctx) error {
	subject := subjectOf(c)

	participantA, participantB, err := parseParticipants(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if subject.SubjectID != participantA && subject.SubjectID != participantB {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "subject is not a participant in this conversation"})
	}

	var cursor *uuid.UUID
	if raw := c.Query("last_message_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid last_message_id"})
		}
		cursor = &parsed
	}

	messages, err := h.svc.GetMessages(c.Context(), participantA, participantB, cursor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// DownloadHistory materializes the full conversation as a JSON attachment.
// Unbounded by design: it backs a one-shot export, not interactive paging.
func (h *MessagingHandler) DownloadHistory(c *fiber.Ctx) error {
	subject := subjectOf(c)

	participantA, participantB, err := parseParticipants(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if subject.SubjectID != participantA && subject.SubjectID != participantB {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "subject is not a participant in this conversation"})
	}

	messages, err := h.svc.GetFullHistory(c.Context(), participantA, participantB)
	if err != nil {
		return respondError(c, err)
	}

	content, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return respondError(c, err)
	}

	fileName := fmt.Sprintf("chat_history_%s_%s.json", participantA, participantB)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(content)
}

func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	subject := subjectOf(c)

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	recipientID, _ := uuid.Parse(req.RecipientID)

	if _, err := h.svc.Send(c.Context(), subject.SubjectID, recipientID, req.Content); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessagingHandler) EditMessage(c *fiber.Ctx) error {
	subject := subjectOf(c)

	var req EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	messageID, _ := uuid.Parse(req.MessageID)

	if _, err := h.svc.Edit(c.Context(), messageID, subject.SubjectID, req.NewContent); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessagingHandler) DeleteMessage(c *fiber.Ctx) error {
	subject := subjectOf(c)

	var req DeleteMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	messageID, _ := uuid.Parse(req.MessageID)

	if _, err := h.svc.Delete(c.Context(), messageID, subject.SubjectID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func subjectOf(c *fiber.Ctx) *identity.Identity {
	return c.Locals("identity").(*identity.Identity)
}

func parseParticipants(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	participantA, err := uuid.Parse(c.Query("participant_a"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid participant_a")
	}
	participantB, err := uuid.Parse(c.Query("participant_b"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid participant_b")
	}
	return participantA, participantB, nil
}
