package handlers

import (
	"crypto/subtle"
	"log"

	config "messenger-backend/configs"
	"messenger-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AccountHandler struct {
	svc *services.MessengerService
}

func NewAccountHandler(svc *services.MessengerService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// PurgeUserMessages is the account-deletion hook the identity service calls
// when an account is removed. Delivery is at-least-once, so repeat calls must
// succeed; the predicate delete underneath makes that free.
func (h *AccountHandler) PurgeUserMessages(c *fiber.Ctx) error {
	apiKey := config.Config("INTERNAL_API_KEY")
	provided := c.Get("X-Internal-Api-Key")
	if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(provided)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid internal api key"})
	}

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := h.svc.PurgeUserMessages(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	log.Printf("Purged all messages for user %s", userID)
	return c.SendStatus(fiber.StatusNoContent)
}
