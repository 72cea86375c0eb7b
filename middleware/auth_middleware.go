package middleware

import (
	"context"
	"strings"
	"time"

	"messenger-backend/identity"

	"github.com/gofiber/fiber/v2"
)

// Protected authenticates requests through the identity Verifier. The
// verification call is bounded by verifyTimeout and fails closed: a slow or
// unreachable auth service rejects the request, it never lets it through.
func Protected(verifier identity.Verifier, verifyTimeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "No authorization header"})
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "Invalid authorization type"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), verifyTimeout)
		ident, err := verifier.Verify(ctx, token)
		cancel()
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("identity", ident)
		return c.Next()
	}
}
