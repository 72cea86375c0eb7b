package handlers

import (
	"errors"

	"messenger-backend/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// respondError maps the error taxonomy onto HTTP statuses. Authorization
// failures and not-found are deliberately kept distinct; internal causes are
// never echoed to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound:
		status = fiber.StatusNotFound
	case apperrors.CodeForbidden:
		status = fiber.StatusForbidden
	case apperrors.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	case apperrors.CodeInvalidArgument:
		status = fiber.StatusBadRequest
	case apperrors.CodeConflict:
		status = fiber.StatusConflict
	}

	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
