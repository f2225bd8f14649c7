package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/services"
	"github.com/internal-chat/backend/internal/store"
)

// authError maps the auth taxonomy to a 4xx envelope with a stable message.
// Anything outside the taxonomy is an infrastructure fault: logged upstream,
// surfaced as a generic 500.
func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, services.ErrGoogleAuthFailed),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionRevoked):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Error(taxonomyMessage(err)))
	case errors.Is(err, services.ErrEmailNotVerified),
		errors.Is(err, services.ErrAccountInactive):
		return c.Status(fiber.StatusForbidden).JSON(dto.Error(taxonomyMessage(err)))
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrProviderConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.Error(taxonomyMessage(err)))
	case errors.Is(err, store.ErrTokenNotFound),
		errors.Is(err, store.ErrTokenUsed),
		errors.Is(err, store.ErrTokenExpired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error(taxonomyMessage(err)))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
	}
}

// taxonomyMessage strips any wrapped provider detail so the response message
// stays stable. ErrGoogleAuthFailed wraps the underlying fault for logs only.
func taxonomyMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrInvalidCredentials,
		services.ErrEmailNotVerified,
		services.ErrAccountInactive,
		services.ErrEmailTaken,
		services.ErrUsernameTaken,
		services.ErrInvalidToken,
		services.ErrSessionExpired,
		services.ErrProviderConflict,
		services.ErrGoogleAuthFailed,
		store.ErrSessionNotFound,
		store.ErrSessionRevoked,
		store.ErrTokenNotFound,
		store.ErrTokenUsed,
		store.ErrTokenExpired,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
