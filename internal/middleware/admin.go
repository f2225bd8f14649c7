package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/models"
)

// AdminRequired runs after JWTProtected and rejects tokens whose roles claim
// lacks ADMIN.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, role := range AccountRoles(c) {
			if role == models.RoleAdmin {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.Error("Admin access required"))
	}
}
