package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/middleware"
	"github.com/internal-chat/backend/internal/services"
)

type UserHandler struct {
	accounts services.AccountStore
}

func NewUserHandler(accounts services.AccountStore) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Me returns the caller's own account and profile.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	email := middleware.AccountEmail(c)
	if email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized"))
	}

	account, err := h.accounts.FindByEmail(email)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.Error("Account not found"))
	}
	return c.JSON(dto.Success("", dto.NewUserInfo(account)))
}
