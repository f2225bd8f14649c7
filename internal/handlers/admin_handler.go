package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/store"
)

type AdminHandler struct {
	accounts  *store.AccountStore
	sessions  *store.SessionLedger
	blacklist *store.BlacklistRegistry
}

func NewAdminHandler(accounts *store.AccountStore, sessions *store.SessionLedger, blacklist *store.BlacklistRegistry) *AdminHandler {
	return &AdminHandler{accounts: accounts, sessions: sessions, blacklist: blacklist}
}

// Stats reports account, active-session and blacklist counts.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	accounts, err := h.accounts.CountAccounts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
	}
	sessions, err := h.sessions.CountActive()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
	}
	blacklisted, err := h.blacklist.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
	}

	return c.JSON(dto.Success("", dto.StatsResponse{
		Accounts:          accounts,
		ActiveSessions:    sessions,
		BlacklistedTokens: blacklisted,
	}))
}
