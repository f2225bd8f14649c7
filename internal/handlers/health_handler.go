package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/database"
	"github.com/internal-chat/backend/internal/dto"
)

type HealthHandler struct {
	ping func() error
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{ping: database.Ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.Success("", dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}))
}
