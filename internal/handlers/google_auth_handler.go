package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/internal-chat/backend/internal/config"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/services"
)

type GoogleAuthHandler struct {
	googleAuth *services.GoogleAuthService
	cfg        *config.Config
}

func NewGoogleAuthHandler(googleAuth *services.GoogleAuthService, cfg *config.Config) *GoogleAuthHandler {
	return &GoogleAuthHandler{googleAuth: googleAuth, cfg: cfg}
}

// AuthorizationURL hands the frontend the consent URL plus a fresh state.
func (h *GoogleAuthHandler) AuthorizationURL(c *fiber.Ctx) error {
	state := uuid.NewString()
	return c.JSON(dto.Success("", fiber.Map{
		"authUrl": h.googleAuth.AuthorizationURL(state),
		"state":   state,
	}))
}

// Callback is where Google redirects after consent; it forwards code and
// state to the frontend, which completes the exchange via Authenticate.
func (h *GoogleAuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Missing authorization code"))
	}

	q := url.Values{"code": {code}}
	if state := c.Query("state"); state != "" {
		q.Set("state", state)
	}
	return c.Redirect(h.cfg.FrontendOAuthRedirect+"?"+q.Encode(), fiber.StatusFound)
}

func (h *GoogleAuthHandler) Authenticate(c *fiber.Ctx) error {
	var req dto.GoogleAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}
	if req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Authorization code is required"))
	}

	resp, err := h.googleAuth.AuthenticateWithCode(c.Context(), req.Code, req.RedirectURI)
	if err != nil {
		return authError(c, err)
	}

	setRefreshCookie(c, h.cfg, resp.RefreshToken)
	return c.JSON(dto.Success("Google authentication successful", resp))
}

func (h *GoogleAuthHandler) IDToken(c *fiber.Ctx) error {
	var req dto.GoogleIDTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}
	if req.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("ID token is required"))
	}

	resp, err := h.googleAuth.AuthenticateWithIDToken(c.Context(), req.IDToken)
	if err != nil {
		return authError(c, err)
	}

	setRefreshCookie(c, h.cfg, resp.RefreshToken)
	return c.JSON(dto.Success("Google authentication successful", resp))
}
