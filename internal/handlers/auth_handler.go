package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/config"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}
	if req.Email == "" || len(req.Password) < 8 || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Email, username and a password of at least 8 characters are required"))
	}

	info, err := h.authService.Register(&req)
	if err != nil {
		return authError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Success(
		"Registration successful. Please check your email to verify your account.",
		dto.AuthResponse{User: info},
	))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}

	resp, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return authError(c, err)
	}

	setRefreshCookie(c, h.cfg, resp.RefreshToken)
	return c.JSON(dto.Success("Login successful", resp))
}

// Refresh reads the refresh token from the cookie, not the body, rotates the
// session and re-sets the cookie with the successor token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(h.cfg.RefreshCookieName)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Refresh token not found"))
	}

	resp, err := h.authService.Refresh(refreshToken)
	if err != nil {
		return authError(c, err)
	}

	setRefreshCookie(c, h.cfg, resp.RefreshToken)
	return c.JSON(dto.Success("Token refreshed", resp))
}

// Logout takes an optional bearer access token and an optional refresh
// cookie. It always clears the cookie and reports success.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var accessToken string
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		accessToken = strings.TrimPrefix(authHeader, "Bearer ")
	}
	refreshToken := c.Cookies(h.cfg.RefreshCookieName)

	if err := h.authService.Logout(accessToken, refreshToken); err != nil {
		slog.Error("logout failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Failed to logout"))
	}

	clearRefreshCookie(c, h.cfg)
	return c.JSON(dto.Success("Logged out successfully", nil))
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Token is required"))
	}

	if err := h.authService.VerifyEmail(tokenString); err != nil {
		return authError(c, err)
	}
	return c.JSON(dto.Success("Email verified successfully", nil))
}

// ForgotPassword always reports success so the endpoint cannot be used to
// probe which emails are registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		slog.Error("forgot password failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
	}
	return c.JSON(dto.Success("If the email exists, a password reset link has been sent", nil))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Token is required"))
	}

	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Invalid request body"))
	}
	if len(req.NewPassword) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Error("Password must be at least 8 characters"))
	}

	if err := h.authService.ResetPassword(tokenString, req.NewPassword); err != nil {
		return authError(c, err)
	}
	return c.JSON(dto.Success("Password reset successfully", nil))
}
