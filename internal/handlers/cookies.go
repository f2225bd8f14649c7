package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/internal-chat/backend/internal/config"
)

// refreshCookiePath scopes the cookie to the auth endpoints only.
const refreshCookiePath = "/api/auth"

// setRefreshCookie stores the refresh token in an HTTP-only, cross-site
// cookie scoped to the auth routes.
func setRefreshCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   cfg.RefreshCookieMaxAge,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func clearRefreshCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
