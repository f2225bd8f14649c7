package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/internal-chat/backend/internal/config"
	"github.com/internal-chat/backend/internal/handlers"
	"github.com/internal-chat/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	blacklist middleware.TokenBlacklist,
	authHandler *handlers.AuthHandler,
	googleHandler *handlers.GoogleAuthHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/verify-email", authHandler.VerifyEmail)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Google OAuth2
	auth.Get("/google/url", googleHandler.AuthorizationURL)
	auth.Get("/google/callback", googleHandler.Callback)
	auth.Post("/google/authenticate", googleHandler.Authenticate)
	auth.Post("/google/id-token", googleHandler.IDToken)

	// Protected routes: JWT validation, then access-type + blacklist guard
	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.AccessTokenGuard(blacklist)}

	api.Get("/users/me", append(protected, userHandler.Me)...)

	admin := api.Group("/admin", append(protected, middleware.AdminRequired())...)
	admin.Get("/stats", adminHandler.Stats)
}
