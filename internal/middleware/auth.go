package middleware

import (
	"log/slog"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/internal-chat/backend/internal/config"
	"github.com/internal-chat/backend/internal/dto"
	"github.com/internal-chat/backend/internal/token"
)

// TokenBlacklist is the registry side the request-authorization layer
// consults; revoked access tokens are rejected even while structurally valid.
type TokenBlacklist interface {
	Contains(token string) (bool, error)
}

// JWTProtected validates the bearer token's signature and expiry.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized: invalid or expired token"))
		},
	})
}

// AccessTokenGuard runs after JWTProtected. It rejects tokens that are not
// access-typed (a refresh token must never authorize a request) and tokens
// present in the blacklist.
func AccessTokenGuard(blacklist TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := tokenClaims(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized"))
		}
		if tokenType, _ := claims["type"].(string); tokenType != token.TypeAccess {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized: access token required"))
		}

		raw := bearerToken(c)
		revoked, err := blacklist.Contains(raw)
		if err != nil {
			slog.Error("blacklist check failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.Error("Internal server error"))
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Error("Unauthorized: token has been revoked"))
		}
		return c.Next()
	}
}

// AccountEmail returns the authenticated subject, or "" outside a protected
// route.
func AccountEmail(c *fiber.Ctx) string {
	claims := tokenClaims(c)
	if claims == nil {
		return ""
	}
	email, _ := claims["sub"].(string)
	return email
}

// AccountRoles returns the roles claim of the authenticated token.
func AccountRoles(c *fiber.Ctx) []string {
	claims := tokenClaims(c)
	if claims == nil {
		return nil
	}
	rawRoles, _ := claims["roles"].([]interface{})
	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func tokenClaims(c *fiber.Ctx) jwt.MapClaims {
	parsed, ok := c.Locals("user").(*jwt.Token)
	if !ok || parsed == nil {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
