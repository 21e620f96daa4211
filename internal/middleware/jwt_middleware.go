package middleware

import (
	"log"
	"strings"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Keys under which the authenticated caller is stored in c.Locals.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalToken    = "token"
)

// AuthRequired is a Fiber middleware that rejects requests without a valid JWT.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		tokenString, ok := parseAuthHeader(authHeader)
		if !ok {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		if err := authenticate(c, authService, tokenString); err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c, "Invalid or expired token")
		}
		return c.Next()
	}
}

// AuthOptional sets the caller when a valid JWT is present and lets anonymous requests through.
// A malformed or invalid token is treated as no token.
func AuthOptional(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := parseAuthHeader(c.Get(fiber.HeaderAuthorization)); ok {
			if err := authenticate(c, authService, tokenString); err != nil {
				log.Printf("Ignoring invalid token on optional auth route: %v", err)
			}
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated caller's id, or "" for anonymous requests.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// CurrentToken returns the raw token the caller authenticated with.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}

// parseAuthHeader accepts "Bearer <token>" and "Token <token>".
func parseAuthHeader(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "Bearer" && parts[0] != "Token" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func authenticate(c *fiber.Ctx, authService *services.AuthService, tokenString string) error {
	claims, err := authService.ValidateToken(tokenString)
	if err != nil {
		return err
	}
	c.Locals(LocalUserID, claims["user_id"])
	c.Locals(LocalUsername, claims["username"])
	c.Locals(LocalToken, tokenString)
	return nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: message,
		Code:  models.CodeUnauthorized,
	})
}
