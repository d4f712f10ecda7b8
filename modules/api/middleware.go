package api

import (
	"strings"

	"github.com/example/taskshare/modules/identity"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the key used to store the resolved local user in the
// Fiber context.
const UserContextKey = "currentUser"

// AuthMiddleware authenticates the bearer credential and resolves the
// local user, creating one on first sight of the subject identifier.
func AuthMiddleware(identityPort identity.IdentityPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		claims, err := identityPort.VerifyToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		user, err := identityPort.ResolveUser(c.UserContext(), claims.SubjectID, claims.Email, claims.DisplayName)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to resolve user",
			})
		}

		c.Locals(UserContextKey, user)
		return c.Next()
	}
}
