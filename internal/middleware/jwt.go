package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kossahokia/bankcards/internal/auth"
	"github.com/kossahokia/bankcards/internal/user"
)

// UserLocal is the fiber locals key under which the authenticated user is stored.
const UserLocal = "user"

// JWTAuth validates the bearer token and loads the authenticated user into
// request locals. Disabled accounts are rejected even with a valid token.
func JWTAuth(svc *auth.Service, users user.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := svc.Parse(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		u, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}
		if !u.Enabled {
			return fiber.NewError(http.StatusUnauthorized, "token invalidated")
		}

		c.Locals(UserLocal, u)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose authenticated user lacks the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := c.Locals(UserLocal).(user.User)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		if !u.HasRole(user.RoleAdmin) {
			return fiber.NewError(http.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}
