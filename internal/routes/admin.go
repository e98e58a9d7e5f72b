package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kossahokia/bankcards/internal/card"
	"github.com/kossahokia/bankcards/internal/user"
)

// RegisterAdminRoutes wires card and user administration endpoints.
func RegisterAdminRoutes(r fiber.Router, cards *card.Handler, users *user.Handler) {
	r.Post("/cards", cards.AdminCreate)
	r.Get("/cards", cards.AdminList)
	r.Patch("/cards/:id/status", cards.AdminSetStatus)
	r.Delete("/cards/:id", cards.AdminDelete)

	r.Post("/users", users.Create)
	r.Get("/users", users.List)
	r.Delete("/users/:id", users.Delete)
	r.Post("/users/:id/roles", users.AssignRole)
	r.Delete("/users/:id/roles/:role", users.RemoveRole)
	r.Patch("/users/:id/enabled", users.SetEnabled)
}
