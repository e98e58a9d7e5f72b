package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kossahokia/bankcards/internal/card"
)

// RegisterCardRoutes wires card endpoints for the authenticated owner.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
	group := r.Group("/cards")
	group.Get("", h.List)
	group.Get("/:id", h.Get)
	group.Get("/:id/balance", h.Balance)
	group.Post("/:id/block", h.RequestBlock)
}
