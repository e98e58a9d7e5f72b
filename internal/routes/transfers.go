package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kossahokia/bankcards/internal/transfer"
)

// RegisterTransferRoutes wires the card-to-card transfer endpoint.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler) {
	r.Post("/transfers", h.Transfer)
}
