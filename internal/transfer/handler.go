package transfer

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/user"
)

// Handler exposes the transfer HTTP endpoint.
type Handler struct {
	svc *Service
}

// NewHandler builds a transfer HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type transferRequest struct {
	FromCardID int64           `json:"from_card_id"`
	ToCardID   int64           `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Transfer moves funds between two of the caller's cards.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	owner, ok := c.Locals("user").(user.User)
	if !ok {
		return apperr.Unauthorized("not authenticated")
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.Transfer(c.UserContext(), owner, req.FromCardID, req.ToCardID, req.Amount); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "completed"})
}
