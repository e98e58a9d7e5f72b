package card

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/user"
)

// Handler exposes card HTTP endpoints for owners and administrators.
type Handler struct {
	svc *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the authenticated owner's cards, optionally filtered by
// status, with limit/offset pagination.
func (h *Handler) List(c *fiber.Ctx) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	f := Filter{
		OwnerID: &owner.ID,
		Limit:   c.QueryInt("limit", 20),
		Offset:  c.QueryInt("offset", 0),
	}
	if v := c.Query("status"); v != "" {
		status, ok := ParseStatus(v)
		if !ok {
			return apperr.Validation("unknown card status: " + v)
		}
		f.Status = &status
	}
	views, err := h.svc.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(views)
}

// Get returns one of the owner's cards.
func (h *Handler) Get(c *fiber.Ctx) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseCardID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.Get(c.UserContext(), id, owner)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(view)
}

// Balance returns the card's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseCardID(c)
	if err != nil {
		return err
	}
	balance, err := h.svc.Balance(c.UserContext(), id, owner)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"card_id": id,
		"balance": balance,
	})
}

// RequestBlock lets the owner ask for their card to be blocked.
func (h *Handler) RequestBlock(c *fiber.Ctx) error {
	owner, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseCardID(c)
	if err != nil {
		return err
	}
	view, err := h.svc.RequestBlock(c.UserContext(), id, owner)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(view)
}

type createRequest struct {
	Number         string          `json:"number"`
	OwnerUsername  string          `json:"owner_username"`
	ExpiryDate     string          `json:"expiry_date"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AdminCreate provisions a card for any user.
func (h *Handler) AdminCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	expiry, err := time.ParseInLocation("2006-01-02", req.ExpiryDate, time.UTC)
	if err != nil {
		return apperr.Validation("invalid expiry date, want YYYY-MM-DD")
	}
	view, err := h.svc.Create(c.UserContext(), CreateInput{
		Number:         req.Number,
		OwnerUsername:  req.OwnerUsername,
		ExpiryDate:     expiry,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// AdminList returns all cards, optionally filtered by status.
func (h *Handler) AdminList(c *fiber.Ctx) error {
	f := Filter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("status"); v != "" {
		status, ok := ParseStatus(v)
		if !ok {
			return apperr.Validation("unknown card status: " + v)
		}
		f.Status = &status
	}
	views, err := h.svc.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(views)
}

type statusRequest struct {
	Status string `json:"status"`
}

// AdminSetStatus forces a card into any status.
func (h *Handler) AdminSetStatus(c *fiber.Ctx) error {
	id, err := parseCardID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		return apperr.Validation("unknown card status: " + req.Status)
	}
	view, err := h.svc.AdminSetStatus(c.UserContext(), id, status)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(view)
}

// AdminDelete removes a card row.
func (h *Handler) AdminDelete(c *fiber.Ctx) error {
	id, err := parseCardID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func currentUser(c *fiber.Ctx) (user.User, error) {
	u, ok := c.Locals("user").(user.User)
	if !ok {
		return user.User{}, apperr.Unauthorized("not authenticated")
	}
	return u, nil
}

func parseCardID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid card id")
	}
	return id, nil
}
