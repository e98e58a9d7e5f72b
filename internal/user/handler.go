package user

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kossahokia/bankcards/internal/apperr"
)

// Handler exposes administrative user endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a user HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Enabled  *bool  `json:"enabled"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Roles:     u.Roles,
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
	}
}

// Create provisions a user with an explicit role.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	u, err := h.svc.Create(c.UserContext(), CreateInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
		Enabled:  enabled,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(u))
}

// List returns users, optionally filtered by username substring and
// enabled flag.
func (h *Handler) List(c *fiber.Ctx) error {
	f := Filter{
		Username: c.Query("username"),
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
	}
	if v := c.Query("enabled"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return apperr.Validation("invalid enabled filter")
		}
		f.Enabled = &enabled
	}
	users, err := h.svc.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Delete removes a user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

// AssignRole adds a role to a user.
func (h *Handler) AssignRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.AssignRole(c.UserContext(), id, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toResponse(u))
}

// RemoveRole strips the role named in the path from a user.
func (h *Handler) RemoveRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.RemoveRole(c.UserContext(), id, c.Params("role"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toResponse(u))
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabled toggles a user's enabled flag.
func (h *Handler) SetEnabled(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req enabledRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.SetEnabled(c.UserContext(), id, req.Enabled)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toResponse(u))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid user id")
	}
	return id, nil
}
