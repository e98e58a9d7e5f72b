package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kossahokia/bankcards/internal/apperr"
)

// Service manages user accounts and role assignments.
type Service struct {
	store Store
}

// NewService builds a user service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the data required to provision a user.
type CreateInput struct {
	Username string
	Password string
	FullName string
	Role     string
	Enabled  bool
}

// Create provisions a user with a bcrypt-hashed password and a single
// initial role.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	if input.Username == "" || input.Password == "" {
		return User{}, apperr.Validation("username and password are required")
	}
	if !validRole(input.Role) {
		return User{}, apperr.NotFound("role not found: " + input.Role)
	}

	if _, err := s.store.FindByUsername(ctx, input.Username); err == nil {
		return User{}, apperr.Validation("user with this username already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Roles:        []string{input.Role},
		Enabled:      input.Enabled,
		CreatedAt:    time.Now().UTC(),
	}
	return s.store.Create(ctx, u)
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.store.FindByID(ctx, id)
}

// GetByUsername fetches a user by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.store.FindByUsername(ctx, username)
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]User, error) {
	return s.store.List(ctx, f)
}

// AssignRole adds a role to the user if not already present.
func (s *Service) AssignRole(ctx context.Context, id int64, role string) (User, error) {
	if !validRole(role) {
		return User{}, apperr.NotFound("role not found: " + role)
	}
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
		if err := s.store.Update(ctx, u); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

// RemoveRole strips a role from the user.
func (s *Service) RemoveRole(ctx context.Context, id int64, role string) (User, error) {
	if !validRole(role) {
		return User{}, apperr.NotFound("role not found: " + role)
	}
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	roles := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			roles = append(roles, r)
		}
	}
	u.Roles = roles
	if err := s.store.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// SetEnabled toggles whether the user may authenticate.
func (s *Service) SetEnabled(ctx context.Context, id int64, enabled bool) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Enabled = enabled
	if err := s.store.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func validRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
