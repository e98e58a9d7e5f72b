// Package auth issues and validates access tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/config"
	"github.com/kossahokia/bankcards/internal/user"
)

// Claims carried by an access token.
type Claims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Service handles registration, login and token parsing.
type Service struct {
	cfg   config.Config
	users *user.Service
}

// NewService builds an auth service.
func NewService(cfg config.Config, users *user.Service) *Service {
	return &Service{cfg: cfg, users: users}
}

// Register provisions an enabled account with the USER role.
func (s *Service) Register(ctx context.Context, username, password, fullName string) (user.User, error) {
	return s.users.Create(ctx, user.CreateInput{
		Username: username,
		Password: password,
		FullName: fullName,
		Role:     user.RoleUser,
		Enabled:  true,
	})
}

// Login checks credentials and returns a signed HS256 token with its
// expiry time. Unknown-user and wrong-password failures produce the same
// message.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperr.Unauthorized("invalid username or password")
	}
	if !u.Enabled {
		return "", time.Time{}, apperr.Unauthorized("user is disabled")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", time.Time{}, apperr.Unauthorized("invalid username or password")
	}

	now := time.Now()
	exp := now.Add(s.cfg.JWTTTL)
	claims := Claims{
		UserID: u.ID,
		Roles:  u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse verifies a token's signature and expiry and returns its claims.
func (s *Service) Parse(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}
