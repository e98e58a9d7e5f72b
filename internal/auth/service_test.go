package auth

import (
	"context"
	"testing"
	"time"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/config"
	"github.com/kossahokia/bankcards/internal/user"
)

func setupAuth(t *testing.T) (*Service, *user.Service) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-jwt-secret", JWTTTL: time.Hour}
	users := user.NewService(user.NewMemoryStore())
	return NewService(cfg, users), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret", "Alice A")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !u.HasRole(user.RoleUser) {
		t.Fatal("expected USER role on registration")
	}
	if !u.Enabled {
		t.Fatal("expected account enabled on registration")
	}

	token, exp, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != u.ID {
		t.Fatalf("expected uid %d, got %d", u.ID, claims.UserID)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(ctx, "alice", "wrong")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, _, err = svc.Login(ctx, "nobody", "s3cret")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	svc, users := setupAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := users.SetEnabled(ctx, u.ID, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	_, _, err = svc.Login(ctx, "alice", "s3cret")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for disabled user, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Parse(tampered); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for tampered token, got %v", err)
	}

	other := NewService(config.Config{JWTSecret: "different-secret", JWTTTL: time.Hour}, nil)
	if _, err := other.Parse(token); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized with wrong secret, got %v", err)
	}
}
