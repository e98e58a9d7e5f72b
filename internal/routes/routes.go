// Package routes wires middleware, services and HTTP endpoints together.
package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kossahokia/bankcards/internal/auth"
	"github.com/kossahokia/bankcards/internal/card"
	"github.com/kossahokia/bankcards/internal/config"
	"github.com/kossahokia/bankcards/internal/middleware"
	"github.com/kossahokia/bankcards/internal/pan"
	"github.com/kossahokia/bankcards/internal/transfer"
	"github.com/kossahokia/bankcards/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	cipher := pan.NewCipher(d.Cfg.EncryptionSecret)

	var userStore user.Store
	if d.DB != nil {
		userStore = user.NewPostgresStore(d.DB)
	} else {
		userStore = user.NewMemoryStore()
	}
	var cardStore card.Store
	if d.DB != nil {
		cardStore = card.NewPostgresStore(d.DB)
	} else {
		cardStore = card.NewMemoryStore()
	}

	userSvc := user.NewService(userStore)
	authSvc := auth.NewService(d.Cfg, userSvc)
	cardSvc := card.NewService(cardStore, userStore, cipher)
	transferSvc := transfer.NewService(cardStore, cipher)

	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc)
	cardHandler := card.NewHandler(cardSvc)
	transferHandler := transfer.NewHandler(transferSvc)

	api := app.Group("/api/v1")

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc, userStore)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterCardRoutes(protected, cardHandler)
	RegisterTransferRoutes(protected, transferHandler)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin())
	RegisterAdminRoutes(admin, cardHandler, userHandler)

	return nil
}
