package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/handlers"
	"github.com/solmate-app/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	codec *auth.SessionCodec,
	authHandler *handlers.AuthHandler,
	balanceHandler *handlers.BalanceHandler,
	storeHandler *handlers.StoreHandler,
	payHandler *handlers.PayHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowCredentials: false,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Webhook sits outside the rate limiter: the indexer bursts.
	api.Post("/pay/webhook", payHandler.Webhook)

	if rdb != nil {
		api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))
	}

	// Auth (public)
	api.Post("/auth/challenge", authHandler.Challenge)
	api.Post("/auth/verify", authHandler.Verify)
	api.Get("/auth/me", authHandler.Me)
	api.Post("/auth/logout", authHandler.Logout)

	// Public reads
	api.Get("/balance", balanceHandler.GetBalance)
	api.Get("/store/items", storeHandler.Items)
	api.Get("/entitlements", payHandler.Entitlements)

	// Chat carries its own per-request wallet proof, no cookie session.
	api.Post("/chat", chatHandler.Chat)

	// Session-gated payment flow
	protected := api.Group("", middleware.SessionMiddleware(cfg, codec))
	protected.Post("/pay/create", payHandler.Create)
	protected.Post("/pay/verify", payHandler.Verify)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
