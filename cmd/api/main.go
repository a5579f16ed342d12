package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/catalog"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/db"
	"github.com/solmate-app/backend/internal/events"
	apphttp "github.com/solmate-app/backend/internal/http"
	"github.com/solmate-app/backend/internal/http/handlers"
	"github.com/solmate-app/backend/internal/services"
	"github.com/solmate-app/backend/internal/solana"
	"github.com/solmate-app/backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage selection happens here, once, explicitly: handlers and
	// services only ever see the interfaces.
	var entitlements store.EntitlementStore
	if cfg.PostgresDSN != "" {
		pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		entitlements = store.NewPgEntitlementStore(pool)
	} else {
		log.Warn("running with in-memory entitlement store, grants will not survive restarts")
		entitlements = store.NewMemoryEntitlementStore()
	}

	var (
		rdb        *redis.Client
		references store.ReferenceStore
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	if cfg.RedisURL != "" {
		var err error
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		references = store.NewRedisReferenceStore(rdb, cfg.ReferenceTTL)
		publisher = events.NewRedisPublisher(rdb, log)
		subscriber = events.NewRedisSubscriber(rdb, log)
	} else {
		log.Warn("running without redis, reference bindings are process-local and unlock events stay in-process")
		references = store.NewMemoryReferenceStore(cfg.ReferenceTTL)
		memBus := events.NewMemoryBus()
		publisher = memBus
		subscriber = memBus
	}

	// Auth primitives
	codec := auth.NewSessionCodec(cfg.SessionSecret)
	issuer := auth.NewChallengeIssuer(cfg.AppName, cfg.ChallengeSkew, cfg.ChatProofMaxAge)

	// Chain access
	chain := solana.NewClient(cfg.RPCEndpoints, cfg.RPCTimeout, log)

	// Catalog
	cat := catalog.Default()

	// Services
	paymentService := services.NewPaymentService(chain, cat, references, entitlements, cfg, log)
	webhookService := services.NewWebhookService(cat, references, entitlements, publisher, cfg, log)
	completion := services.NewCompletionClient(cfg.CompletionURL, cfg.CompletionAPIKey, cfg.CompletionModel, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(issuer, codec, cfg, log)
	balanceHandler := handlers.NewBalanceHandler(chain, cfg, log)
	storeHandler := handlers.NewStoreHandler(cat)
	payHandler := handlers.NewPayHandler(paymentService, webhookService, entitlements, cfg, log)
	chatHandler := handlers.NewChatHandler(issuer, chain, completion, cfg, log)
	wsHub := handlers.NewWSHub(codec, subscriber, log)

	wsHub.Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, codec, authHandler, balanceHandler, storeHandler, payHandler, chatHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
