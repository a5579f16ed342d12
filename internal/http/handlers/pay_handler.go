package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/dto"
	"github.com/solmate-app/backend/internal/middleware"
	"github.com/solmate-app/backend/internal/models"
	"github.com/solmate-app/backend/internal/services"
	"github.com/solmate-app/backend/internal/store"
	"go.uber.org/zap"
)

type PayHandler struct {
	payments     *services.PaymentService
	webhooks     *services.WebhookService
	entitlements store.EntitlementStore
	cfg          *config.Config
	log          *zap.Logger
}

func NewPayHandler(
	payments *services.PaymentService,
	webhooks *services.WebhookService,
	entitlements store.EntitlementStore,
	cfg *config.Config,
	log *zap.Logger,
) *PayHandler {
	return &PayHandler{
		payments:     payments,
		webhooks:     webhooks,
		entitlements: entitlements,
		cfg:          cfg,
		log:          log,
	}
}

// Create opens a payment intent for the session wallet.
// POST /pay/create
func (h *PayHandler) Create(c *fiber.Ctx) error {
	var req dto.PayCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "item_id is required"})
	}
	if h.cfg.TreasuryAddress == "" || h.cfg.TokenMint == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "payment configuration error",
			Code:  "missing_treasury_or_mint",
		})
	}

	wallet := middleware.GetWallet(c)
	intent, err := h.payments.Create(c.Context(), wallet, req.ItemID, req.Attribution)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownItem):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown item", Code: "unknown_item"})
		case errors.Is(err, services.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid price", Code: "invalid_price"})
		default:
			h.log.Error("payment create failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(intent)
}

// Verify polls for a matching on-chain payment. A not-yet-observed
// payment is a normal outcome: 200 with {ok:false, reason:"no-match"},
// and the client keeps polling.
// POST /pay/verify
func (h *PayHandler) Verify(c *fiber.Ctx) error {
	var req dto.PayVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.ItemID == "" || req.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "item_id and reference are required"})
	}

	wallet := middleware.GetWallet(c)
	result, err := h.payments.Verify(c.Context(), wallet, req.ItemID, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownItem):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "unknown item", Code: "unknown_item"})
		case errors.Is(err, services.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid price", Code: "invalid_price"})
		case errors.Is(err, services.ErrReferenceNotBound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "reference not bound to item", Code: "reference_not_bound"})
		default:
			h.log.Error("payment verify failed", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "verification unavailable, try again"})
		}
	}

	return c.JSON(result)
}

// Webhook receives pushed transaction batches from the indexer. The
// source redelivers on non-200, so this endpoint acknowledges everything
// once the shared-secret check passes, including payloads it cannot
// parse or match. Processing problems are logged, never returned.
// POST /pay/webhook
func (h *PayHandler) Webhook(c *fiber.Ctx) error {
	if h.cfg.WebhookAuthToken != "" && c.Get("Authorization") != h.cfg.WebhookAuthToken {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var txs []models.WebhookTransaction
	if err := c.BodyParser(&txs); err != nil {
		h.log.Warn("unparseable webhook payload", zap.Error(err))
		return c.JSON(dto.SuccessResponse{OK: true})
	}

	h.webhooks.Process(c.Context(), txs)
	return c.JSON(dto.SuccessResponse{OK: true})
}

// Entitlements lists a wallet's grant records.
// GET /entitlements?wallet=<addr>
func (h *PayHandler) Entitlements(c *fiber.Ctx) error {
	wallet := c.Query("wallet")
	if len(wallet) < auth.MinWalletLen {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "wallet is required"})
	}

	items, err := h.entitlements.List(c.Context(), wallet)
	if err != nil {
		h.log.Error("entitlement listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if items == nil {
		items = []models.Entitlement{}
	}

	return c.JSON(dto.EntitlementsResponse{Wallet: wallet, Items: items})
}
