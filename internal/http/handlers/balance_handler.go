package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/catalog"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/dto"
	"github.com/solmate-app/backend/internal/solana"
	"go.uber.org/zap"
)

type BalanceHandler struct {
	chain *solana.Client
	cfg   *config.Config
	log   *zap.Logger
}

func NewBalanceHandler(chain *solana.Client, cfg *config.Config, log *zap.Logger) *BalanceHandler {
	return &BalanceHandler{chain: chain, cfg: cfg, log: log}
}

// GetBalance reads the wallet's current holdings straight from the chain
// and maps them to a tier. No caching: tier decisions made on the server
// always see the latest state.
// GET /balance?wallet=<addr>
func (h *BalanceHandler) GetBalance(c *fiber.Ctx) error {
	wallet := c.Query("wallet")
	if len(wallet) < auth.MinWalletLen {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "wallet is required"})
	}

	balance, err := h.chain.GetTokenBalance(c.Context(), wallet, h.cfg.TokenMint)
	if err != nil {
		h.log.Warn("balance lookup failed", zap.String("wallet", wallet), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "balance lookup failed, try again"})
	}

	return c.JSON(dto.BalanceResponse{
		Wallet:  wallet,
		Balance: balance,
		Tier:    catalog.TierFor(balance, catalog.DefaultTiers),
	})
}
