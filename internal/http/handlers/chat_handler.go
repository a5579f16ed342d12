package handlers

import (
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/dto"
	"github.com/solmate-app/backend/internal/services"
	"github.com/solmate-app/backend/internal/solana"
	"go.uber.org/zap"
)

type ChatHandler struct {
	issuer     *auth.ChallengeIssuer
	chain      *solana.Client
	completion *services.CompletionClient
	cfg        *config.Config
	log        *zap.Logger
}

func NewChatHandler(
	issuer *auth.ChallengeIssuer,
	chain *solana.Client,
	completion *services.CompletionClient,
	cfg *config.Config,
	log *zap.Logger,
) *ChatHandler {
	return &ChatHandler{issuer: issuer, chain: chain, completion: completion, cfg: cfg, log: log}
}

// Chat gates a companion turn on two independent checks and forwards it
// to the completion provider. The gate is per-request, not per-session:
// every call carries a fresh signature over "<App>|chat|<ts>" (strict
// 60-second window), and the holder balance is re-read from the chain on
// every call; that re-validation, not any client-side cache, is the
// security boundary.
// POST /chat
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Wallet) < auth.MinWalletLen || req.Signature == "" || req.TS == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "wallet, ts and signature are required"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "messages are required"})
	}

	if err := h.issuer.CheckChatFreshness(req.TS); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "auth required"})
	}

	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "auth required"})
	}
	if !solana.VerifySignature(h.issuer.ChatProofMessage(req.TS), sig, req.Wallet) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "auth required"})
	}

	balance, err := h.chain.GetTokenBalance(c.Context(), req.Wallet, h.cfg.TokenMint)
	if err != nil {
		h.log.Warn("chat gate balance lookup failed", zap.String("wallet", req.Wallet), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "balance lookup failed, try again"})
	}
	if balance < h.cfg.ChatMinBalance {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "insufficient balance for chat", Code: "insufficient_balance"})
	}

	reply, err := h.completion.Complete(c.Context(), req.Messages)
	if err != nil {
		h.log.Error("completion failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "companion unavailable, try again"})
	}

	return c.JSON(dto.ChatResponse{Reply: reply})
}
