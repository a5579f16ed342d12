package handlers

import (
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/dto"
	"github.com/solmate-app/backend/internal/solana"
	"go.uber.org/zap"
)

type AuthHandler struct {
	issuer *auth.ChallengeIssuer
	codec  *auth.SessionCodec
	cfg    *config.Config
	log    *zap.Logger
}

func NewAuthHandler(issuer *auth.ChallengeIssuer, codec *auth.SessionCodec, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, codec: codec, cfg: cfg, log: log}
}

// Challenge issues a sign-in message for a wallet.
// POST /auth/challenge
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	var req dto.ChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	ch, err := h.issuer.Issue(req.Wallet)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid wallet"})
	}
	return c.JSON(ch)
}

// Verify checks the signed challenge and opens a cookie session. Every
// failure path returns the same generic category.
// POST /auth/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Wallet == "" || req.Signature == "" || req.Nonce == "" || req.TS == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "wallet, signature, nonce and ts are required"})
	}

	if err := h.issuer.CheckFreshness(req.TS); err != nil {
		h.log.Debug("challenge freshness failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "signature verification failed"})
	}

	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "signature verification failed"})
	}

	message := h.issuer.Message(req.Wallet, req.Nonce, req.TS)
	if !solana.VerifySignature(message, sig, req.Wallet) {
		h.log.Debug("challenge signature invalid", zap.String("wallet", req.Wallet))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "signature verification failed"})
	}

	token, err := h.codec.Issue(req.Wallet, h.cfg.SessionTTL)
	if err != nil {
		h.log.Error("session issuance failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "session configuration error",
			Code:  "missing_session_secret",
		})
	}

	h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))

	claims := h.codec.Verify(token)
	return c.JSON(dto.MeResponse{Authed: true, Wallet: claims.Wallet, Exp: claims.ExpiresAt})
}

// Me reports the current session. Always 200; an absent or invalid
// cookie is just {authed:false}. Sessions within the renewal window are
// transparently reissued (sliding expiry) without re-signing.
// GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims := h.codec.Verify(c.Cookies(h.cfg.CookieName))
	if claims == nil {
		return c.JSON(dto.MeResponse{Authed: false})
	}

	remaining := claims.ExpiresAt - time.Now().Unix()
	if remaining <= int64(h.cfg.SessionRenewWindow.Seconds()) {
		if token, err := h.codec.Issue(claims.Wallet, h.cfg.SessionTTL); err == nil {
			h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))
			claims = h.codec.Verify(token)
		}
	}

	return c.JSON(dto.MeResponse{Authed: true, Wallet: claims.Wallet, Exp: claims.ExpiresAt})
}

// Logout clears the cookie unconditionally.
// POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setSessionCookie(c, "", -1)
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
