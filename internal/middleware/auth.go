package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
)

const CtxWallet = "wallet"

// SessionMiddleware authenticates requests via the session cookie. Any
// failure mode yields the same generic 401; no detail about which check
// broke leaks to the caller.
func SessionMiddleware(cfg *config.Config, codec *auth.SessionCodec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := codec.Verify(c.Cookies(cfg.CookieName))
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "auth required"})
		}
		c.Locals(CtxWallet, claims.Wallet)
		return c.Next()
	}
}

func GetWallet(c *fiber.Ctx) string {
	w, _ := c.Locals(CtxWallet).(string)
	return w
}
