package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// Database
	PostgresDSN string
	RedisURL    string

	// App identity
	AppName string // challenge header + chat proof prefix, e.g. "Solmate"
	AppTag  string // on-chain memo prefix, e.g. "solmate"

	// Session
	SessionSecret      string
	SessionTTL         time.Duration
	SessionRenewWindow time.Duration // reissue cookie when remaining lifetime is below this
	CookieName         string
	CookieDomain       string

	// Auth windows
	ChallengeSkew   time.Duration // max |now - ts| on sign-in verification
	ChatProofMaxAge time.Duration // one-shot chat proof freshness

	// Solana
	RPCEndpoints    []string // tried in order, first healthy answer wins
	RPCTimeout      time.Duration
	TokenMint       string
	TreasuryAddress string

	// Payments
	ReferenceTTL      time.Duration
	UniversalLinkBase string
	WebhookAuthToken  string

	// Chat gating
	ChatMinBalance float64

	// Completion proxy
	CompletionURL    string
	CompletionAPIKey string
	CompletionModel  string

	// Server
	APIPort string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		AppName: getEnv("APP_NAME", "Solmate"),
		AppTag:  getEnv("APP_TAG", "solmate"),

		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_HOURS", 168)) * time.Hour,
		SessionRenewWindow: time.Duration(getEnvInt("SESSION_RENEW_WINDOW_HOURS", 24)) * time.Hour,
		CookieName:         getEnv("SESSION_COOKIE_NAME", "solmate_session"),
		CookieDomain:       getEnv("SESSION_COOKIE_DOMAIN", ""),

		ChallengeSkew:   time.Duration(getEnvInt("CHALLENGE_SKEW_SECONDS", 600)) * time.Second,
		ChatProofMaxAge: time.Duration(getEnvInt("CHAT_PROOF_MAX_AGE_SECONDS", 60)) * time.Second,

		RPCEndpoints: parseList(getEnv("SOLANA_RPC_ENDPOINTS", "https://api.mainnet-beta.solana.com")),
		RPCTimeout:   time.Duration(getEnvInt("SOLANA_RPC_TIMEOUT_MS", 8000)) * time.Millisecond,

		TokenMint:       getEnv("TOKEN_MINT", ""),
		TreasuryAddress: getEnv("TREASURY_ADDRESS", ""),

		ReferenceTTL:      time.Duration(getEnvInt("REFERENCE_TTL_SECONDS", 900)) * time.Second,
		UniversalLinkBase: getEnv("UNIVERSAL_LINK_BASE", "https://phantom.app/ul/browse/"),
		WebhookAuthToken:  getEnv("WEBHOOK_AUTH_TOKEN", ""),

		ChatMinBalance: getEnvFloat("CHAT_MIN_BALANCE", 0),

		CompletionURL:    getEnv("COMPLETION_URL", ""),
		CompletionAPIKey: getEnv("COMPLETION_API_KEY", ""),
		CompletionModel:  getEnv("COMPLETION_MODEL", "gpt-4o-mini"),

		APIPort: getEnv("API_PORT", "3000"),
	}

	return cfg
}

func (c *Config) Validate(log *zap.Logger) {
	if c.SessionSecret == "" {
		log.Warn("SESSION_SECRET is not set, session issuance will fail")
	}
	if c.TokenMint == "" {
		log.Warn("TOKEN_MINT is not set, balance gating and payments will fail")
	}
	if c.TreasuryAddress == "" {
		log.Warn("TREASURY_ADDRESS is not set, payment verification will fail")
	}
	if c.PostgresDSN == "" {
		log.Warn("POSTGRES_DSN is not set, entitlements will use the in-memory store (non-persistent)")
	}
	if c.WebhookAuthToken == "" {
		log.Warn("WEBHOOK_AUTH_TOKEN is not set, webhook endpoint accepts unauthenticated pushes")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
