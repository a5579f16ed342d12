package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const sessionVersion = "v1"

var (
	ErrNoSecret    = errors.New("session secret is not configured")
	ErrEmptyWallet = errors.New("wallet is required")
)

// SessionClaims is the payload carried inside a session token.
type SessionClaims struct {
	Wallet    string `json:"wallet"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Version   int    `json:"v"`
}

// SessionCodec issues and verifies stateless session tokens of the form
// "v1.<base64url payload>.<base64url hmac-sha256>". The HMAC covers the
// version tag and the encoded payload.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), now: time.Now}
}

func (c *SessionCodec) Issue(wallet string, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrNoSecret
	}
	if wallet == "" {
		return "", ErrEmptyWallet
	}

	now := c.now()
	claims := SessionClaims{
		Wallet:    wallet,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
		Version:   1,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)
	sig := c.sign(payloadB64)
	sigB64 := base64.RawURLEncoding.EncodeToString(sig)

	return sessionVersion + "." + payloadB64 + "." + sigB64, nil
}

// Verify returns the claims for a valid, unexpired token, or nil for
// anything else. It never returns an error: malformed input, a bad
// signature, and an expired token are all just nil.
func (c *SessionCodec) Verify(token string) *SessionClaims {
	if len(c.secret) == 0 || token == "" {
		return nil
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != sessionVersion {
		return nil
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil
	}
	if !hmac.Equal(sig, c.sign(parts[1])) {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}

	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	if claims.Wallet == "" {
		return nil
	}
	if c.now().Unix() > claims.ExpiresAt {
		return nil
	}

	return &claims
}

func (c *SessionCodec) sign(payloadB64 string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionVersion + "." + payloadB64))
	return mac.Sum(nil)
}
