package dto

import "github.com/solmate-app/backend/internal/services"

type ChallengeRequest struct {
	Wallet string `json:"wallet"`
}

// VerifyRequest carries the signed challenge back. The server recomputes
// the message from (wallet, nonce, ts) rather than trusting a client-sent
// message string.
type VerifyRequest struct {
	Wallet    string `json:"wallet"`
	Signature string `json:"signature"` // base64
	Nonce     string `json:"nonce"`
	TS        int64  `json:"ts"` // epoch millis
}

type PayCreateRequest struct {
	ItemID      string `json:"item_id"`
	Attribution string `json:"attribution,omitempty"`
}

type PayVerifyRequest struct {
	ItemID    string `json:"item_id"`
	Reference string `json:"reference"`
}

// ChatRequest carries the per-request wallet proof alongside the turn:
// signature over "<App>|chat|<ts>", independent of the cookie session.
type ChatRequest struct {
	Wallet    string                 `json:"wallet"`
	TS        int64                  `json:"ts"` // epoch millis
	Signature string                 `json:"signature"` // base64
	Messages  []services.ChatMessage `json:"messages"`
}
