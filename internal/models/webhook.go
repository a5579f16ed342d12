package models

import "github.com/solmate-app/backend/internal/solana"

// TokenTransfer is the pre-decoded transfer summary some indexers attach
// to pushed transactions. Optional; buyer resolution uses it as a
// fallback when token balances don't identify the payer.
type TokenTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Mint            string `json:"mint"`
}

// WebhookTransaction is one pushed transaction notification. The core
// shape matches a parsed getTransaction response; push payloads add the
// signature and fee payer at the top level, plus optional decoded
// transfers.
type WebhookTransaction struct {
	solana.Transaction
	Signature      string          `json:"signature"`
	FeePayer       string          `json:"feePayer"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
}

// TxSignature returns the top-level signature, falling back to the first
// message signature.
func (t *WebhookTransaction) TxSignature() string {
	if t.Signature != "" {
		return t.Signature
	}
	if len(t.Transaction.Transaction.Signatures) > 0 {
		return t.Transaction.Transaction.Signatures[0]
	}
	return ""
}
