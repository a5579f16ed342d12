package solana

import (
	"crypto/rand"
	"math/big"
	"net/url"

	"github.com/mr-tron/base58"
)

// NewReference generates a fresh 32-byte base58 payment reference. The
// value is used purely as a searchable marker in a transaction's account
// list, never as a balance-holding account.
func NewReference() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf), nil
}

// PayURLParams describes one payment request.
type PayURLParams struct {
	Recipient string
	Mint      string
	Amount    *big.Int // whole-token units, rendered verbatim in the URI
	Reference string
	Label     string
	Message   string
	Memo      string
}

// BuildPayURL renders the solana: payment-request URI for a transfer.
func BuildPayURL(p PayURLParams) string {
	q := url.Values{}
	q.Set("amount", p.Amount.String())
	q.Set("spl-token", p.Mint)
	q.Set("reference", p.Reference)
	q.Set("label", p.Label)
	q.Set("message", p.Message)
	q.Set("memo", p.Memo)
	return "solana:" + p.Recipient + "?" + q.Encode()
}

// BuildUniversalURL wraps a pay URL in a wallet-app universal link so
// mobile users without a registered solana: handler can still open it.
func BuildUniversalURL(base, payURL string) string {
	if base == "" {
		return payURL
	}
	return base + url.QueryEscape(payURL)
}
