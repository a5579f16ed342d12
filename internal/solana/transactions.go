package solana

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
)

// SignatureInfo is one entry from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	Err       any    `json:"err"`
	BlockTime *int64 `json:"blockTime"`
}

// AccountKey normalizes the two encodings of transaction account keys:
// jsonParsed returns objects with pubkey/signer/writable, webhook pushes
// and the "json" encoding return bare base58 strings.
type AccountKey struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

func (k *AccountKey) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &k.Pubkey)
	}
	type alias AccountKey
	return json.Unmarshal(data, (*alias)(k))
}

// TokenBalance is a pre/post token balance entry from transaction meta.
type TokenBalance struct {
	AccountIndex  int         `json:"accountIndex"`
	Mint          string      `json:"mint"`
	Owner         string      `json:"owner"`
	UITokenAmount TokenAmount `json:"uiTokenAmount"`
}

type TransactionMeta struct {
	Err               any            `json:"err"`
	LogMessages       []string       `json:"logMessages"`
	PreTokenBalances  []TokenBalance `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance `json:"postTokenBalances"`
}

type TransactionMessage struct {
	AccountKeys []AccountKey `json:"accountKeys"`
}

type TransactionBody struct {
	Message    TransactionMessage `json:"message"`
	Signatures []string           `json:"signatures"`
}

// Transaction is a parsed, version-aware transaction from getTransaction.
type Transaction struct {
	Slot        uint64          `json:"slot"`
	BlockTime   *int64          `json:"blockTime"`
	Meta        TransactionMeta `json:"meta"`
	Transaction TransactionBody `json:"transaction"`
}

// HasAccount reports whether pubkey appears among the transaction's
// account keys.
func (t *Transaction) HasAccount(pubkey string) bool {
	for _, k := range t.Transaction.Message.AccountKeys {
		if k.Pubkey == pubkey {
			return true
		}
	}
	return false
}

// HasMemoLog reports whether any log message contains memo verbatim.
// The memo program logs the memo text inside a larger line, so this is
// a substring match on the exact memo string.
func (t *Transaction) HasMemoLog(memo string) bool {
	for _, line := range t.Meta.LogMessages {
		if strings.Contains(line, memo) {
			return true
		}
	}
	return false
}

// TokenDelta computes the net change of owner's holdings of mint across
// the transaction, in minimal units: sum(postTokenBalances) minus
// sum(preTokenBalances) over all of owner's token accounts for that mint.
// All arithmetic stays in integers.
func (t *Transaction) TokenDelta(mint, owner string) *big.Int {
	delta := new(big.Int)
	for _, b := range t.Meta.PostTokenBalances {
		if b.Mint == mint && b.Owner == owner {
			if amt, ok := new(big.Int).SetString(b.UITokenAmount.Amount, 10); ok {
				delta.Add(delta, amt)
			}
		}
	}
	for _, b := range t.Meta.PreTokenBalances {
		if b.Mint == mint && b.Owner == owner {
			if amt, ok := new(big.Int).SetString(b.UITokenAmount.Amount, 10); ok {
				delta.Sub(delta, amt)
			}
		}
	}
	return delta
}

// FeePayer returns the transaction's fee payer (the first account key),
// or "" for a malformed message.
func (t *Transaction) FeePayer() string {
	if len(t.Transaction.Message.AccountKeys) == 0 {
		return ""
	}
	return t.Transaction.Message.AccountKeys[0].Pubkey
}

// GetSignaturesForAddress lists recent transaction signatures that
// reference the given address, most recent first.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	var result []SignatureInfo
	err := c.Call(ctx, "getSignaturesForAddress", []any{
		address,
		map[string]any{"limit": limit},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransaction fetches one parsed transaction. A null result (signature
// not found) returns (nil, nil).
func (c *Client) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	var result *Transaction
	err := c.Call(ctx, "getTransaction", []any{
		signature,
		map[string]any{"encoding": "jsonParsed", "maxSupportedTransactionVersion": 0},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}
