package solana

import (
	"context"
	"math"
	"strconv"
)

// TokenAmount is the canonical amount shape shared by token-account and
// supply responses. UIAmount is null on some nodes and for the legacy
// token program encoding, in which case it is derived from the raw
// integer amount and the mint decimals.
type TokenAmount struct {
	Amount         string   `json:"amount"` // integer string, minimal units
	Decimals       int      `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// UI returns the human-scale amount, deriving it when uiAmount is absent.
func (a TokenAmount) UI() float64 {
	if a.UIAmount != nil {
		return *a.UIAmount
	}
	raw, err := strconv.ParseFloat(a.Amount, 64)
	if err != nil {
		return 0
	}
	return raw / math.Pow10(a.Decimals)
}

type tokenAccountsResult struct {
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount TokenAmount `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// GetTokenBalance sums the ui-amount holdings of owner for mint across all
// of the owner's token accounts. Filtering by mint covers both token program
// variants, so accounts under either program contribute to the sum.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	var result tokenAccountsResult
	err := c.Call(ctx, "getTokenAccountsByOwner", []any{
		owner,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed"},
	}, &result)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, v := range result.Value {
		total += v.Account.Data.Parsed.Info.TokenAmount.UI()
	}
	return total, nil
}

type tokenSupplyResult struct {
	Value TokenAmount `json:"value"`
}

// GetMintDecimals reads the mint's decimals from getTokenSupply.
func (c *Client) GetMintDecimals(ctx context.Context, mint string) (int, error) {
	var result tokenSupplyResult
	if err := c.Call(ctx, "getTokenSupply", []any{mint}, &result); err != nil {
		return 0, err
	}
	return result.Value.Decimals, nil
}
