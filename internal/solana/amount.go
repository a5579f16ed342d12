package solana

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a decimal token amount string (e.g. "250" or "2.5")
// into minimal units for a mint with the given decimals. Extra fractional
// digits are truncated. All value comparisons downstream happen on the
// returned integer, never on floats.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals: %d", decimals)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	for len(frac) < decimals {
		frac += "0"
	}

	units, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	if units.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", amount)
	}
	return units, nil
}
