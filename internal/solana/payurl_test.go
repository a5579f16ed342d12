package solana

import (
	"math/big"
	"net/url"
	"strings"
	"testing"
)

func TestNewReference(t *testing.T) {
	a, err := NewReference()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewReference()

	if a == b {
		t.Error("two references collided")
	}
	// 32 bytes of base58 land between 43 and 44 chars.
	if len(a) < 43 || len(a) > 44 {
		t.Errorf("reference length = %d", len(a))
	}
}

func TestBuildPayURL(t *testing.T) {
	got := BuildPayURL(PayURLParams{
		Recipient: "Treasury111111111111111111111111111111111",
		Mint:      "Mint11111111111111111111111111111111111111",
		Amount:    big.NewInt(250),
		Reference: "Ref111111111111111111111111111111111111111",
		Label:     "Solmate",
		Message:   "Unlock Beach Day",
		Memo:      "solmate:gallery-01",
	})

	if !strings.HasPrefix(got, "solana:Treasury111111111111111111111111111111111?") {
		t.Fatalf("unexpected prefix: %s", got)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()

	checks := map[string]string{
		"amount":    "250",
		"spl-token": "Mint11111111111111111111111111111111111111",
		"reference": "Ref111111111111111111111111111111111111111",
		"label":     "Solmate",
		"message":   "Unlock Beach Day",
		"memo":      "solmate:gallery-01",
	}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("%s = %q, want %q", k, q.Get(k), want)
		}
	}
}

func TestBuildUniversalURL(t *testing.T) {
	payURL := "solana:abc?amount=1"

	got := BuildUniversalURL("https://phantom.app/ul/browse/", payURL)
	if !strings.HasPrefix(got, "https://phantom.app/ul/browse/") {
		t.Errorf("unexpected prefix: %s", got)
	}
	if !strings.Contains(got, url.QueryEscape(payURL)) {
		t.Errorf("pay url not escaped into %s", got)
	}

	if got := BuildUniversalURL("", payURL); got != payURL {
		t.Errorf("empty base should pass through, got %s", got)
	}
}
