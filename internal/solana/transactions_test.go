package solana

import (
	"encoding/json"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestAccountKey_UnmarshalBothEncodings(t *testing.T) {
	var msg TransactionMessage
	data := []byte(`{"accountKeys":[
		"FeePayer1111111111111111111111111111111111",
		{"pubkey":"Treasury111111111111111111111111111111111","signer":false,"writable":true}
	]}`)
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}

	if len(msg.AccountKeys) != 2 {
		t.Fatalf("got %d keys, want 2", len(msg.AccountKeys))
	}
	if msg.AccountKeys[0].Pubkey != "FeePayer1111111111111111111111111111111111" {
		t.Errorf("string-encoded key = %q", msg.AccountKeys[0].Pubkey)
	}
	if msg.AccountKeys[1].Pubkey != "Treasury111111111111111111111111111111111" || !msg.AccountKeys[1].Writable {
		t.Errorf("object-encoded key = %+v", msg.AccountKeys[1])
	}
}

func TestTransaction_TokenDelta(t *testing.T) {
	const (
		mint     = "Mint11111111111111111111111111111111111111"
		treasury = "Treasury111111111111111111111111111111111"
		buyer    = "Buyer1111111111111111111111111111111111111"
	)

	tx := &Transaction{
		Meta: TransactionMeta{
			PreTokenBalances: []TokenBalance{
				{AccountIndex: 1, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "1000", Decimals: 9}},
				{AccountIndex: 2, Mint: mint, Owner: buyer, UITokenAmount: TokenAmount{Amount: "500000000000", Decimals: 9}},
			},
			PostTokenBalances: []TokenBalance{
				{AccountIndex: 1, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "250000001000", Decimals: 9}},
				{AccountIndex: 2, Mint: mint, Owner: buyer, UITokenAmount: TokenAmount{Amount: "250000000000", Decimals: 9}},
			},
		},
	}

	if got := tx.TokenDelta(mint, treasury).String(); got != "250000000000" {
		t.Errorf("treasury delta = %s, want 250000000000", got)
	}
	if got := tx.TokenDelta(mint, buyer).String(); got != "-250000000000" {
		t.Errorf("buyer delta = %s, want -250000000000", got)
	}
	if got := tx.TokenDelta("OtherMint", treasury).String(); got != "0" {
		t.Errorf("other-mint delta = %s, want 0", got)
	}
}

func TestTransaction_TokenDelta_MultipleAccountsPerOwner(t *testing.T) {
	const (
		mint     = "Mint11111111111111111111111111111111111111"
		treasury = "Treasury111111111111111111111111111111111"
	)

	// A treasury holding accounts under both token programs: the delta
	// sums across all of them.
	tx := &Transaction{
		Meta: TransactionMeta{
			PreTokenBalances: []TokenBalance{
				{AccountIndex: 1, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "0"}},
				{AccountIndex: 3, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "100"}},
			},
			PostTokenBalances: []TokenBalance{
				{AccountIndex: 1, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "70"}},
				{AccountIndex: 3, Mint: mint, Owner: treasury, UITokenAmount: TokenAmount{Amount: "130"}},
			},
		},
	}

	if got := tx.TokenDelta(mint, treasury).String(); got != "100" {
		t.Errorf("delta = %s, want 100", got)
	}
}

func TestTransaction_HasMemoLog(t *testing.T) {
	tx := &Transaction{
		Meta: TransactionMeta{
			LogMessages: []string{
				"Program 11111111111111111111111111111111 invoke [1]",
				`Program log: Memo (len 18): "solmate:gallery-01"`,
				"Program MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr success",
			},
		},
	}

	if !tx.HasMemoLog("solmate:gallery-01") {
		t.Error("exact memo not found")
	}
	if tx.HasMemoLog("solmate:gallery-02") {
		t.Error("wrong memo matched")
	}
}

func TestTokenAmount_UI(t *testing.T) {
	tests := []struct {
		name string
		amt  TokenAmount
		want float64
	}{
		{"uiAmount present", TokenAmount{Amount: "1000", Decimals: 9, UIAmount: f64(750)}, 750},
		{"derived from raw", TokenAmount{Amount: "250000000000", Decimals: 9}, 250},
		{"zero decimals", TokenAmount{Amount: "42", Decimals: 0}, 42},
		{"garbage raw amount", TokenAmount{Amount: "zzz", Decimals: 9}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amt.UI(); got != tt.want {
				t.Errorf("UI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_FeePayer(t *testing.T) {
	tx := &Transaction{}
	if got := tx.FeePayer(); got != "" {
		t.Errorf("empty tx fee payer = %q, want empty", got)
	}

	tx.Transaction.Message.AccountKeys = []AccountKey{{Pubkey: "Payer"}, {Pubkey: "Other"}}
	if got := tx.FeePayer(); got != "Payer" {
		t.Errorf("fee payer = %q, want Payer", got)
	}
}
