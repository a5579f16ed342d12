package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// MinWalletLen is a loose sanity bound for base58-encoded ed25519 pubkeys.
const MinWalletLen = 25

// Challenge is a sign-in message bound to a wallet, nonce and timestamp.
// It is never stored server-side: verification recomputes the message from
// the client-returned (wallet, nonce, ts) triple and checks the signature
// against that reconstruction. The only freshness guard is the timestamp
// skew check; a captured (message, signature) pair stays replayable until
// the skew window elapses. Single-use consumption would need the nonce
// persisted server-side.
type Challenge struct {
	Wallet  string `json:"wallet"`
	Nonce   string `json:"nonce"`
	TS      int64  `json:"ts"` // epoch millis
	Message string `json:"message"`
}

// ChallengeIssuer builds sign-in challenges and one-shot chat proofs for
// a given app name.
type ChallengeIssuer struct {
	appName string
	skew    time.Duration
	maxAge  time.Duration // chat proof freshness
	now     func() time.Time
}

func NewChallengeIssuer(appName string, skew, chatMaxAge time.Duration) *ChallengeIssuer {
	return &ChallengeIssuer{appName: appName, skew: skew, maxAge: chatMaxAge, now: time.Now}
}

func (i *ChallengeIssuer) Issue(wallet string) (*Challenge, error) {
	if len(wallet) < MinWalletLen {
		return nil, fmt.Errorf("wallet too short: %d chars", len(wallet))
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	ch := &Challenge{
		Wallet: wallet,
		Nonce:  hex.EncodeToString(nonce),
		TS:     i.now().UnixMilli(),
	}
	ch.Message = i.Message(ch.Wallet, ch.Nonce, ch.TS)
	return ch, nil
}

// Message rebuilds the exact challenge text for a (wallet, nonce, ts) triple.
// The format is a wire contract with the frontend signer.
func (i *ChallengeIssuer) Message(wallet, nonce string, ts int64) string {
	return i.appName + " Sign-In\nWallet: " + wallet + "\nNonce: " + nonce + "\nTS: " + strconv.FormatInt(ts, 10)
}

// CheckFreshness enforces the sign-in skew window on a client-asserted
// epoch-millis timestamp.
func (i *ChallengeIssuer) CheckFreshness(ts int64) error {
	drift := i.now().UnixMilli() - ts
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Millisecond > i.skew {
		return fmt.Errorf("challenge timestamp outside skew window")
	}
	return nil
}

// ChatProofMessage is the lightweight per-request proof signed by the wallet
// on every chat call: "<App>|chat|<epochMillis>". Independent of the cookie
// session: trust is established per message, not per session.
func (i *ChallengeIssuer) ChatProofMessage(ts int64) string {
	return i.appName + "|chat|" + strconv.FormatInt(ts, 10)
}

// CheckChatFreshness enforces the short chat proof window, in either
// direction of clock drift.
func (i *ChallengeIssuer) CheckChatFreshness(ts int64) error {
	drift := i.now().UnixMilli() - ts
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Millisecond > i.maxAge {
		return fmt.Errorf("chat proof expired")
	}
	return nil
}
