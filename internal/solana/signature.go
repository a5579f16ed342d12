package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// VerifySignature runs detached ed25519 verification of a signature over the
// UTF-8 bytes of message, against a base58-encoded wallet public key.
// Malformed input (bad base58, wrong key or signature length) yields false,
// never an error; callers treat every failure mode the same way.
func VerifySignature(message string, signature []byte, walletBase58 string) bool {
	pubKey, err := base58.Decode(walletBase58)
	if err != nil {
		return false
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), []byte(message), signature)
}
