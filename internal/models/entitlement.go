package models

import "time"

// Entitlement is a durable grant record: wallet has paid for item.
// Primary key is (wallet, item_id); TxSignature is provenance only and
// may be overwritten by a concurrent duplicate grant (last write wins;
// the existence fact is what matters).
type Entitlement struct {
	Wallet      string    `json:"wallet"`
	ItemID      string    `json:"item_id"`
	TxSignature string    `json:"tx_signature"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReferenceBinding ties a payment reference to the item it was created
// for. Bindings expire after the reference TTL; granting idempotency is
// enforced by the entitlement upsert, not by consuming the reference.
type ReferenceBinding struct {
	Reference string    `json:"reference"`
	ItemID    string    `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}
