package store

import (
	"context"

	"github.com/solmate-app/backend/internal/models"
)

// EntitlementStore maps (wallet, item) to a grant record. Grant must be
// an idempotent upsert: concurrent or repeated grants for the same pair
// leave exactly one record and never error.
type EntitlementStore interface {
	Grant(ctx context.Context, wallet, itemID, txSignature string) error
	GrantMany(ctx context.Context, wallet string, itemIDs []string, txSignature string) error
	Has(ctx context.Context, wallet, itemID string) (bool, error)
	List(ctx context.Context, wallet string) ([]models.Entitlement, error)
}

// ReferenceStore persists reference → item bindings with a TTL. Lookup
// returns ("", nil) for an unknown or expired reference.
type ReferenceStore interface {
	Bind(ctx context.Context, reference, itemID string) error
	Lookup(ctx context.Context, reference string) (string, error)
}
