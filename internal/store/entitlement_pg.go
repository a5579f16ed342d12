package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/solmate-app/backend/internal/models"
)

// PgEntitlementStore is the durable entitlement store. The upsert on the
// (wallet, item_id) primary key is the sole concurrency-safety mechanism
// for the whole payment flow: no lock is taken anywhere else.
type PgEntitlementStore struct {
	pool *pgxpool.Pool
}

func NewPgEntitlementStore(pool *pgxpool.Pool) *PgEntitlementStore {
	return &PgEntitlementStore{pool: pool}
}

func (s *PgEntitlementStore) Grant(ctx context.Context, wallet, itemID, txSignature string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO entitlements (wallet, item_id, tx_signature)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet, item_id) DO UPDATE SET
			tx_signature = EXCLUDED.tx_signature
	`, wallet, itemID, txSignature)
	return err
}

// GrantMany grants each item independently so a partial failure leaves
// the remaining ids retryable.
func (s *PgEntitlementStore) GrantMany(ctx context.Context, wallet string, itemIDs []string, txSignature string) error {
	for _, id := range itemIDs {
		if err := s.Grant(ctx, wallet, id, txSignature); err != nil {
			return err
		}
	}
	return nil
}

func (s *PgEntitlementStore) Has(ctx context.Context, wallet, itemID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM entitlements WHERE wallet = $1 AND item_id = $2)`,
		wallet, itemID,
	).Scan(&exists)
	return exists, err
}

func (s *PgEntitlementStore) List(ctx context.Context, wallet string) ([]models.Entitlement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT wallet, item_id, tx_signature, created_at
		FROM entitlements WHERE wallet = $1
		ORDER BY created_at
	`, wallet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Entitlement
	for rows.Next() {
		var e models.Entitlement
		if err := rows.Scan(&e.Wallet, &e.ItemID, &e.TxSignature, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
