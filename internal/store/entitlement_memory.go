package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/solmate-app/backend/internal/models"
)

// MemoryEntitlementStore keeps grants in a process-local map. Degraded
// mode only: used when no POSTGRES_DSN is configured, and in tests.
// Everything is lost on restart.
type MemoryEntitlementStore struct {
	mu      sync.RWMutex
	records map[string]map[string]models.Entitlement // wallet -> itemID -> record
}

func NewMemoryEntitlementStore() *MemoryEntitlementStore {
	return &MemoryEntitlementStore{records: make(map[string]map[string]models.Entitlement)}
}

func (s *MemoryEntitlementStore) Grant(ctx context.Context, wallet, itemID, txSignature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byItem, ok := s.records[wallet]
	if !ok {
		byItem = make(map[string]models.Entitlement)
		s.records[wallet] = byItem
	}

	if existing, ok := byItem[itemID]; ok {
		existing.TxSignature = txSignature
		byItem[itemID] = existing
		return nil
	}

	byItem[itemID] = models.Entitlement{
		Wallet:      wallet,
		ItemID:      itemID,
		TxSignature: txSignature,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (s *MemoryEntitlementStore) GrantMany(ctx context.Context, wallet string, itemIDs []string, txSignature string) error {
	for _, id := range itemIDs {
		if err := s.Grant(ctx, wallet, id, txSignature); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryEntitlementStore) Has(ctx context.Context, wallet, itemID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[wallet][itemID]
	return ok, nil
}

func (s *MemoryEntitlementStore) List(ctx context.Context, wallet string) ([]models.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entitlement
	for _, e := range s.records[wallet] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
