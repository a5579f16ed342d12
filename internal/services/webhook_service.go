package services

import (
	"context"
	"strings"

	"github.com/solmate-app/backend/internal/catalog"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/events"
	"github.com/solmate-app/backend/internal/models"
	"github.com/solmate-app/backend/internal/store"
	"go.uber.org/zap"
)

// WebhookService is the push-delivery counterpart of PaymentService.Verify:
// an indexer pushes confirmed transactions at us, and any transfer that can
// be matched back to a bound payment reference grants entitlements and
// publishes a completion event. Everything unmatchable is skipped silently:
// the source retries on non-200, so per-transaction failures must never
// bubble out of Process.
type WebhookService struct {
	catalog      *catalog.Catalog
	references   store.ReferenceStore
	entitlements store.EntitlementStore
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewWebhookService(
	cat *catalog.Catalog,
	references store.ReferenceStore,
	entitlements store.EntitlementStore,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *WebhookService {
	return &WebhookService{
		catalog:      cat,
		references:   references,
		entitlements: entitlements,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// Process handles one pushed batch. It never returns an error: the
// caller acknowledges the delivery regardless of match outcomes.
func (s *WebhookService) Process(ctx context.Context, txs []models.WebhookTransaction) {
	for i := range txs {
		s.processOne(ctx, &txs[i])
	}
}

func (s *WebhookService) processOne(ctx context.Context, tx *models.WebhookTransaction) {
	if tx.Meta.Err != nil {
		return
	}

	itemID := s.extractItemID(tx.Meta.LogMessages)
	if itemID == "" {
		return
	}

	purchase, err := s.catalog.Resolve(itemID)
	if err != nil {
		s.log.Debug("webhook memo names unknown item", zap.String("item_id", itemID))
		return
	}

	delta := tx.TokenDelta(s.cfg.TokenMint, s.cfg.TreasuryAddress)
	if delta.Sign() <= 0 {
		return
	}

	// The push payload doesn't carry the client's reference parameter, so
	// re-derive which purchase attempt this is: one of the transaction's
	// account keys must be a reference we bound to this same item.
	reference := s.findBoundReference(ctx, tx, itemID)
	if reference == "" {
		s.log.Debug("no bound reference among account keys",
			zap.String("item_id", itemID),
			zap.String("signature", tx.TxSignature()),
		)
		return
	}

	buyer := ResolveBuyer(tx, s.cfg.TokenMint, s.cfg.TreasuryAddress)
	if buyer == "" {
		s.log.Warn("could not resolve buyer wallet", zap.String("signature", tx.TxSignature()))
		return
	}

	sig := tx.TxSignature()
	if err := s.entitlements.GrantMany(ctx, buyer, purchase.ItemIDs, sig); err != nil {
		s.log.Error("webhook grant failed",
			zap.String("wallet", buyer),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.Publish(ctx, events.StreamPayments, events.Event{
		Type: events.EventPaymentConfirmed,
		Payload: map[string]any{
			"reference": reference,
			"wallet":    buyer,
			"item_id":   itemID,
			"items":     purchase.ItemIDs,
			"signature": sig,
		},
	}); err != nil {
		s.log.Warn("failed to publish payment event", zap.Error(err))
	}

	s.log.Info("webhook payment confirmed",
		zap.String("wallet", buyer),
		zap.String("item_id", itemID),
		zap.String("reference", reference),
		zap.String("signature", sig),
	)
}

// extractItemID pulls the item id out of a "<app>:<itemId>" memo embedded
// in the transaction logs. The memo program quotes the memo inside a
// larger log line, so the id ends at a quote, a colon (attribution
// suffix), or whitespace.
func (s *WebhookService) extractItemID(logs []string) string {
	prefix := s.cfg.AppTag + ":"
	for _, line := range logs {
		idx := strings.Index(line, prefix)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(prefix):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r == '"' || r == ':' || r == ' ' || r == '\t'
		})
		if end == -1 {
			end = len(rest)
		}
		if end > 0 {
			return rest[:end]
		}
	}
	return ""
}

func (s *WebhookService) findBoundReference(ctx context.Context, tx *models.WebhookTransaction, itemID string) string {
	for _, key := range tx.Transaction.Transaction.Message.AccountKeys {
		if key.Pubkey == "" || key.Pubkey == s.cfg.TreasuryAddress {
			continue
		}
		bound, err := s.references.Lookup(ctx, key.Pubkey)
		if err != nil {
			s.log.Warn("reference lookup failed", zap.Error(err))
			continue
		}
		if bound == itemID {
			return key.Pubkey
		}
	}
	return ""
}

// ResolveBuyer determines the paying wallet from a pushed transaction.
// Contract: first non-empty of
//
//	1. the owner of a pre-balance token account for the mint that is not
//	   the treasury (the account the tokens left),
//	2. the decoded transfer's from-wallet,
//	3. the fee payer.
func ResolveBuyer(tx *models.WebhookTransaction, mint, treasury string) string {
	for _, b := range tx.Meta.PreTokenBalances {
		if b.Mint == mint && b.Owner != "" && b.Owner != treasury {
			return b.Owner
		}
	}
	for _, tr := range tx.TokenTransfers {
		if tr.Mint == mint && tr.FromUserAccount != "" {
			return tr.FromUserAccount
		}
	}
	if tx.FeePayer != "" {
		return tx.FeePayer
	}
	return tx.Transaction.FeePayer()
}
