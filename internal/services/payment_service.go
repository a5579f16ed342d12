package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/solmate-app/backend/internal/catalog"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/solana"
	"github.com/solmate-app/backend/internal/store"
	"go.uber.org/zap"
)

var (
	ErrUnknownItem       = errors.New("unknown_item")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrReferenceNotBound = errors.New("reference_not_bound")
)

// ChainReader is the slice of the RPC client the payment flow needs.
type ChainReader interface {
	GetMintDecimals(ctx context.Context, mint string) (int, error)
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

const verifySignatureLimit = 50

// PaymentService implements the pay-to-unlock flow: intent creation
// (reference + pay URL) and on-chain verification with idempotent
// entitlement granting.
type PaymentService struct {
	chain        ChainReader
	catalog      *catalog.Catalog
	references   store.ReferenceStore
	entitlements store.EntitlementStore
	cfg          *config.Config
	log          *zap.Logger
}

func NewPaymentService(
	chain ChainReader,
	cat *catalog.Catalog,
	references store.ReferenceStore,
	entitlements store.EntitlementStore,
	cfg *config.Config,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		chain:        chain,
		catalog:      cat,
		references:   references,
		entitlements: entitlements,
		cfg:          cfg,
		log:          log,
	}
}

// Memo renders the on-chain memo for a catalog id. The format is a
// contract: "<app>:<itemId>", matched verbatim against transaction logs
// at verification time. Item ids must not contain colons.
func (s *PaymentService) Memo(itemID string) string {
	return s.cfg.AppTag + ":" + itemID
}

type PaymentIntent struct {
	Reference    string `json:"reference"`
	URL          string `json:"url"`
	UniversalURL string `json:"universalUrl"`
}

// Create resolves the item or bundle, generates a fresh reference, binds
// it to the item for the payment window, and returns the payment-request
// URIs. An optional attribution tag is appended to the memo for referral
// tracking; the verifier matches on the "<app>:<itemId>" prefix either way.
func (s *PaymentService) Create(ctx context.Context, wallet, itemID, attribution string) (*PaymentIntent, error) {
	purchase, err := s.catalog.Resolve(itemID)
	if err != nil {
		return nil, ErrUnknownItem
	}

	// Amount in the URI is whole-token units, truncated.
	amount, err := solana.ParseUnits(purchase.Price, 0)
	if err != nil || amount.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}

	reference, err := solana.NewReference()
	if err != nil {
		return nil, err
	}

	if err := s.references.Bind(ctx, reference, itemID); err != nil {
		return nil, fmt.Errorf("bind reference: %w", err)
	}

	memo := s.Memo(itemID)
	if attribution != "" {
		memo += ":ref=" + attribution
	}

	payURL := solana.BuildPayURL(solana.PayURLParams{
		Recipient: s.cfg.TreasuryAddress,
		Mint:      s.cfg.TokenMint,
		Amount:    amount,
		Reference: reference,
		Label:     s.cfg.AppName,
		Message:   "Unlock " + purchase.Title,
		Memo:      memo,
	})

	s.log.Info("payment intent created",
		zap.String("wallet", wallet),
		zap.String("item_id", itemID),
		zap.String("reference", reference),
	)

	return &PaymentIntent{
		Reference:    reference,
		URL:          payURL,
		UniversalURL: solana.BuildUniversalURL(s.cfg.UniversalLinkBase, payURL),
	}, nil
}

type VerifyResult struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Verify scans the reference account's recent transaction history for a
// transfer that pays for itemID, and grants entitlements exactly once on
// the first match. Terminal outcomes:
//
//	matched  - a qualifying transaction was found and grants were upserted
//	no-sigs  - nothing references the reference account yet
//	no-match - candidates exist but none satisfies every check
//
// no-sigs and no-match are normal poll outcomes, not errors. Each call is
// independent and idempotent, so concurrent or repeated verification of
// the same purchase cannot double-grant: the entitlement upsert absorbs it.
func (s *PaymentService) Verify(ctx context.Context, wallet, itemID, reference string) (*VerifyResult, error) {
	purchase, err := s.catalog.Resolve(itemID)
	if err != nil {
		return nil, ErrUnknownItem
	}

	decimals, err := s.chain.GetMintDecimals(ctx, s.cfg.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("resolve mint decimals: %w", err)
	}

	expected, err := solana.ParseUnits(purchase.Price, decimals)
	if err != nil || expected.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}

	// The reference must have been bound to this item at create time;
	// otherwise a caller could claim an unrelated item using someone
	// else's reference.
	boundItem, err := s.references.Lookup(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("lookup reference: %w", err)
	}
	if boundItem != itemID {
		return nil, ErrReferenceNotBound
	}

	sigs, err := s.chain.GetSignaturesForAddress(ctx, reference, verifySignatureLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch signatures: %w", err)
	}
	if len(sigs) == 0 {
		return &VerifyResult{OK: false, Reason: "no-sigs"}, nil
	}

	memo := s.Memo(itemID)

	for _, sig := range sigs {
		if sig.Err != nil {
			continue
		}

		tx, err := s.chain.GetTransaction(ctx, sig.Signature)
		if err != nil {
			s.log.Warn("failed to fetch candidate transaction",
				zap.String("signature", sig.Signature), zap.Error(err))
			continue
		}
		if tx == nil || tx.Meta.Err != nil {
			continue
		}

		if !tx.HasAccount(reference) {
			continue
		}
		if !tx.HasAccount(s.cfg.TreasuryAddress) {
			continue
		}
		if !tx.HasMemoLog(memo) {
			continue
		}
		if tx.TokenDelta(s.cfg.TokenMint, s.cfg.TreasuryAddress).Cmp(expected) < 0 {
			continue
		}

		if err := s.entitlements.GrantMany(ctx, wallet, purchase.ItemIDs, sig.Signature); err != nil {
			return nil, fmt.Errorf("grant entitlements: %w", err)
		}

		s.log.Info("payment verified",
			zap.String("wallet", wallet),
			zap.String("item_id", itemID),
			zap.String("signature", sig.Signature),
		)

		return &VerifyResult{OK: true, Signature: sig.Signature}, nil
	}

	return &VerifyResult{OK: false, Reason: "no-match"}, nil
}
