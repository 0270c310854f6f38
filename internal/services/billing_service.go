package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/iap"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// SubscriptionState is an investor's current subscription.
type SubscriptionState struct {
	HasSubscription bool                 `json:"has_subscription"`
	Subscription    *domain.Subscription `json:"subscription"`
}

// UnlockResult reports a verified 5 minute pitch purchase.
type UnlockResult struct {
	Unlocked  bool               `json:"unlocked"`
	PitchType string             `json:"pitch_type"`
	Created   bool               `json:"created"`
	Unlock    domain.PitchUnlock `json:"unlock"`
}

// BillingService verifies App Store purchases and records their effect.
type BillingService struct {
	DB       *gorm.DB
	Verifier iap.Verifier

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *BillingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *BillingService) span(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return otel.Tracer("services/BillingService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", userID)))
}

func (s *BillingService) verify(ctx context.Context, receipt string) (*iap.Receipt, error) {
	if receipt == "" {
		return nil, invalidf("receipt_data is required")
	}
	if s.Verifier == nil {
		return nil, upstreamf("receipt verification is not configured")
	}
	rec, err := s.Verifier.Verify(ctx, receipt)
	switch {
	case errors.Is(err, iap.ErrInvalidReceipt):
		return nil, invalidf("invalid receipt")
	case err != nil:
		return nil, upstreamf("receipt verification failed")
	}
	return rec, nil
}

// VerifySubscription validates an investor's subscription receipt and stores
// the transaction with the latest expiry. Renewals update the same row.
func (s *BillingService) VerifySubscription(ctx context.Context, investorID, receipt string) (*SubscriptionState, error) {
	ctx, span := s.span(ctx, "VerifySubscription", investorID)
	defer span.End()

	rec, err := s.verify(ctx, receipt)
	if err != nil {
		return nil, err
	}
	tx, ok := rec.LatestTransaction()
	if !ok || tx.ExpiresAt().IsZero() {
		return nil, invalidf("no subscription found in receipt")
	}
	span.SetAttributes(attribute.String("iap.product_id", tx.ProductID))

	now := s.now()
	sub := &domain.Subscription{
		InvestorID:                 investorID,
		PlanType:                   iap.PlanForProduct(tx.ProductID),
		AppleTransactionID:         tx.TransactionID,
		AppleOriginalTransactionID: tx.OriginalTransactionID,
		Status:                     domain.SubscriptionActive,
		ExpiresAt:                  tx.ExpiresAt().UTC(),
	}
	if !sub.ExpiresAt.After(now) {
		sub.Status = domain.SubscriptionExpired
	}
	if err := repo.UpsertSubscription(ctx, s.DB, sub); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, conflictf("transaction already belongs to another subscription")
		}
		return nil, err
	}
	return &SubscriptionState{HasSubscription: sub.IsActive(now), Subscription: sub}, nil
}

// VerifyUnlock validates a founder's 5 minute pitch purchase for an owned
// startup. A startup is unlocked at most once per founder.
func (s *BillingService) VerifyUnlock(ctx context.Context, founderID, startupID, receipt string) (*UnlockResult, error) {
	ctx, span := s.span(ctx, "VerifyUnlock", founderID)
	defer span.End()
	span.SetAttributes(attribute.String("startup.id", startupID))

	if _, err := repo.GetOwnedStartup(ctx, s.DB, startupID, founderID); err != nil {
		return nil, notFound(err, "startup")
	}
	rec, err := s.verify(ctx, receipt)
	if err != nil {
		return nil, err
	}
	tx, ok := rec.Purchase(domain.UnlockProductID)
	if !ok {
		return nil, invalidf("receipt does not contain %s", domain.UnlockProductID)
	}

	u := &domain.PitchUnlock{
		StartupID:          startupID,
		FounderID:          founderID,
		AppleTransactionID: tx.TransactionID,
		ProductID:          domain.UnlockProductID,
	}
	created, err := repo.CreateUnlockIfAbsent(ctx, s.DB, u)
	if err != nil {
		return nil, err
	}
	if !created {
		unlocks, err := repo.ListUnlocks(ctx, s.DB, founderID)
		if err != nil {
			return nil, err
		}
		for _, x := range unlocks {
			if x.StartupID == startupID {
				u = &x
				break
			}
		}
	}
	return &UnlockResult{Unlocked: true, PitchType: domain.PitchTypePaid, Created: created, Unlock: *u}, nil
}

// Current returns the authoritative subscription of the investor, marking it
// expired when it lapsed since the last read.
func (s *BillingService) Current(ctx context.Context, investorID string) (*SubscriptionState, error) {
	ctx, span := s.span(ctx, "Current", investorID)
	defer span.End()

	sub, err := repo.LatestSubscription(ctx, s.DB, investorID)
	if errors.Is(err, repo.ErrNotFound) {
		return &SubscriptionState{}, nil
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if sub.Status == domain.SubscriptionActive && !sub.ExpiresAt.After(now) {
		if err := repo.MarkSubscriptionExpired(ctx, s.DB, sub.ID); err != nil {
			return nil, err
		}
		sub.Status = domain.SubscriptionExpired
	}
	return &SubscriptionState{HasSubscription: sub.IsActive(now), Subscription: sub}, nil
}

// Unlocks lists the founder's purchased 5 minute slots.
func (s *BillingService) Unlocks(ctx context.Context, founderID string) ([]domain.PitchUnlock, error) {
	ctx, span := s.span(ctx, "Unlocks", founderID)
	defer span.End()

	return repo.ListUnlocks(ctx, s.DB, founderID)
}
