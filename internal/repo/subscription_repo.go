// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for investor
// subscriptions.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// LatestSubscription returns the investor's subscription with the greatest
// expires_at. That row is authoritative for entitlement decisions.
func LatestSubscription(ctx context.Context, db *gorm.DB, investorID string) (*domain.Subscription, error) {
	var s domain.Subscription
	err := db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("expires_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSubscription inserts s or, when a row with the same original
// transaction id already exists for the investor, updates it in place so
// renewals do not create duplicates. s is refreshed from the stored row.
func UpsertSubscription(ctx context.Context, db *gorm.DB, s *domain.Subscription) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Subscription
		q := tx.Where("investor_id = ?", s.InvestorID)
		if s.AppleOriginalTransactionID != "" {
			q = q.Where("(apple_original_transaction_id = ? OR apple_transaction_id = ?)", s.AppleOriginalTransactionID, s.AppleTransactionID)
		} else {
			q = q.Where("apple_transaction_id = ?", s.AppleTransactionID)
		}
		err := q.First(&existing).Error
		switch {
		case err == nil:
			fields := map[string]any{
				"plan_type":                     s.PlanType,
				"apple_transaction_id":          s.AppleTransactionID,
				"apple_original_transaction_id": s.AppleOriginalTransactionID,
				"status":                        s.Status,
				"expires_at":                    s.ExpiresAt,
				"updated_at":                    now,
			}
			if err := tx.Model(&domain.Subscription{}).Where("id = ?", existing.ID).Updates(fields).Error; err != nil {
				if IsDuplicate(err) {
					return ErrDuplicate
				}
				return err
			}
			return tx.Where("id = ?", existing.ID).First(s).Error
		case errors.Is(err, ErrNotFound):
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
			if err := tx.Create(s).Error; err != nil {
				if IsDuplicate(err) {
					return ErrDuplicate
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
}

// MarkSubscriptionExpired flips an active row to expired.
func MarkSubscriptionExpired(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ? AND status = ?", id, domain.SubscriptionActive).
		Updates(map[string]any{"status": domain.SubscriptionExpired, "updated_at": time.Now().UTC()}).Error
}
