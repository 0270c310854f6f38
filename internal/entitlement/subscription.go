package entitlement

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// HasActiveSubscription reports whether the investor's latest subscription
// is active and unexpired at now. It never writes.
func HasActiveSubscription(ctx context.Context, db *gorm.DB, investorID string, now time.Time) (bool, error) {
	s, err := repo.LatestSubscription(ctx, db, investorID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.IsActive(now), nil
}

// Subscribed is HasActiveSubscription for any principal. Only investors hold
// subscriptions, so other roles return false without a query.
func Subscribed(ctx context.Context, db *gorm.DB, p Principal, now time.Time) (bool, error) {
	if p.Role != domain.RoleInvestor {
		return false, nil
	}
	return HasActiveSubscription(ctx, db, p.UserID, now)
}
