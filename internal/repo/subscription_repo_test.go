package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestLatestSubscription_PicksGreatestExpiry(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	seedUser(t, db, "i1", domain.RoleInvestor)

	if _, err := LatestSubscription(ctx, db, "i1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now().UTC()
	rows := []*domain.Subscription{
		{InvestorID: "i1", PlanType: domain.PlanMonthly, AppleTransactionID: "a", AppleOriginalTransactionID: "oa", Status: domain.SubscriptionActive, ExpiresAt: now.Add(24 * time.Hour)},
		{InvestorID: "i1", PlanType: domain.PlanAnnual, AppleTransactionID: "b", AppleOriginalTransactionID: "ob", Status: domain.SubscriptionCancelled, ExpiresAt: now.Add(48 * time.Hour)},
	}
	for _, s := range rows {
		if err := UpsertSubscription(ctx, db, s); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	got, err := LatestSubscription(ctx, db, "i1")
	if err != nil || got.AppleTransactionID != "b" {
		t.Fatalf("latest = %+v %v", got, err)
	}
}

func TestUpsertSubscription_RenewalUpdatesSameRow(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	seedUser(t, db, "i1", domain.RoleInvestor)

	now := time.Now().UTC()
	first := &domain.Subscription{InvestorID: "i1", PlanType: domain.PlanMonthly, AppleTransactionID: "t1", AppleOriginalTransactionID: "orig", Status: domain.SubscriptionActive, ExpiresAt: now.Add(time.Hour)}
	if err := UpsertSubscription(ctx, db, first); err != nil {
		t.Fatalf("first: %v", err)
	}
	renewal := &domain.Subscription{InvestorID: "i1", PlanType: domain.PlanMonthly, AppleTransactionID: "t2", AppleOriginalTransactionID: "orig", Status: domain.SubscriptionActive, ExpiresAt: now.Add(30 * 24 * time.Hour)}
	if err := UpsertSubscription(ctx, db, renewal); err != nil {
		t.Fatalf("renewal: %v", err)
	}
	if renewal.ID != first.ID {
		t.Fatalf("renewal created a new row: %s vs %s", renewal.ID, first.ID)
	}
	var n int64
	db.Model(&domain.Subscription{}).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d; want 1", n)
	}

	if err := MarkSubscriptionExpired(ctx, db, first.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	got, _ := LatestSubscription(ctx, db, "i1")
	if got.Status != domain.SubscriptionExpired || got.AppleTransactionID != "t2" {
		t.Fatalf("after expire = %+v", got)
	}
}
