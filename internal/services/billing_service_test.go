package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/iap"
)

func millis(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }

func subscriptionReceipt(expires ...time.Time) *iap.Receipt {
	rec := &iap.Receipt{}
	for i, e := range expires {
		rec.LatestReceiptInfo = append(rec.LatestReceiptInfo, iap.Transaction{
			TransactionID:         "tx-" + strconv.Itoa(i),
			OriginalTransactionID: "orig-1",
			ProductID:             "com.caerus.investor.monthly",
			ExpiresDateMS:         millis(e),
		})
	}
	return rec
}

func TestBillingService_VerifySubscription(t *testing.T) {
	db := newTestDB(t)
	inv := seedUser(t, db, domain.RoleInvestor, 15)
	svc := &BillingService{
		DB:       db,
		Verifier: fakeReceipts{receipt: subscriptionReceipt(testNow.Add(-time.Hour), testNow.Add(30*24*time.Hour))},
		Now:      fixedNow,
	}
	ctx := context.Background()

	st, err := svc.VerifySubscription(ctx, inv.UserID, "base64")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !st.HasSubscription || st.Subscription.PlanType != domain.PlanMonthly || st.Subscription.AppleTransactionID != "tx-1" {
		t.Fatalf("state = %+v", st.Subscription)
	}

	cur, err := svc.Current(ctx, inv.UserID)
	if err != nil || !cur.HasSubscription {
		t.Fatalf("current = %+v, %v", cur, err)
	}

	// A later read after expiry flips the stored status.
	svc.Now = func() time.Time { return testNow.Add(31 * 24 * time.Hour) }
	cur, err = svc.Current(ctx, inv.UserID)
	if err != nil || cur.HasSubscription || cur.Subscription.Status != domain.SubscriptionExpired {
		t.Fatalf("lapsed = %+v, %v", cur, err)
	}
}

func TestBillingService_VerifySubscription_Errors(t *testing.T) {
	db := newTestDB(t)
	inv := seedUser(t, db, domain.RoleInvestor, 15)
	ctx := context.Background()

	svc := &BillingService{DB: db, Now: fixedNow}
	_, err := svc.VerifySubscription(ctx, inv.UserID, "base64")
	wantKind(t, err, ErrUpstream)

	svc.Verifier = fakeReceipts{err: iap.ErrInvalidReceipt}
	_, err = svc.VerifySubscription(ctx, inv.UserID, "base64")
	wantKind(t, err, ErrInvalidInput)
	_, err = svc.VerifySubscription(ctx, inv.UserID, "")
	wantKind(t, err, ErrInvalidInput)

	svc.Verifier = fakeReceipts{err: errors.New("apple down")}
	_, err = svc.VerifySubscription(ctx, inv.UserID, "base64")
	wantKind(t, err, ErrUpstream)

	svc.Verifier = fakeReceipts{receipt: &iap.Receipt{}}
	_, err = svc.VerifySubscription(ctx, inv.UserID, "base64")
	wantKind(t, err, ErrInvalidInput)

	empty, err := svc.Current(ctx, inv.UserID)
	if err != nil || empty.HasSubscription || empty.Subscription != nil {
		t.Fatalf("no subscription = %+v, %v", empty, err)
	}
}

func TestBillingService_VerifyUnlock(t *testing.T) {
	db := newTestDB(t)
	founder := seedUser(t, db, domain.RoleFounder, 0)
	st := seedStartup(t, db, founder.UserID)
	rec := &iap.Receipt{}
	rec.Receipt.InApp = []iap.Transaction{{TransactionID: "u-1", ProductID: domain.UnlockProductID}}
	svc := &BillingService{DB: db, Verifier: fakeReceipts{receipt: rec}, Now: fixedNow}
	ctx := context.Background()

	first, err := svc.VerifyUnlock(ctx, founder.UserID, st.ID, "base64")
	if err != nil || !first.Created || first.PitchType != domain.PitchTypePaid {
		t.Fatalf("unlock = %+v, %v", first, err)
	}
	again, err := svc.VerifyUnlock(ctx, founder.UserID, st.ID, "base64")
	if err != nil || again.Created || again.Unlock.ID != first.Unlock.ID {
		t.Fatalf("repeat unlock = %+v, %v", again, err)
	}

	list, err := svc.Unlocks(ctx, founder.UserID)
	if err != nil || len(list) != 1 {
		t.Fatalf("unlocks = %+v, %v", list, err)
	}

	other := seedUser(t, db, domain.RoleFounder, 0)
	_, err = svc.VerifyUnlock(ctx, other.UserID, st.ID, "base64")
	wantKind(t, err, ErrNotFound)

	svc.Verifier = fakeReceipts{receipt: &iap.Receipt{}}
	_, err = svc.VerifyUnlock(ctx, founder.UserID, st.ID, "base64")
	wantKind(t, err, ErrInvalidInput)
}
