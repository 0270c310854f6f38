package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

func talentProfileID(t *testing.T, svc *AdminService, userID string) string {
	t.Helper()
	p, err := repo.GetTalentProfile(context.Background(), svc.DB, userID)
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}

func TestAdminService_Review(t *testing.T) {
	db := newTestDB(t)
	svc := &AdminService{DB: db, Now: fixedNow}
	ctx := context.Background()

	a := seedUser(t, db, domain.RoleTalent, 0)
	b := seedUser(t, db, domain.RoleTalent, 0)
	seedUser(t, db, domain.RoleTalent, 0) // never finished onboarding
	setTalentStatus(t, db, a.UserID, domain.TalentPending)
	setTalentStatus(t, db, b.UserID, domain.TalentPending)

	page, err := svc.PendingTalent(ctx, 0, 0)
	if err != nil || page.Total != 2 || len(page.Profiles) != 2 || page.Limit != 20 {
		t.Fatalf("pending = %+v, %v", page, err)
	}

	aID, bID := talentProfileID(t, svc, a.UserID), talentProfileID(t, svc, b.UserID)
	approved, err := svc.Approve(ctx, aID)
	if err != nil || approved.Status != domain.TalentApproved || approved.ApprovedAt == nil {
		t.Fatalf("approve = %+v, %v", approved, err)
	}
	_, err = svc.Approve(ctx, aID)
	wantKind(t, err, ErrConflict)

	rejected, err := svc.Reject(ctx, bID, "  Portfolio link is broken ")
	if err != nil || rejected.Status != domain.TalentRejected || rejected.RejectionReason != "Portfolio link is broken" {
		t.Fatalf("reject = %+v, %v", rejected, err)
	}
	_, err = svc.Reject(ctx, uuid.NewString(), "")
	wantKind(t, err, ErrNotFound)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pending != 1 || stats.Approved != 1 || stats.Rejected != 1 || stats.Total != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestAdminService_SetAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := &AdminService{DB: db}
	ctx := context.Background()
	u := seedUser(t, db, domain.RoleFounder, 0)

	if err := svc.SetAdmin(ctx, "  "+u.UserID+"@EXAMPLE.com", true); err != nil {
		t.Fatalf("grant: %v", err)
	}
	got, err := repo.GetUser(ctx, db, u.UserID)
	if err != nil || !got.IsAdmin {
		t.Fatalf("user = %+v, %v", got, err)
	}
	wantKind(t, svc.SetAdmin(ctx, "", true), ErrInvalidInput)
	wantKind(t, svc.SetAdmin(ctx, "nobody@example.com", false), ErrNotFound)
}
