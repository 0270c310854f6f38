package services

import (
	"context"
	"strings"
	"testing"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/storage"
)

func newPitchService(t *testing.T) *PitchService {
	t.Helper()
	db := newTestDB(t)
	return &PitchService{DB: db, Resolver: newResolver(db), Storage: fakeSigner{}}
}

func TestPitchService_UploadURL(t *testing.T) {
	svc := newPitchService(t)
	ctx := context.Background()
	founder := seedUser(t, svc.DB, domain.RoleFounder, 0)
	st := seedStartup(t, svc.DB, founder.UserID)

	ticket, err := svc.UploadURL(ctx, founder.UserID, UploadRequest{StartupID: st.ID, Type: domain.PitchTypeFree, Filename: "pitch.mp4"})
	if err != nil {
		t.Fatalf("upload url: %v", err)
	}
	if !strings.HasPrefix(ticket.UploadURL, "https://storage.test/put/videos/") || !strings.HasSuffix(ticket.UploadURL, "/pitch.mp4") {
		t.Fatalf("upload url = %q", ticket.UploadURL)
	}
	p, err := repo.GetPitch(ctx, svc.DB, ticket.VideoID)
	if err != nil || p.Status != domain.PitchDraft {
		t.Fatalf("draft = %+v, %v", p, err)
	}

	other := seedUser(t, svc.DB, domain.RoleFounder, 0)
	_, err = svc.UploadURL(ctx, other.UserID, UploadRequest{StartupID: st.ID, Type: domain.PitchTypeFree, Filename: "x.mp4"})
	wantKind(t, err, ErrNotFound)

	_, err = svc.UploadURL(ctx, founder.UserID, UploadRequest{StartupID: st.ID, Type: "1min", Filename: "x.mp4"})
	wantKind(t, err, ErrInvalidInput)
}

func TestPitchService_UploadURL_PaidNeedsUnlock(t *testing.T) {
	svc := newPitchService(t)
	ctx := context.Background()
	founder := seedUser(t, svc.DB, domain.RoleFounder, 0)
	st := seedStartup(t, svc.DB, founder.UserID)
	req := UploadRequest{StartupID: st.ID, Type: domain.PitchTypePaid, Filename: "long.mp4"}

	_, err := svc.UploadURL(ctx, founder.UserID, req)
	wantKind(t, err, ErrPaymentRequired)

	if _, err := repo.CreateUnlockIfAbsent(ctx, svc.DB, &domain.PitchUnlock{StartupID: st.ID, FounderID: founder.UserID, ProductID: domain.UnlockProductID}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UploadURL(ctx, founder.UserID, req); err != nil {
		t.Fatalf("after unlock: %v", err)
	}
}

func TestPitchService_UploadURL_StorageDisabled(t *testing.T) {
	svc := newPitchService(t)
	svc.Storage = fakeSigner{err: storage.ErrDisabled}
	founder := seedUser(t, svc.DB, domain.RoleFounder, 0)
	st := seedStartup(t, svc.DB, founder.UserID)

	_, err := svc.UploadURL(context.Background(), founder.UserID, UploadRequest{StartupID: st.ID, Type: domain.PitchTypeFree, Filename: "a.mp4"})
	wantKind(t, err, ErrUpstream)
}

func TestPitchService_Publish_DurationLimits(t *testing.T) {
	svc := newPitchService(t)
	ctx := context.Background()
	founder := seedUser(t, svc.DB, domain.RoleFounder, 0)
	st := seedStartup(t, svc.DB, founder.UserID)
	p := seedPitch(t, svc.DB, st.ID, domain.PitchDraft)

	_, err := svc.Publish(ctx, founder.UserID, p.ID, MaxFreePitchSeconds+1)
	wantKind(t, err, ErrInvalidInput)

	got, err := svc.Publish(ctx, founder.UserID, p.ID, 28)
	if err != nil || got.Status != domain.PitchPublished {
		t.Fatalf("publish = %+v, %v", got, err)
	}
	_, err = svc.Publish(ctx, seedUser(t, svc.DB, domain.RoleFounder, 0).UserID, p.ID, 10)
	wantKind(t, err, ErrNotFound)
}

func TestPitchService_FeedAndViews(t *testing.T) {
	svc := newPitchService(t)
	ctx := context.Background()
	founder := seedUser(t, svc.DB, domain.RoleFounder, 0)
	st := seedStartup(t, svc.DB, founder.UserID)
	p := seedPitch(t, svc.DB, st.ID, domain.PitchPublished)
	q := seedPitch(t, svc.DB, st.ID, domain.PitchPublished)
	inv := seedUser(t, svc.DB, domain.RoleInvestor, 1)

	feed, err := svc.Feed(ctx, inv.UserID, repo.PitchFilter{})
	if err != nil || feed.Total != 2 || feed.Access.FreeViewsRemaining != 1 {
		t.Fatalf("feed = %+v, %v", feed, err)
	}

	d, err := svc.Get(ctx, inv.UserID, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.AlreadyViewed || d.Access.FreeViewsRemaining != 0 || d.ViewCount != 1 || d.VideoURL == "" {
		t.Fatalf("detail = %+v", d)
	}

	r, err := svc.View(ctx, inv.UserID, p.ID)
	if err != nil || !r.AlreadyViewed || r.FreeViewsRemaining != 0 {
		t.Fatalf("repeat view = %+v, %v", r, err)
	}

	_, err = svc.Get(ctx, inv.UserID, q.ID)
	wantKind(t, err, ErrPaymentRequired)
	_, err = svc.Feed(ctx, inv.UserID, repo.PitchFilter{})
	wantKind(t, err, ErrPaymentRequired)

	dash, err := svc.Dashboard(ctx, founder.UserID)
	if err != nil || len(dash.Startups) != 1 || len(dash.Startups[0].Pitches) != 2 || dash.Stats.TotalViews != 1 {
		t.Fatalf("dashboard = %+v, %v", dash, err)
	}
}
