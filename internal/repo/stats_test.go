package repo

import (
	"context"
	"testing"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestFounderDashboardStats_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, err := FounderDashboardStats(context.Background(), db, "f1"); err == nil {
		t.Fatalf("expected error due to missing tables")
	}
}

func TestFounderDashboardStats_Aggregates(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedUser(t, db, "i1", domain.RoleInvestor)
	seedUser(t, db, "i2", domain.RoleInvestor)
	seedStartup(t, db, "s1", "f1")
	seedStartup(t, db, "s2", "f1")
	p1 := seedPitch(t, db, "p1", "s1", domain.PitchPublished)
	p2 := seedPitch(t, db, "p2", "s2", domain.PitchPublished)

	for _, v := range []struct{ pitch, inv string }{{"p1", "i1"}, {"p2", "i1"}, {"p2", "i2"}} {
		if _, err := InsertPitchView(ctx, db, v.pitch, v.inv); err != nil {
			t.Fatalf("view: %v", err)
		}
		if err := IncrementPitchViewCount(ctx, db, v.pitch); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}
	if _, _, err := FindOrCreateQAThread(ctx, db, p1, "i1"); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if _, _, err := FindOrCreateQAThread(ctx, db, p2, "i2"); err != nil {
		t.Fatalf("thread: %v", err)
	}

	st, err := FounderDashboardStats(ctx, db, "f1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalViews != 3 || st.UniqueInvestors != 2 || st.QuestionsReceived != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	empty, err := FounderDashboardStats(ctx, db, "nobody")
	if err != nil || empty != (FounderStats{}) {
		t.Fatalf("expected zero stats, got %+v %v", empty, err)
	}
}

func TestTalentDashboardStats(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "t1", domain.RoleTalent)
	seedUser(t, db, "f1", domain.RoleFounder)
	seedUser(t, db, "i1", domain.RoleInvestor)
	tp := &domain.TalentPitch{ID: "tp1", TalentID: "t1", VideoKey: "videos/x/a.mp4", Status: domain.PitchPublished, ViewCount: 4}
	if err := CreateTalentPitch(ctx, db, tp); err != nil {
		t.Fatalf("pitch: %v", err)
	}
	for _, v := range []string{"f1", "i1", "f1"} {
		if _, err := InsertTalentPitchView(ctx, db, "tp1", v); err != nil {
			t.Fatalf("view: %v", err)
		}
	}
	if _, _, err := FindOrCreateTalentThread(ctx, db, tp, "f1"); err != nil {
		t.Fatalf("thread: %v", err)
	}

	st, err := TalentDashboardStats(ctx, db, "t1", tp)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalViews != 4 || st.UniqueViewers != 2 || st.MessagesReceived != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	noPitch, err := TalentDashboardStats(ctx, db, "t1", nil)
	if err != nil || noPitch.TotalViews != 0 || noPitch.UniqueViewers != 0 || noPitch.MessagesReceived != 1 {
		t.Fatalf("unexpected stats without pitch: %+v %v", noPitch, err)
	}
}
