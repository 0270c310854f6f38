package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func TestListPublishedPitches_FiltersAndPaging(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedStartup(t, db, "s1", "f1", func(s *domain.Startup) {
		s.Sectors = domain.StringList{"FinTech", "AI"}
		s.Location = "Berlin, Germany"
	})
	seedStartup(t, db, "s2", "f1", func(s *domain.Startup) {
		s.Sectors = domain.StringList{"Health"}
		s.Stage = "series_a"
		s.Location = "Austin, TX"
	})
	seedPitch(t, db, "p1", "s1", domain.PitchPublished)
	seedPitch(t, db, "p2", "s2", domain.PitchPublished)
	seedPitch(t, db, "p3", "s2", domain.PitchDraft)

	all, total, err := ListPublishedPitches(ctx, db, PitchFilter{Limit: 20})
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("all = %d/%d %v", len(all), total, err)
	}
	if all[0].Startup.ID == "" {
		t.Fatalf("startup should be preloaded")
	}

	fin, total, _ := ListPublishedPitches(ctx, db, PitchFilter{Sector: "fintech", Limit: 20})
	if total != 1 || fin[0].ID != "p1" {
		t.Fatalf("sector filter = %+v", fin)
	}
	stage, total, _ := ListPublishedPitches(ctx, db, PitchFilter{Stage: "series_a", Limit: 20})
	if total != 1 || stage[0].ID != "p2" {
		t.Fatalf("stage filter = %+v", stage)
	}
	loc, total, _ := ListPublishedPitches(ctx, db, PitchFilter{Location: "berlin", Limit: 20})
	if total != 1 || loc[0].ID != "p1" {
		t.Fatalf("location filter = %+v", loc)
	}
	page, total, _ := ListPublishedPitches(ctx, db, PitchFilter{Limit: 1, Offset: 1})
	if total != 2 || len(page) != 1 {
		t.Fatalf("paging: total=%d len=%d", total, len(page))
	}
}

func TestPublishPitch_ArchivesPreviousOfSameType(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedStartup(t, db, "s1", "f1")
	seedPitch(t, db, "old", "s1", domain.PitchPublished)
	draft := seedPitch(t, db, "new", "s1", domain.PitchDraft)

	if err := PublishPitch(ctx, db, draft, map[string]any{"duration_seconds": 30}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if draft.Status != domain.PitchPublished || draft.DurationSeconds != 30 {
		t.Fatalf("refreshed pitch = %+v", draft)
	}
	old, _ := GetPitch(ctx, db, "old")
	if old.Status != domain.PitchArchived {
		t.Fatalf("old pitch status = %q; want archived", old.Status)
	}
}

func TestGetOwnedPitch_RejectsOtherFounder(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedUser(t, db, "f2", domain.RoleFounder)
	seedStartup(t, db, "s1", "f1")
	seedPitch(t, db, "p1", "s1", domain.PitchDraft)

	if _, err := GetOwnedPitch(ctx, db, "p1", "f1"); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := GetOwnedPitch(ctx, db, "p1", "f2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-owner: expected ErrNotFound, got %v", err)
	}
	if _, err := GetPublishedPitch(ctx, db, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("draft must not be visible, got %v", err)
	}
}

func TestInsertPitchView_Dedup(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedUser(t, db, "f1", domain.RoleFounder)
	seedStartup(t, db, "s1", "f1")
	seedPitch(t, db, "p1", "s1", domain.PitchPublished)

	first, err := InsertPitchView(ctx, db, "p1", "i1")
	if err != nil || !first {
		t.Fatalf("first view = %v %v", first, err)
	}
	again, err := InsertPitchView(ctx, db, "p1", "i1")
	if err != nil || again {
		t.Fatalf("second view = %v %v; want false, nil", again, err)
	}
	seen, _ := HasPitchView(ctx, db, "p1", "i1")
	if !seen {
		t.Fatalf("HasPitchView = false")
	}
}

func TestUnlocks(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	ok, _ := HasUnlock(ctx, db, "s1", "f1")
	if ok {
		t.Fatalf("unexpected unlock")
	}
	created, err := CreateUnlockIfAbsent(ctx, db, &domain.PitchUnlock{StartupID: "s1", FounderID: "f1", ProductID: domain.UnlockProductID, AppleTransactionID: "tx1"})
	if err != nil || !created {
		t.Fatalf("create unlock = %v %v", created, err)
	}
	created, err = CreateUnlockIfAbsent(ctx, db, &domain.PitchUnlock{StartupID: "s1", FounderID: "f1", ProductID: domain.UnlockProductID, AppleTransactionID: "tx2"})
	if err != nil || created {
		t.Fatalf("duplicate unlock = %v %v", created, err)
	}
	list, _ := ListUnlocks(ctx, db, "f1")
	if len(list) != 1 || list[0].AppleTransactionID != "tx1" {
		t.Fatalf("unlocks = %+v", list)
	}
}
