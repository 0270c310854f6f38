package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func seedTalent(t *testing.T, db *gorm.DB, id, status string, skills ...string) *domain.TalentPitch {
	t.Helper()
	ctx := context.Background()
	seedUser(t, db, id, domain.RoleTalent)
	if err := UpdateProfile(ctx, db, &domain.TalentProfile{}, id, map[string]any{
		"status":            status,
		"skills":            domain.StringList(skills),
		"experience_level":  "senior",
		"remote_preference": "remote",
		"location":          "Lisbon, Portugal",
	}); err != nil {
		t.Fatalf("profile %s: %v", id, err)
	}
	p := &domain.TalentPitch{ID: "tp-" + id, TalentID: id, VideoKey: "videos/" + id + "/a.mp4", Status: domain.PitchPublished}
	if err := CreateTalentPitch(ctx, db, p); err != nil {
		t.Fatalf("pitch %s: %v", id, err)
	}
	return p
}

func TestListTalentFeed_OnlyApprovedAndSkillOverlap(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	seedTalent(t, db, "t1", domain.TalentApproved, "Go", "Postgres")
	seedTalent(t, db, "t2", domain.TalentApproved, "Swift")
	seedTalent(t, db, "t3", domain.TalentPending, "Go")

	all, total, err := ListTalentFeed(ctx, db, TalentFilter{Limit: 20})
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("feed = %d/%d %v", len(all), total, err)
	}
	for _, row := range all {
		if row.Profile.Status != domain.TalentApproved {
			t.Fatalf("unapproved talent leaked: %+v", row.Profile)
		}
	}

	goOnly, total, _ := ListTalentFeed(ctx, db, TalentFilter{Skills: []string{"go"}, Limit: 20})
	if total != 1 || goOnly[0].Pitch.TalentID != "t1" {
		t.Fatalf("skill filter = %+v", goOnly)
	}
	either, total, _ := ListTalentFeed(ctx, db, TalentFilter{Skills: []string{"swift", "rust"}, Limit: 20})
	if total != 1 || either[0].Pitch.TalentID != "t2" {
		t.Fatalf("overlap filter = %+v", either)
	}
	none, total, _ := ListTalentFeed(ctx, db, TalentFilter{Location: "tokyo", Limit: 20})
	if total != 0 || len(none) != 0 {
		t.Fatalf("location filter = %+v", none)
	}
	loc, total, _ := ListTalentFeed(ctx, db, TalentFilter{Location: "lisbon", ExperienceLevel: "senior", RemotePreference: "remote", Limit: 20})
	if total != 2 || len(loc) != 2 {
		t.Fatalf("combined filter total = %d", total)
	}
}

func TestGetVisibleTalentPitch(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	approved := seedTalent(t, db, "t1", domain.TalentApproved, "Go")
	pending := seedTalent(t, db, "t2", domain.TalentPending, "Go")

	p, prof, err := GetVisibleTalentPitch(ctx, db, approved.ID)
	if err != nil || p.ID != approved.ID || prof.UserID != "t1" {
		t.Fatalf("visible = %+v %+v %v", p, prof, err)
	}
	if _, _, err := GetVisibleTalentPitch(ctx, db, pending.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending talent must be hidden, got %v", err)
	}
}

func TestGetCurrentTalentPitch_PrefersPublished(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()
	seedUser(t, db, "t1", domain.RoleTalent)

	if _, err := GetCurrentTalentPitch(ctx, db, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no pitch, got %v", err)
	}
	draft := &domain.TalentPitch{ID: "d", TalentID: "t1", VideoKey: "k", Status: domain.PitchDraft}
	if err := CreateTalentPitch(ctx, db, draft); err != nil {
		t.Fatalf("draft: %v", err)
	}
	got, err := GetCurrentTalentPitch(ctx, db, "t1")
	if err != nil || got.ID != "d" {
		t.Fatalf("current = %+v %v", got, err)
	}
	pub := &domain.TalentPitch{ID: "p", TalentID: "t1", VideoKey: "k2", Status: domain.PitchPublished}
	if err := CreateTalentPitch(ctx, db, pub); err != nil {
		t.Fatalf("published: %v", err)
	}
	got, _ = GetCurrentTalentPitch(ctx, db, "t1")
	if got.ID != "p" {
		t.Fatalf("current = %q; want published pitch", got.ID)
	}
}
