package entitlement

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caerus-app/caerus-backend/internal/config"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ent_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func newResolver(db *gorm.DB) *Resolver {
	r := NewResolver(db, config.LimitsConfig{
		FreePitchViews:       15,
		TalentDailyViewLimit: 5,
		TalentMonthlyDMLimit: 5,
	})
	r.Now = func() time.Time { return testNow }
	return r
}

func seedPrincipal(t *testing.T, db *gorm.DB, role domain.Role, freeViews int) Principal {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{ID: id, FirebaseUID: "fb-" + id, Email: id + "@example.com", Role: role}
	require.NoError(t, repo.CreateUserWithProfile(context.Background(), db, u, freeViews))
	return Principal{UserID: id, Role: role}
}

func seedPitch(t *testing.T, db *gorm.DB) *domain.Pitch {
	t.Helper()
	founder := seedPrincipal(t, db, domain.RoleFounder, 0)
	s := &domain.Startup{FounderID: founder.UserID, Name: "Acme", Stage: "seed"}
	require.NoError(t, repo.CreateStartup(context.Background(), db, s))
	p := &domain.Pitch{StartupID: s.ID, Type: domain.PitchTypeFree, VideoKey: "videos/x/a.mp4", Status: domain.PitchPublished}
	require.NoError(t, repo.CreatePitch(context.Background(), db, p))
	return p
}

func seedTalentPitch(t *testing.T, db *gorm.DB) *domain.TalentPitch {
	t.Helper()
	talent := seedPrincipal(t, db, domain.RoleTalent, 0)
	p := &domain.TalentPitch{TalentID: talent.UserID, VideoKey: "videos/t/a.mp4", Status: domain.PitchPublished}
	require.NoError(t, repo.CreateTalentPitch(context.Background(), db, p))
	return p
}

func subscribe(t *testing.T, db *gorm.DB, investorID string, expires time.Time) {
	t.Helper()
	s := &domain.Subscription{
		InvestorID:                 investorID,
		PlanType:                   domain.PlanMonthly,
		AppleTransactionID:         uuid.NewString(),
		AppleOriginalTransactionID: uuid.NewString(),
		Status:                     domain.SubscriptionActive,
		ExpiresAt:                  expires,
	}
	require.NoError(t, repo.UpsertSubscription(context.Background(), db, s))
}

func setCounters(t *testing.T, db *gorm.DB, p Principal, fields map[string]any) {
	t.Helper()
	model, err := recruiterModel(p)
	require.NoError(t, err)
	require.NoError(t, db.Model(model).Where("user_id = ?", p.UserID).Updates(fields).Error)
}
