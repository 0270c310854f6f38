package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name(), uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newSchemaDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, Models()...)
}

func seedUser(t *testing.T, db *gorm.DB, id string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, FirebaseUID: "fb-" + id, Email: id + "@example.com", Role: role}
	if err := CreateUserWithProfile(context.Background(), db, u, 15); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedStartup(t *testing.T, db *gorm.DB, id, founderID string, mutate ...func(*domain.Startup)) *domain.Startup {
	t.Helper()
	s := &domain.Startup{ID: id, FounderID: founderID, Name: "Startup " + id, Stage: "seed"}
	for _, m := range mutate {
		m(s)
	}
	if err := CreateStartup(context.Background(), db, s); err != nil {
		t.Fatalf("seed startup %s: %v", id, err)
	}
	return s
}

func seedPitch(t *testing.T, db *gorm.DB, id, startupID, status string) *domain.Pitch {
	t.Helper()
	p := &domain.Pitch{ID: id, StartupID: startupID, Type: domain.PitchTypeFree, VideoKey: "videos/" + id + "/a.mp4", Status: status}
	if err := CreatePitch(context.Background(), db, p); err != nil {
		t.Fatalf("seed pitch %s: %v", id, err)
	}
	return p
}
