package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/caerus-app/caerus-backend/internal/auth"
	"github.com/caerus-app/caerus-backend/internal/config"
	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/iap"
	"github.com/caerus-app/caerus-backend/internal/notify"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/support"
)

// ---------- test helpers ----------

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newResolver(db *gorm.DB) *entitlement.Resolver {
	r := entitlement.NewResolver(db, config.LimitsConfig{
		FreePitchViews:       15,
		TalentDailyViewLimit: 5,
		TalentMonthlyDMLimit: 5,
	})
	r.Now = fixedNow
	return r
}

func seedUser(t *testing.T, db *gorm.DB, role domain.Role, freeViews int) entitlement.Principal {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{
		ID:          id,
		FirebaseUID: "fb-" + id,
		Email:       id + "@example.com",
		Role:        role,
		PushToken:   "ExponentPushToken[" + id + "]",
	}
	if err := repo.CreateUserWithProfile(context.Background(), db, u, freeViews); err != nil {
		t.Fatalf("seed %s: %v", role, err)
	}
	return entitlement.Principal{UserID: id, Role: role}
}

func tokenOf(id string) string { return "ExponentPushToken[" + id + "]" }

func seedStartup(t *testing.T, db *gorm.DB, founderID string) *domain.Startup {
	t.Helper()
	s := &domain.Startup{FounderID: founderID, Name: "Acme", Stage: "seed"}
	if err := repo.CreateStartup(context.Background(), db, s); err != nil {
		t.Fatalf("seed startup: %v", err)
	}
	return s
}

func seedPitch(t *testing.T, db *gorm.DB, startupID, status string) *domain.Pitch {
	t.Helper()
	p := &domain.Pitch{StartupID: startupID, Type: domain.PitchTypeFree, VideoKey: "videos/" + uuid.NewString() + "/a.mp4", Status: status}
	if err := repo.CreatePitch(context.Background(), db, p); err != nil {
		t.Fatalf("seed pitch: %v", err)
	}
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
	if err := repo.UpsertSubscription(context.Background(), db, s); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func setTalentStatus(t *testing.T, db *gorm.DB, talentID, status string) {
	t.Helper()
	err := db.Model(&domain.TalentProfile{}).Where("user_id = ?", talentID).
		Updates(map[string]any{"status": status, "onboarding_completed": true, "full_name": "Ada Lovelace"}).Error
	if err != nil {
		t.Fatalf("talent status: %v", err)
	}
}

// seedVisibleTalent returns an approved talent with a published pitch.
func seedVisibleTalent(t *testing.T, db *gorm.DB) (entitlement.Principal, *domain.TalentPitch) {
	t.Helper()
	talent := seedUser(t, db, domain.RoleTalent, 0)
	setTalentStatus(t, db, talent.UserID, domain.TalentApproved)
	p := &domain.TalentPitch{TalentID: talent.UserID, VideoKey: "videos/t/a.mp4", Headline: "Backend engineer", Status: domain.PitchPublished}
	if err := repo.CreateTalentPitch(context.Background(), db, p); err != nil {
		t.Fatalf("seed talent pitch: %v", err)
	}
	return talent, p
}

// recordingNotifier captures notifications instead of sending them.
type recordingNotifier struct {
	mu     sync.Mutex
	sent   []notify.Notification
	refuse bool
}

func (r *recordingNotifier) Notify(n notify.Notification) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return !r.refuse
}

func (r *recordingNotifier) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

type fakeSigner struct{ err error }

func (f fakeSigner) UploadURL(_ context.Context, key, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.test/put/" + key, nil
}

func (f fakeSigner) DownloadURL(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.test/get/" + key, nil
}

type fakeReceipts struct {
	receipt *iap.Receipt
	err     error
}

func (f fakeReceipts) Verify(context.Context, string) (*iap.Receipt, error) {
	return f.receipt, f.err
}

type fakeIdentity map[string]auth.Identity

func (f fakeIdentity) Verify(_ context.Context, tok string) (auth.Identity, error) {
	id, ok := f[tok]
	if !ok {
		return auth.Identity{}, errors.New("bad token")
	}
	return id, nil
}

type fakeResponder struct {
	reply support.Reply
	seen  []string
}

func (f *fakeResponder) Respond(_ context.Context, role, message string) support.Reply {
	f.seen = append(f.seen, role+":"+message)
	return f.reply
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func principal(id string, role domain.Role) entitlement.Principal {
	return entitlement.Principal{UserID: id, Role: role}
}
