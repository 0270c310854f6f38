// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for founder pitches,
// pitch views and pitch unlocks, including the filtered investor feed.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// PitchFilter narrows the investor feed. Empty fields do not filter.
type PitchFilter struct {
	Sector   string
	Stage    string
	Location string
	Offset   int
	Limit    int
}

// CreatePitch inserts p, assigning an ID when empty.
func CreatePitch(ctx context.Context, db *gorm.DB, p *domain.Pitch) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPitch fetches a pitch with its startup preloaded.
func GetPitch(ctx context.Context, db *gorm.DB, id string) (*domain.Pitch, error) {
	var p domain.Pitch
	if err := db.WithContext(ctx).Preload("Startup").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPublishedPitch fetches a pitch only when it is published.
func GetPublishedPitch(ctx context.Context, db *gorm.DB, id string) (*domain.Pitch, error) {
	var p domain.Pitch
	err := db.WithContext(ctx).
		Preload("Startup").
		Where("id = ? AND status = ?", id, domain.PitchPublished).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOwnedPitch fetches a pitch whose startup belongs to founderID.
func GetOwnedPitch(ctx context.Context, db *gorm.DB, id, founderID string) (*domain.Pitch, error) {
	var p domain.Pitch
	err := db.WithContext(ctx).
		Preload("Startup").
		Joins("JOIN startups ON startups.id = pitches.startup_id").
		Where("pitches.id = ? AND startups.founder_id = ?", id, founderID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PublishPitch marks p published and archives any other published pitch of
// the same type for the same startup, in one transaction.
func PublishPitch(ctx context.Context, db *gorm.DB, p *domain.Pitch, fields map[string]any) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Pitch{}).
			Where("startup_id = ? AND type = ? AND status = ? AND id <> ?", p.StartupID, p.Type, domain.PitchPublished, p.ID).
			Updates(map[string]any{"status": domain.PitchArchived, "updated_at": now}).Error; err != nil {
			return err
		}
		if fields == nil {
			fields = map[string]any{}
		}
		fields["status"] = domain.PitchPublished
		fields["updated_at"] = now
		if err := mustAffect(tx.Model(&domain.Pitch{}).Where("id = ?", p.ID).Updates(fields)); err != nil {
			return err
		}
		return tx.Where("id = ?", p.ID).First(p).Error
	})
}

// ListPublishedPitches returns a page of published pitches matching f with
// their startups preloaded, newest first, plus the total match count.
func ListPublishedPitches(ctx context.Context, db *gorm.DB, f PitchFilter) ([]domain.Pitch, int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Pitch{}).
		Joins("JOIN startups ON startups.id = pitches.startup_id").
		Where("pitches.status = ?", domain.PitchPublished)
	if s := strings.TrimSpace(f.Sector); s != "" {
		q = q.Where("LOWER(startups.sectors) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Stage); s != "" {
		q = q.Where("startups.stage = ?", s)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("LOWER(startups.location) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Pitch
	err := q.Preload("Startup").
		Order("pitches.created_at desc").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&out).Error
	return out, total, err
}

// InsertPitchView records a first view of pitchID by investorID. It reports
// false, without error, when the pair was already recorded.
func InsertPitchView(ctx context.Context, db *gorm.DB, pitchID, investorID string) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.PitchView{
			ID:         uuid.NewString(),
			PitchID:    pitchID,
			InvestorID: investorID,
			CreatedAt:  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementPitchViewCount bumps the aggregate view counter on a pitch.
func IncrementPitchViewCount(ctx context.Context, db *gorm.DB, pitchID string) error {
	return db.WithContext(ctx).
		Model(&domain.Pitch{}).
		Where("id = ?", pitchID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// HasPitchView reports whether investorID already viewed pitchID.
func HasPitchView(ctx context.Context, db *gorm.DB, pitchID, investorID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PitchView{}).
		Where("pitch_id = ? AND investor_id = ?", pitchID, investorID).
		Count(&n).Error
	return n > 0, err
}

// HasUnlock reports whether founderID purchased a 5 minute slot for startupID.
func HasUnlock(ctx context.Context, db *gorm.DB, startupID, founderID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PitchUnlock{}).
		Where("startup_id = ? AND founder_id = ?", startupID, founderID).
		Count(&n).Error
	return n > 0, err
}

// CreateUnlockIfAbsent records an unlock, reporting false when the startup was
// already unlocked for the founder.
func CreateUnlockIfAbsent(ctx context.Context, db *gorm.DB, u *domain.PitchUnlock) (bool, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListUnlocks returns the founder's unlocks, newest first.
func ListUnlocks(ctx context.Context, db *gorm.DB, founderID string) ([]domain.PitchUnlock, error) {
	var out []domain.PitchUnlock
	err := db.WithContext(ctx).
		Where("founder_id = ?", founderID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
