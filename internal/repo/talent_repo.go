// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for talent pitches,
// talent pitch views and the recruiter-facing talent feed.
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

// TalentFilter narrows the talent feed. Skills must already be case-folded;
// a pitch matches when its talent lists any of them.
type TalentFilter struct {
	Skills           []string
	ExperienceLevel  string
	CompensationType string
	Location         string
	RemotePreference string
	Offset           int
	Limit            int
}

// TalentFeedRow pairs a published talent pitch with its talent's profile.
type TalentFeedRow struct {
	Pitch   domain.TalentPitch
	Profile domain.TalentProfile
}

// CreateTalentPitch inserts p, assigning an ID when empty.
func CreateTalentPitch(ctx context.Context, db *gorm.DB, p *domain.TalentPitch) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(p).Error
}

// SaveTalentPitch persists every field of p.
func SaveTalentPitch(ctx context.Context, db *gorm.DB, p *domain.TalentPitch) error {
	p.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(p).Error
}

// GetCurrentTalentPitch returns the talent's published pitch, or the newest
// draft when nothing is published.
func GetCurrentTalentPitch(ctx context.Context, db *gorm.DB, talentID string) (*domain.TalentPitch, error) {
	for _, status := range []string{domain.PitchPublished, domain.PitchDraft} {
		var out []domain.TalentPitch
		err := db.WithContext(ctx).
			Where("talent_id = ? AND status = ?", talentID, status).
			Order("created_at desc").
			Limit(1).
			Find(&out).Error
		if err != nil {
			return nil, err
		}
		if len(out) == 1 {
			return &out[0], nil
		}
	}
	return nil, ErrNotFound
}

// GetOwnedTalentPitch fetches a talent pitch only when talentID owns it.
func GetOwnedTalentPitch(ctx context.Context, db *gorm.DB, id, talentID string) (*domain.TalentPitch, error) {
	var p domain.TalentPitch
	if err := db.WithContext(ctx).Where("id = ? AND talent_id = ?", id, talentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVisibleTalentPitch fetches a published pitch of approved talent.
func GetVisibleTalentPitch(ctx context.Context, db *gorm.DB, id string) (*domain.TalentPitch, *domain.TalentProfile, error) {
	var p domain.TalentPitch
	err := db.WithContext(ctx).
		Joins("JOIN talent_profiles ON talent_profiles.user_id = talent_pitches.talent_id").
		Where("talent_pitches.id = ? AND talent_pitches.status = ? AND talent_profiles.status = ?",
			id, domain.PitchPublished, domain.TalentApproved).
		First(&p).Error
	if err != nil {
		return nil, nil, err
	}
	prof, err := GetTalentProfile(ctx, db, p.TalentID)
	if err != nil {
		return nil, nil, err
	}
	return &p, prof, nil
}

// ListTalentFeed returns a page of published pitches by approved talent
// matching f, newest first, plus the total match count.
func ListTalentFeed(ctx context.Context, db *gorm.DB, f TalentFilter) ([]TalentFeedRow, int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.TalentPitch{}).
		Joins("JOIN talent_profiles ON talent_profiles.user_id = talent_pitches.talent_id").
		Where("talent_pitches.status = ? AND talent_profiles.status = ?", domain.PitchPublished, domain.TalentApproved)

	if len(f.Skills) > 0 {
		var (
			conds []string
			args  []any
		)
		for _, s := range f.Skills {
			conds = append(conds, "LOWER(talent_profiles.skills) LIKE ?")
			args = append(args, `%"`+s+`"%`)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if s := strings.TrimSpace(f.ExperienceLevel); s != "" {
		q = q.Where("talent_profiles.experience_level = ?", s)
	}
	if s := strings.TrimSpace(f.CompensationType); s != "" {
		q = q.Where("talent_profiles.compensation_type = ?", s)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("LOWER(talent_profiles.location) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.RemotePreference); s != "" {
		q = q.Where("talent_profiles.remote_preference = ?", s)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var pitches []domain.TalentPitch
	if err := q.Order("talent_pitches.created_at desc").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&pitches).Error; err != nil {
		return nil, 0, err
	}
	if len(pitches) == 0 {
		return []TalentFeedRow{}, total, nil
	}

	ids := make([]string, 0, len(pitches))
	for _, p := range pitches {
		ids = append(ids, p.TalentID)
	}
	var profiles []domain.TalentProfile
	if err := db.WithContext(ctx).Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	byUser := make(map[string]domain.TalentProfile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	out := make([]TalentFeedRow, 0, len(pitches))
	for _, p := range pitches {
		out = append(out, TalentFeedRow{Pitch: p, Profile: byUser[p.TalentID]})
	}
	return out, total, nil
}

// InsertTalentPitchView records a first view of pitchID by viewerID. It
// reports false, without error, when the pair was already recorded.
func InsertTalentPitchView(ctx context.Context, db *gorm.DB, pitchID, viewerID string) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.TalentPitchView{
			ID:        uuid.NewString(),
			PitchID:   pitchID,
			ViewerID:  viewerID,
			CreatedAt: time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementTalentPitchViewCount bumps the aggregate view counter.
func IncrementTalentPitchViewCount(ctx context.Context, db *gorm.DB, pitchID string) error {
	return db.WithContext(ctx).
		Model(&domain.TalentPitch{}).
		Where("id = ?", pitchID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
