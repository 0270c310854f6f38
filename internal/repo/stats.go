// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the founder
// and talent dashboards.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// FounderStats aggregates engagement across all of a founder's startups.
type FounderStats struct {
	TotalViews        int64 `json:"total_views"`
	UniqueInvestors   int64 `json:"unique_investors"`
	QuestionsReceived int64 `json:"questions_received"`
}

// TalentStats aggregates engagement on a talent's published pitch.
type TalentStats struct {
	TotalViews       int64 `json:"total_views"`
	UniqueViewers    int64 `json:"unique_viewers"`
	MessagesReceived int64 `json:"messages_received"`
}

// PitchesForStartups returns every pitch of the given startups, newest first.
func PitchesForStartups(ctx context.Context, db *gorm.DB, startupIDs []string) ([]domain.Pitch, error) {
	var out []domain.Pitch
	if len(startupIDs) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).
		Where("startup_id IN ?", startupIDs).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// FounderDashboardStats computes FounderStats for founderID.
//
// total_views sums the pitches' view counters; unique_investors counts
// distinct investors with a view on any of the founder's pitches;
// questions_received counts Q&A threads opened on the founder's startups.
func FounderDashboardStats(ctx context.Context, db *gorm.DB, founderID string) (FounderStats, error) {
	var st FounderStats
	tx := db.WithContext(ctx)

	var sum struct{ Total int64 }
	if err := tx.Model(&domain.Pitch{}).
		Select("COALESCE(SUM(pitches.view_count), 0) AS total").
		Joins("JOIN startups ON startups.id = pitches.startup_id").
		Where("startups.founder_id = ?", founderID).
		Scan(&sum).Error; err != nil {
		return st, err
	}
	st.TotalViews = sum.Total

	if err := tx.Model(&domain.PitchView{}).
		Joins("JOIN pitches ON pitches.id = pitch_views.pitch_id").
		Joins("JOIN startups ON startups.id = pitches.startup_id").
		Where("startups.founder_id = ?", founderID).
		Distinct("pitch_views.investor_id").
		Count(&st.UniqueInvestors).Error; err != nil {
		return st, err
	}

	if err := tx.Model(&domain.QAThread{}).
		Joins("JOIN startups ON startups.id = qa_threads.startup_id").
		Where("startups.founder_id = ?", founderID).
		Count(&st.QuestionsReceived).Error; err != nil {
		return st, err
	}
	return st, nil
}

// TalentDashboardStats computes TalentStats for talentID. pitch may be nil
// when the talent has nothing published.
func TalentDashboardStats(ctx context.Context, db *gorm.DB, talentID string, pitch *domain.TalentPitch) (TalentStats, error) {
	var st TalentStats
	tx := db.WithContext(ctx)
	if pitch != nil {
		st.TotalViews = int64(pitch.ViewCount)
		if err := tx.Model(&domain.TalentPitchView{}).
			Where("pitch_id = ?", pitch.ID).
			Distinct("viewer_id").
			Count(&st.UniqueViewers).Error; err != nil {
			return st, err
		}
	}
	if err := tx.Model(&domain.TalentQAThread{}).
		Where("talent_id = ?", talentID).
		Count(&st.MessagesReceived).Error; err != nil {
		return st, err
	}
	return st, nil
}
