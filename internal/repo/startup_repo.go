// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for startups.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// CreateStartup inserts s, assigning an ID when empty.
func CreateStartup(ctx context.Context, db *gorm.DB, s *domain.Startup) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(s).Error
}

// ListStartupsByFounder returns the founder's startups, newest first.
func ListStartupsByFounder(ctx context.Context, db *gorm.DB, founderID string) ([]domain.Startup, error) {
	var out []domain.Startup
	err := db.WithContext(ctx).
		Where("founder_id = ?", founderID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetStartup fetches a startup by ID.
func GetStartup(ctx context.Context, db *gorm.DB, id string) (*domain.Startup, error) {
	var s domain.Startup
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOwnedStartup fetches a startup only when founderID owns it.
func GetOwnedStartup(ctx context.Context, db *gorm.DB, id, founderID string) (*domain.Startup, error) {
	var s domain.Startup
	if err := db.WithContext(ctx).Where("id = ? AND founder_id = ?", id, founderID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStartup applies a partial update when founderID owns the startup.
func UpdateStartup(ctx context.Context, db *gorm.DB, id, founderID string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := GetOwnedStartup(ctx, db, id, founderID)
		return err
	}
	fields["updated_at"] = time.Now().UTC()
	return mustAffect(db.WithContext(ctx).
		Model(&domain.Startup{}).
		Where("id = ? AND founder_id = ?", id, founderID).
		Updates(fields))
}

// DeleteStartup removes a startup owned by founderID. Pitches, views and
// threads cascade.
func DeleteStartup(ctx context.Context, db *gorm.DB, id, founderID string) error {
	return mustAffect(db.WithContext(ctx).
		Where("id = ? AND founder_id = ?", id, founderID).
		Delete(&domain.Startup{}))
}
