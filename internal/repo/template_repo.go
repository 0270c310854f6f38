// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for investor
// question templates.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// ListTemplates returns the investor's templates in display order.
func ListTemplates(ctx context.Context, db *gorm.DB, investorID string) ([]domain.QuestionTemplate, error) {
	var out []domain.QuestionTemplate
	err := db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("display_order asc, created_at asc").
		Find(&out).Error
	return out, err
}

// SeedDefaultTemplates inserts domain.DefaultQuestions for the investor.
func SeedDefaultTemplates(ctx context.Context, db *gorm.DB, investorID string) ([]domain.QuestionTemplate, error) {
	now := time.Now().UTC()
	out := make([]domain.QuestionTemplate, 0, len(domain.DefaultQuestions))
	for i, q := range domain.DefaultQuestions {
		out = append(out, domain.QuestionTemplate{
			ID:           uuid.NewString(),
			InvestorID:   investorID,
			QuestionText: q,
			IsDefault:    true,
			DisplayOrder: i,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := db.WithContext(ctx).Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NextTemplateOrder returns one past the investor's highest display order.
func NextTemplateOrder(ctx context.Context, db *gorm.DB, investorID string) (int, error) {
	var out []domain.QuestionTemplate
	err := db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("display_order desc").
		Limit(1).
		Find(&out).Error
	if err != nil || len(out) == 0 {
		return 0, err
	}
	return out[0].DisplayOrder + 1, nil
}

// CreateTemplate inserts t, assigning an ID when empty.
func CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.QuestionTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(t).Error
}

// GetOwnedTemplate fetches a template only when investorID owns it.
func GetOwnedTemplate(ctx context.Context, db *gorm.DB, id, investorID string) (*domain.QuestionTemplate, error) {
	var t domain.QuestionTemplate
	if err := db.WithContext(ctx).Where("id = ? AND investor_id = ?", id, investorID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate applies a partial update to an owned template.
func UpdateTemplate(ctx context.Context, db *gorm.DB, id, investorID string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := GetOwnedTemplate(ctx, db, id, investorID)
		return err
	}
	fields["updated_at"] = time.Now().UTC()
	return mustAffect(db.WithContext(ctx).
		Model(&domain.QuestionTemplate{}).
		Where("id = ? AND investor_id = ?", id, investorID).
		Updates(fields))
}

// DeleteTemplate removes an owned template.
func DeleteTemplate(ctx context.Context, db *gorm.DB, id, investorID string) error {
	return mustAffect(db.WithContext(ctx).
		Where("id = ? AND investor_id = ?", id, investorID).
		Delete(&domain.QuestionTemplate{}))
}

// TemplatesByID returns the investor's templates among ids, in display order.
func TemplatesByID(ctx context.Context, db *gorm.DB, investorID string, ids []string) ([]domain.QuestionTemplate, error) {
	var out []domain.QuestionTemplate
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).
		Where("investor_id = ? AND id IN ?", investorID, ids).
		Order("display_order asc").
		Find(&out).Error
	return out, err
}
