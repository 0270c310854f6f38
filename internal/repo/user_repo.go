// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for users and their
// role profiles.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. Missing rows surface as ErrNotFound.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// CreateUserWithProfile inserts a user and the empty profile matching its role
// in one transaction. Investors start with freeViews free pitch views.
func CreateUserWithProfile(ctx context.Context, db *gorm.DB, u *domain.User, freeViews int) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if IsDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		var profile any
		switch u.Role {
		case domain.RoleFounder:
			profile = &domain.FounderProfile{ID: uuid.NewString(), UserID: u.ID}
		case domain.RoleInvestor:
			profile = &domain.InvestorProfile{ID: uuid.NewString(), UserID: u.ID, FreeViewsRemaining: freeViews}
		case domain.RoleTalent:
			profile = &domain.TalentProfile{ID: uuid.NewString(), UserID: u.ID, Status: domain.TalentPending}
		default:
			return fmt.Errorf("unknown role %q", u.Role)
		}
		return tx.Create(profile).Error
	})
}

// GetUser fetches a user by primary key.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByFirebaseUID fetches a user by federated identity.
func GetUserByFirebaseUID(ctx context.Context, db *gorm.DB, uid string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies a partial update to the users row.
func UpdateUser(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	return mustAffect(db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields))
}

// SetAdmin grants or revokes the admin claim for the user with email.
func SetAdmin(ctx context.Context, db *gorm.DB, email string, admin bool) error {
	return mustAffect(db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", email).
		Updates(map[string]any{"is_admin": admin, "updated_at": time.Now().UTC()}))
}

// GetFounderProfile returns the founder profile owned by userID.
func GetFounderProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.FounderProfile, error) {
	var p domain.FounderProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetInvestorProfile returns the investor profile owned by userID.
func GetInvestorProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.InvestorProfile, error) {
	var p domain.InvestorProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTalentProfile returns the talent profile owned by userID.
func GetTalentProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.TalentProfile, error) {
	var p domain.TalentProfile
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTalentProfileByID returns a talent profile by its own primary key.
func GetTalentProfileByID(ctx context.Context, db *gorm.DB, id string) (*domain.TalentProfile, error) {
	var p domain.TalentProfile
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies a partial update to the profile table of model,
// scoped to userID. model must be a pointer to one of the profile types.
func UpdateProfile(ctx context.Context, db *gorm.DB, model any, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	return mustAffect(db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Updates(fields))
}

// ListTalentByStatus returns talent profiles in status, oldest application first.
// When onboarded is true only profiles that completed onboarding are returned.
func ListTalentByStatus(ctx context.Context, db *gorm.DB, status string, onboarded bool, offset, limit int) ([]domain.TalentProfile, int64, error) {
	q := db.WithContext(ctx).Model(&domain.TalentProfile{}).Where("status = ?", status)
	if onboarded {
		q = q.Where("onboarding_completed = ?", true)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.TalentProfile
	err := q.Order("applied_at asc, created_at asc").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// TransitionTalentStatus moves a talent profile from one status to another.
// It returns ErrNotFound when the profile does not exist or is not in from.
func TransitionTalentStatus(ctx context.Context, db *gorm.DB, profileID, from, to string, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["status"] = to
	fields["updated_at"] = time.Now().UTC()
	return mustAffect(db.WithContext(ctx).
		Model(&domain.TalentProfile{}).
		Where("id = ? AND status = ?", profileID, from).
		Updates(fields))
}

// CountTalentByStatus returns the number of talent profiles per status.
func CountTalentByStatus(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.TalentProfile{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[string]int64{
		domain.TalentPending:  0,
		domain.TalentApproved: 0,
		domain.TalentRejected: 0,
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// RolesByID returns the role of each user in ids. Unknown ids are absent.
func RolesByID(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Role, error) {
	out := make(map[string]domain.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := db.WithContext(ctx).Select("id", "role").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Role
	}
	return out, nil
}
