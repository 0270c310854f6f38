// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for founder Q&A
// threads and talent DM threads and their messages.
//
// Both thread kinds share the same message mechanics (ordered history,
// recipient-scoped read flags, updated_at bumps on post), so the message
// helpers take the concrete model as an argument.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// FindOrCreateQAThread returns the (pitch, investor) thread, inserting it when
// absent. created reports whether this call inserted the row.
func FindOrCreateQAThread(ctx context.Context, db *gorm.DB, pitch *domain.Pitch, investorID string) (t *domain.QAThread, created bool, err error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.QAThread{
			ID:         uuid.NewString(),
			PitchID:    pitch.ID,
			InvestorID: investorID,
			StartupID:  pitch.StartupID,
			Status:     domain.ThreadActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	var out domain.QAThread
	if err := db.WithContext(ctx).
		Where("pitch_id = ? AND investor_id = ?", pitch.ID, investorID).
		First(&out).Error; err != nil {
		return nil, false, err
	}
	return &out, res.RowsAffected == 1, nil
}

// GetQAThread fetches a Q&A thread with its pitch and startup preloaded.
func GetQAThread(ctx context.Context, db *gorm.DB, id string) (*domain.QAThread, error) {
	var t domain.QAThread
	if err := db.WithContext(ctx).Preload("Pitch.Startup").Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListQAThreadsForInvestor returns the investor's threads, most recently
// active first.
func ListQAThreadsForInvestor(ctx context.Context, db *gorm.DB, investorID string) ([]domain.QAThread, error) {
	var out []domain.QAThread
	err := db.WithContext(ctx).
		Preload("Pitch.Startup").
		Where("investor_id = ?", investorID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

// ListQAThreadsForFounder returns threads on any of the founder's startups,
// most recently active first.
func ListQAThreadsForFounder(ctx context.Context, db *gorm.DB, founderID string) ([]domain.QAThread, error) {
	var out []domain.QAThread
	err := db.WithContext(ctx).
		Preload("Pitch.Startup").
		Joins("JOIN startups ON startups.id = qa_threads.startup_id").
		Where("startups.founder_id = ?", founderID).
		Order("qa_threads.updated_at desc").
		Find(&out).Error
	return out, err
}

// UpdateQAThreadStatus sets the thread status when it still equals from.
// It returns ErrNotFound when a concurrent writer changed it first.
func UpdateQAThreadStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.ThreadStatus, at time.Time) error {
	return mustAffect(db.WithContext(ctx).
		Model(&domain.QAThread{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()}))
}

// CreateQAMessage appends m to its thread and bumps the thread's updated_at.
func CreateQAMessage(ctx context.Context, db *gorm.DB, m *domain.QAMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return touchThread(tx, &domain.QAThread{}, m.ThreadID, m.CreatedAt)
	})
}

// GetQAMessage fetches one message by ID.
func GetQAMessage(ctx context.Context, db *gorm.DB, id string) (*domain.QAMessage, error) {
	var m domain.QAMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListQAMessages returns the thread history, oldest first.
func ListQAMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.QAMessage, error) {
	var out []domain.QAMessage
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// LastQAMessage returns the newest message in a thread, or nil when empty.
func LastQAMessage(ctx context.Context, db *gorm.DB, threadID string) (*domain.QAMessage, error) {
	var out []domain.QAMessage
	if err := lastMessage(ctx, db, threadID, &out); err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// FindOrCreateTalentThread returns the (pitch, recruiter) thread, inserting it
// when absent. created reports whether this call inserted the row.
func FindOrCreateTalentThread(ctx context.Context, db *gorm.DB, pitch *domain.TalentPitch, recruiterID string) (t *domain.TalentQAThread, created bool, err error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.TalentQAThread{
			ID:          uuid.NewString(),
			PitchID:     pitch.ID,
			RecruiterID: recruiterID,
			TalentID:    pitch.TalentID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	var out domain.TalentQAThread
	if err := db.WithContext(ctx).
		Where("pitch_id = ? AND recruiter_id = ?", pitch.ID, recruiterID).
		First(&out).Error; err != nil {
		return nil, false, err
	}
	return &out, res.RowsAffected == 1, nil
}

// GetTalentThread fetches a talent thread with its pitch preloaded.
func GetTalentThread(ctx context.Context, db *gorm.DB, id string) (*domain.TalentQAThread, error) {
	var t domain.TalentQAThread
	if err := db.WithContext(ctx).Preload("Pitch").Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTalentThreadsFor returns the talent threads userID participates in,
// either as recruiter or as talent, most recently active first.
func ListTalentThreadsFor(ctx context.Context, db *gorm.DB, userID string) ([]domain.TalentQAThread, error) {
	var out []domain.TalentQAThread
	err := db.WithContext(ctx).
		Preload("Pitch").
		Where("(recruiter_id = ? OR talent_id = ?)", userID, userID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

// CreateTalentMessage appends m to its thread and bumps the thread's updated_at.
func CreateTalentMessage(ctx context.Context, db *gorm.DB, m *domain.TalentQAMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return touchThread(tx, &domain.TalentQAThread{}, m.ThreadID, m.CreatedAt)
	})
}

// GetTalentMessage fetches one talent message by ID.
func GetTalentMessage(ctx context.Context, db *gorm.DB, id string) (*domain.TalentQAMessage, error) {
	var m domain.TalentQAMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListTalentMessages returns the thread history, oldest first.
func ListTalentMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.TalentQAMessage, error) {
	var out []domain.TalentQAMessage
	err := db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// LastTalentMessage returns the newest message in a talent thread, or nil.
func LastTalentMessage(ctx context.Context, db *gorm.DB, threadID string) (*domain.TalentQAMessage, error) {
	var out []domain.TalentQAMessage
	if err := lastMessage(ctx, db, threadID, &out); err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// MarkRead flags every unread message in threadID not sent by readerID as
// read. model selects the message table (&domain.QAMessage{} or
// &domain.TalentQAMessage{}).
func MarkRead(ctx context.Context, db *gorm.DB, model any, threadID, readerID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(model).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread returns the number of unread messages addressed to readerID.
func CountUnread(ctx context.Context, db *gorm.DB, model any, threadID, readerID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(model).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, readerID, false).
		Count(&n).Error
	return n, err
}

func lastMessage(ctx context.Context, db *gorm.DB, threadID string, dest any) error {
	return db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at desc").
		Limit(1).
		Find(dest).Error
}

func touchThread(tx *gorm.DB, model any, threadID string, at time.Time) error {
	return mustAffect(tx.Model(model).Where("id = ?", threadID).Update("updated_at", at))
}
