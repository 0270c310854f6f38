// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for support tickets
// and their messages.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
)

// TicketSummary is a ticket with its message count.
type TicketSummary struct {
	domain.SupportTicket
	MessageCount int64 `json:"message_count"`
}

// CreateTicket inserts t, assigning an ID when empty.
func CreateTicket(ctx context.Context, db *gorm.DB, t *domain.SupportTicket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(t).Error
}

// ListTickets returns the user's tickets, most recently active first, with
// message counts.
func ListTickets(ctx context.Context, db *gorm.DB, userID string) ([]TicketSummary, error) {
	var tickets []domain.SupportTicket
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	out := make([]TicketSummary, 0, len(tickets))
	if len(tickets) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	var counts []struct {
		TicketID string
		N        int64
	}
	if err := db.WithContext(ctx).
		Model(&domain.SupportMessage{}).
		Select("ticket_id, COUNT(*) AS n").
		Where("ticket_id IN ?", ids).
		Group("ticket_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.TicketID] = c.N
	}
	for _, t := range tickets {
		out = append(out, TicketSummary{SupportTicket: t, MessageCount: byID[t.ID]})
	}
	return out, nil
}

// GetOwnedTicket fetches a ticket only when userID owns it.
func GetOwnedTicket(ctx context.Context, db *gorm.DB, id, userID string) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// AddSupportMessage appends m to its ticket and bumps the ticket's updated_at.
func AddSupportMessage(ctx context.Context, db *gorm.DB, m *domain.SupportMessage) error {
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
		return mustAffect(tx.Model(&domain.SupportTicket{}).Where("id = ?", m.TicketID).Update("updated_at", m.CreatedAt))
	})
}

// ListSupportMessages returns the ticket history, oldest first.
func ListSupportMessages(ctx context.Context, db *gorm.DB, ticketID string) ([]domain.SupportMessage, error) {
	var out []domain.SupportMessage
	err := db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// LastSupportMessage returns the newest message of a ticket, or nil when it
// has none.
func LastSupportMessage(ctx context.Context, db *gorm.DB, ticketID string) (*domain.SupportMessage, error) {
	var m domain.SupportMessage
	err := db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at desc").
		Limit(1).
		Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}
