package domain

import "time"

// Support ticket states and message senders.
const (
	TicketOpen     = "open"
	TicketResolved = "resolved"

	SenderUser  = "user"
	SenderAdmin = "admin"
	SenderAI    = "ai"
)

// SupportTicket is a user's support conversation.
type SupportTicket struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"-"       gorm:"type:char(36);not null;index"`
	Subject   string    `json:"subject" gorm:"type:varchar(255);not null"`
	Status    string    `json:"status"  gorm:"type:varchar(16);not null;default:'open'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for SupportTicket.
func (SupportTicket) TableName() string { return "support_tickets" }

// SupportMessage is one message in a ticket.
type SupportMessage struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	TicketID   string    `json:"-"           gorm:"type:char(36);not null;index:idx_ticket_msgs,priority:1"`
	SenderType string    `json:"sender_type" gorm:"type:varchar(16);not null;check:sender_type IN ('user','admin','ai')"`
	Content    string    `json:"content"     gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index:idx_ticket_msgs,priority:2"`

	Ticket SupportTicket `json:"-" gorm:"foreignKey:TicketID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SupportMessage.
func (SupportMessage) TableName() string { return "support_messages" }
