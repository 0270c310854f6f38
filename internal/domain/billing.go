package domain

import "time"

// Subscription states and plans.
const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"

	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Subscription is an investor's App Store subscription. Rows are keyed by the
// original transaction id so renewals update the same row.
type Subscription struct {
	ID                         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	InvestorID                 string    `json:"investor_id" gorm:"type:char(36);not null;index"`
	PlanType                   string    `json:"plan_type"   gorm:"type:varchar(16);not null"`
	AppleTransactionID         string    `json:"-"           gorm:"type:varchar(255);not null;uniqueIndex"`
	AppleOriginalTransactionID string    `json:"-"           gorm:"type:varchar(255);index"`
	Status                     string    `json:"status"      gorm:"type:varchar(16);not null;default:'active'"`
	ExpiresAt                  time.Time `json:"expires_at"  gorm:"not null;index"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`

	Investor User `json:"-" gorm:"foreignKey:InvestorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// IsActive reports whether the subscription grants access at now.
func (s Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionActive && s.ExpiresAt.After(now)
}
