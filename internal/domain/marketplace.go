package domain

import "time"

// Startup stages accepted on create and update.
var StartupStages = []string{"idea", "pre_seed", "seed", "series_a"}

// ValidStage reports whether s is one of StartupStages.
func ValidStage(s string) bool {
	for _, st := range StartupStages {
		if st == s {
			return true
		}
	}
	return false
}

// Startup is a company owned by a founder.
type Startup struct {
	ID              string     `json:"id"         gorm:"type:char(36);primaryKey"`
	FounderID       string     `json:"founder_id" gorm:"type:char(36);not null;index"`
	Name            string     `json:"name"       gorm:"type:varchar(255);not null"`
	Tagline         string     `json:"tagline,omitempty" gorm:"type:varchar(500)"`
	Website         string     `json:"website,omitempty" gorm:"type:varchar(500)"`
	Sectors         StringList `json:"sectors"`
	Stage           string     `json:"stage"      gorm:"type:varchar(32);not null;index"`
	Location        string     `json:"location,omitempty" gorm:"type:varchar(255)"`
	RoundSizeMin    *int64     `json:"round_size_min,omitempty"`
	RoundSizeMax    *int64     `json:"round_size_max,omitempty"`
	TractionBullets StringList `json:"traction_bullets"`
	LogoURL         string     `json:"logo_url,omitempty" gorm:"type:varchar(1000)"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Founder User `json:"-" gorm:"foreignKey:FounderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Startup.
func (Startup) TableName() string { return "startups" }

// Pitch types and lifecycle states.
const (
	PitchTypeFree = "30s_free"
	PitchTypePaid = "5min_paid"

	PitchDraft     = "draft"
	PitchPublished = "published"
	PitchArchived  = "archived"
)

// UnlockProductID is the App Store product that unlocks a 5 minute pitch.
const UnlockProductID = "com.caerus.founder.5min"

// Pitch is a founder's video pitch for a startup. VideoKey is the object key in
// blob storage; clients receive signed URLs, never the key's bucket location.
type Pitch struct {
	ID              string    `json:"id"         gorm:"type:char(36);primaryKey"`
	StartupID       string    `json:"startup_id" gorm:"type:char(36);not null;index"`
	Type            string    `json:"type"       gorm:"type:varchar(16);not null;check:type IN ('30s_free','5min_paid')"`
	VideoKey        string    `json:"-"          gorm:"type:varchar(1000);not null"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty" gorm:"type:varchar(1000)"`
	DurationSeconds int       `json:"duration_seconds"`
	Status          string    `json:"status"     gorm:"type:varchar(16);not null;default:'draft';index"`
	ViewCount       int       `json:"view_count" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Startup Startup `json:"-" gorm:"foreignKey:StartupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Pitch.
func (Pitch) TableName() string { return "pitches" }

// PitchView records the first time an investor viewed a pitch. At most one row
// exists per (pitch, investor).
type PitchView struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	PitchID    string    `json:"pitch_id"    gorm:"type:char(36);not null;uniqueIndex:ux_pitch_view,priority:1"`
	InvestorID string    `json:"investor_id" gorm:"type:char(36);not null;uniqueIndex:ux_pitch_view,priority:2;index"`
	CreatedAt  time.Time `json:"created_at"`

	Pitch Pitch `json:"-" gorm:"foreignKey:PitchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PitchView.
func (PitchView) TableName() string { return "pitch_views" }

// PitchUnlock records a purchased 5 minute pitch slot for a startup.
type PitchUnlock struct {
	ID                 string    `json:"id"         gorm:"type:char(36);primaryKey"`
	StartupID          string    `json:"startup_id" gorm:"type:char(36);not null;uniqueIndex:ux_unlock_startup_founder,priority:1"`
	FounderID          string    `json:"founder_id" gorm:"type:char(36);not null;uniqueIndex:ux_unlock_startup_founder,priority:2"`
	AppleTransactionID string    `json:"apple_transaction_id" gorm:"type:varchar(255)"`
	ProductID          string    `json:"product_id" gorm:"type:varchar(255);not null"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName returns the database table name for PitchUnlock.
func (PitchUnlock) TableName() string { return "pitch_unlocks" }

// TalentPitch is a talent's single video introduction.
type TalentPitch struct {
	ID              string    `json:"id"        gorm:"type:char(36);primaryKey"`
	TalentID        string    `json:"talent_id" gorm:"type:char(36);not null;index"`
	VideoKey        string    `json:"-"         gorm:"type:varchar(1000);not null"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty" gorm:"type:varchar(1000)"`
	DurationSeconds int       `json:"duration_seconds"`
	Headline        string    `json:"headline,omitempty" gorm:"type:varchar(255)"`
	Status          string    `json:"status"     gorm:"type:varchar(16);not null;default:'draft';index"`
	ViewCount       int       `json:"view_count" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Talent User `json:"-" gorm:"foreignKey:TalentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TalentPitch.
func (TalentPitch) TableName() string { return "talent_pitches" }

// TalentPitchView records the first time a founder or investor viewed a talent
// pitch. At most one row exists per (pitch, viewer).
type TalentPitchView struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	PitchID   string    `json:"pitch_id"  gorm:"type:char(36);not null;uniqueIndex:ux_talent_pitch_view,priority:1"`
	ViewerID  string    `json:"viewer_id" gorm:"type:char(36);not null;uniqueIndex:ux_talent_pitch_view,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`

	Pitch TalentPitch `json:"-" gorm:"foreignKey:PitchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TalentPitchView.
func (TalentPitchView) TableName() string { return "talent_pitch_views" }
