// Package domain defines the persistence models for principals, their role
// profiles, the marketplace resources (startups, pitches, talent pitches),
// threads, billing and support. These types are mapped with GORM and shared by
// the repository, entitlement and service layers.
package domain

import (
	"time"
)

// User is an authenticated principal. Identity is federated through Firebase;
// the role is chosen at signup and never changes afterwards.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - FirebaseUID / Email: unique external identifiers.
//   - Role: founder, investor or talent.
//   - IsAdmin: elevated-privilege claim, independent of Role.
//   - PushToken: Expo push token, empty when the device never registered.
type User struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	FirebaseUID string    `json:"-"           gorm:"type:varchar(128);not null;uniqueIndex"`
	Email       string    `json:"email"       gorm:"type:varchar(255);not null;uniqueIndex"`
	Role        Role      `json:"role"        gorm:"type:varchar(16);not null;index;check:role IN ('founder','investor','talent')"`
	IsAdmin     bool      `json:"is_admin"    gorm:"not null;default:false"`
	AvatarURL   string    `json:"avatar_url,omitempty" gorm:"type:varchar(1000)"`
	PushToken   string    `json:"-"           gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// RecruiterCounters holds the rolling quotas shared by founders and investors
// when browsing and messaging talent. The reset markers are compared against
// the current period on every gated access.
type RecruiterCounters struct {
	TalentViewsToday     int    `json:"-" gorm:"not null;default:0"`
	TalentViewsResetDate string `json:"-" gorm:"type:varchar(10)"`
	TalentDMsThisMonth   int    `json:"-" gorm:"column:talent_dms_this_month;not null;default:0"`
	TalentDMsResetMonth  int    `json:"-" gorm:"column:talent_dms_reset_month;not null;default:0"`
	TalentDMsResetYear   int    `json:"-" gorm:"column:talent_dms_reset_year;not null;default:0"`
}

// FounderProfile is the role profile of a founder.
type FounderProfile struct {
	ID                   string     `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID               string     `json:"user_id"      gorm:"type:char(36);not null;uniqueIndex"`
	FullName             string     `json:"full_name"    gorm:"type:varchar(255)"`
	CompanyName          string     `json:"company_name" gorm:"type:varchar(255)"`
	LinkedinURL          string     `json:"linkedin_url,omitempty" gorm:"type:varchar(500)"`
	TwitterURL           string     `json:"twitter_url,omitempty"  gorm:"type:varchar(500)"`
	WebsiteURL           string     `json:"website_url,omitempty"  gorm:"type:varchar(500)"`
	SeekingInvestorTypes StringList `json:"seeking_investor_types"`
	DesiredCheckSizeMin  *int64     `json:"desired_check_size_min,omitempty"`
	DesiredCheckSizeMax  *int64     `json:"desired_check_size_max,omitempty"`
	ValueAddPreferences  StringList `json:"value_add_preferences"`
	ProfileCompleted     bool       `json:"profile_completed"    gorm:"not null;default:false"`
	OnboardingCompleted  bool       `json:"onboarding_completed" gorm:"not null;default:false"`
	RecruiterCounters    `gorm:"embedded"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for FounderProfile.
func (FounderProfile) TableName() string { return "founder_profiles" }

// InvestorProfile is the role profile of an investor. FreeViewsRemaining is a
// non-resetting pool of pitch views available without a subscription.
type InvestorProfile struct {
	ID                  string     `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID              string     `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex"`
	FullName            string     `json:"full_name" gorm:"type:varchar(255)"`
	FirmName            string     `json:"firm_name" gorm:"type:varchar(255)"`
	LinkedinURL         string     `json:"linkedin_url,omitempty" gorm:"type:varchar(500)"`
	TwitterURL          string     `json:"twitter_url,omitempty"  gorm:"type:varchar(500)"`
	WebsiteURL          string     `json:"website_url,omitempty"  gorm:"type:varchar(500)"`
	TicketSizeMin       *int64     `json:"ticket_size_min,omitempty"`
	TicketSizeMax       *int64     `json:"ticket_size_max,omitempty"`
	Sectors             StringList `json:"sectors"`
	Stages              StringList `json:"stages"`
	Geographies         StringList `json:"geographies"`
	InvestorType        string     `json:"investor_type,omitempty" gorm:"type:varchar(50)"`
	IsVerified          bool       `json:"is_verified"          gorm:"not null;default:false"`
	FreeViewsRemaining  int        `json:"free_views_remaining" gorm:"not null"`
	ProfileCompleted    bool       `json:"profile_completed"    gorm:"not null;default:false"`
	OnboardingCompleted bool       `json:"onboarding_completed" gorm:"not null;default:false"`
	RecruiterCounters   `gorm:"embedded"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for InvestorProfile.
func (InvestorProfile) TableName() string { return "investor_profiles" }

// Talent application states.
const (
	TalentPending  = "pending"
	TalentApproved = "approved"
	TalentRejected = "rejected"
)

// TalentProfile is the role profile of a job seeker. Talent must be approved by
// an admin before publishing a pitch.
type TalentProfile struct {
	ID                  string     `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID              string     `json:"user_id"   gorm:"type:char(36);not null;uniqueIndex"`
	FullName            string     `json:"full_name" gorm:"type:varchar(255)"`
	Status              string     `json:"status"    gorm:"type:varchar(16);not null;default:'pending';index;check:status IN ('pending','approved','rejected')"`
	AppliedAt           *time.Time `json:"applied_at,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	RejectionReason     string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	JobTitleSeeking     string     `json:"job_title_seeking,omitempty" gorm:"type:varchar(255)"`
	Skills              StringList `json:"skills"`
	ExperienceLevel     string     `json:"experience_level,omitempty"  gorm:"type:varchar(32);index"`
	CompensationType    string     `json:"compensation_type,omitempty" gorm:"type:varchar(32)"`
	SalaryRangeMin      *int64     `json:"salary_range_min,omitempty"`
	SalaryRangeMax      *int64     `json:"salary_range_max,omitempty"`
	Availability        string     `json:"availability,omitempty"      gorm:"type:varchar(64)"`
	PastProjects        string     `json:"past_projects,omitempty"     gorm:"type:text"`
	PortfolioURL        string     `json:"portfolio_url,omitempty"     gorm:"type:varchar(500)"`
	Certifications      StringList `json:"certifications"`
	LinkedinURL         string     `json:"linkedin_url,omitempty"      gorm:"type:varchar(500)"`
	Location            string     `json:"location,omitempty"          gorm:"type:varchar(255)"`
	RemotePreference    string     `json:"remote_preference,omitempty" gorm:"type:varchar(32)"`
	PreferredSectors    StringList `json:"preferred_sectors"`
	ProfileCompleted    bool       `json:"profile_completed"    gorm:"not null;default:false"`
	OnboardingCompleted bool       `json:"onboarding_completed" gorm:"not null;default:false"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TalentProfile.
func (TalentProfile) TableName() string { return "talent_profiles" }
