package domain

import "time"

// ThreadStatus is the investor's disposition on a Q&A thread.
type ThreadStatus string

const (
	ThreadActive     ThreadStatus = "active"
	ThreadInterested ThreadStatus = "interested"
	ThreadDeclined   ThreadStatus = "declined"
)

// Valid reports whether s is a known thread status.
func (s ThreadStatus) Valid() bool {
	switch s {
	case ThreadActive, ThreadInterested, ThreadDeclined:
		return true
	}
	return false
}

// Message kinds.
const (
	MessageText  = "text"
	MessageVideo = "video"
)

// QAThread is an investor's question thread on a founder's pitch, unique per
// (pitch, investor).
type QAThread struct {
	ID         string       `json:"id"          gorm:"type:char(36);primaryKey"`
	PitchID    string       `json:"pitch_id"    gorm:"type:char(36);not null;uniqueIndex:ux_qa_thread,priority:1"`
	InvestorID string       `json:"investor_id" gorm:"type:char(36);not null;uniqueIndex:ux_qa_thread,priority:2;index"`
	StartupID  string       `json:"startup_id"  gorm:"type:char(36);not null;index"`
	Status     ThreadStatus `json:"status"      gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Pitch Pitch `json:"-" gorm:"foreignKey:PitchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QAThread.
func (QAThread) TableName() string { return "qa_threads" }

// QAMessage is a message in a Q&A thread. IsRead concerns the recipient.
type QAMessage struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ThreadID    string    `json:"thread_id"    gorm:"type:char(36);not null;index:idx_qa_thread_msgs,priority:1"`
	SenderID    string    `json:"sender_id"    gorm:"type:char(36);not null"`
	MessageType string    `json:"message_type" gorm:"type:varchar(16);not null;default:'text'"`
	Content     string    `json:"content"      gorm:"type:text"`
	VideoURL    string    `json:"video_url,omitempty" gorm:"type:varchar(1000)"`
	IsRead      bool      `json:"is_read"      gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_qa_thread_msgs,priority:2"`

	Thread QAThread `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QAMessage.
func (QAMessage) TableName() string { return "qa_messages" }

// TalentQAThread is a direct-message thread opened by a founder or investor on
// a talent pitch, unique per (pitch, recruiter).
type TalentQAThread struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	PitchID     string    `json:"pitch_id"     gorm:"type:char(36);not null;uniqueIndex:ux_talent_thread,priority:1"`
	RecruiterID string    `json:"recruiter_id" gorm:"type:char(36);not null;uniqueIndex:ux_talent_thread,priority:2;index"`
	TalentID    string    `json:"talent_id"    gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Pitch TalentPitch `json:"-" gorm:"foreignKey:PitchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TalentQAThread.
func (TalentQAThread) TableName() string { return "talent_qa_threads" }

// TalentQAMessage is a message in a talent thread.
type TalentQAMessage struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ThreadID    string    `json:"thread_id"    gorm:"type:char(36);not null;index:idx_talent_thread_msgs,priority:1"`
	SenderID    string    `json:"sender_id"    gorm:"type:char(36);not null"`
	MessageType string    `json:"message_type" gorm:"type:varchar(16);not null;default:'text'"`
	Content     string    `json:"content"      gorm:"type:text"`
	VideoURL    string    `json:"video_url,omitempty" gorm:"type:varchar(1000)"`
	IsRead      bool      `json:"is_read"      gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_talent_thread_msgs,priority:2"`

	Thread TalentQAThread `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TalentQAMessage.
func (TalentQAMessage) TableName() string { return "talent_qa_messages" }

// DefaultQuestions seed an investor's templates the first time they are listed.
var DefaultQuestions = []string{
	"What is your current MRR/ARR and month-over-month growth rate?",
	"How did you validate that this problem is worth solving?",
	"What is your unfair advantage over existing solutions?",
	"Who are your main competitors and how do you differentiate?",
	"What is your go-to-market strategy for the next 12 months?",
	"How will you use the funds from this round?",
	"What is your customer acquisition cost and lifetime value?",
	"What milestones do you plan to hit in the next 12 months?",
}

// QuestionTemplate is a reusable question an investor can send to founders.
type QuestionTemplate struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	InvestorID   string    `json:"-"             gorm:"type:char(36);not null;index"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	IsDefault    bool      `json:"is_default"    gorm:"not null;default:false"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for QuestionTemplate.
func (QuestionTemplate) TableName() string { return "question_templates" }
