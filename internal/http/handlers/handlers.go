package handlers

import (
	"context"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/services"
	"github.com/caerus-app/caerus-backend/internal/support"
)

//
// Service contracts (context-aware)
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation and timeouts. The concrete types live in
// internal/services.
//

// AuthService exchanges identity tokens for session tokens.
type AuthService interface {
	Signup(ctx context.Context, idToken, role string) (*services.Session, error)
	Login(ctx context.Context, idToken string) (*services.Session, error)
}

// ProfileService manages the caller's account and public profiles.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*services.Me, error)
	UpdateAccount(ctx context.Context, userID string, in services.AccountUpdate) (*services.Me, error)
	OnboardFounder(ctx context.Context, userID string, in services.FounderOnboarding) (*domain.FounderProfile, error)
	OnboardInvestor(ctx context.Context, userID string, in services.InvestorOnboarding) (*domain.InvestorProfile, error)
	OnboardTalent(ctx context.Context, userID string, in services.TalentOnboarding) (*domain.TalentProfile, error)
	Founder(ctx context.Context, founderID string) (*services.FounderPublic, error)
	Investor(ctx context.Context, investorID string) (*services.InvestorPublic, error)
}

// StartupService is founder-owned startup CRUD.
type StartupService interface {
	Create(ctx context.Context, founderID string, in services.StartupInput) (*domain.Startup, error)
	ListMine(ctx context.Context, founderID string) ([]domain.Startup, error)
	Get(ctx context.Context, id string) (*domain.Startup, error)
	Update(ctx context.Context, founderID, id string, in services.StartupInput) (*domain.Startup, error)
	Delete(ctx context.Context, founderID, id string) error
}

// PitchService covers founder pitch uploads and the investor feed.
type PitchService interface {
	UploadURL(ctx context.Context, founderID string, in services.UploadRequest) (*services.UploadTicket, error)
	Publish(ctx context.Context, founderID, pitchID string, durationSeconds int) (*domain.Pitch, error)
	Feed(ctx context.Context, investorID string, f repo.PitchFilter) (*services.PitchFeed, error)
	Get(ctx context.Context, investorID, pitchID string) (*services.PitchDetail, error)
	View(ctx context.Context, investorID, pitchID string) (*services.ViewReceipt, error)
	Dashboard(ctx context.Context, founderID string) (*services.FounderDashboard, error)
}

// TalentPitchService covers talent pitches and the recruiter feed.
type TalentPitchService interface {
	UploadURL(ctx context.Context, talentID string, in services.TalentUploadRequest) (*services.TalentUploadTicket, error)
	Publish(ctx context.Context, talentID, pitchID string, durationSeconds int, headline string) (*domain.TalentPitch, error)
	Feed(ctx context.Context, viewer entitlement.Principal, q services.TalentFeedQuery) (*services.TalentFeed, error)
	Get(ctx context.Context, viewer entitlement.Principal, pitchID string) (*services.TalentPitchDetail, error)
	View(ctx context.Context, viewer entitlement.Principal, pitchID string) (*services.TalentViewReceipt, error)
	Mine(ctx context.Context, talentID string) (*services.MyTalentPitch, error)
	Dashboard(ctx context.Context, talentID string) (*services.TalentDashboard, error)
}

// QAService runs investor/founder Q&A threads.
type QAService interface {
	CreateThread(ctx context.Context, investorID, pitchID string) (*services.ThreadRef, error)
	ListThreads(ctx context.Context, p entitlement.Principal) ([]services.QAThreadSummary, error)
	Messages(ctx context.Context, p entitlement.Principal, threadID string) ([]services.MessageView, error)
	PostMessage(ctx context.Context, p entitlement.Principal, threadID, idempotencyKey string, in services.MessageInput) (*services.PostResult, error)
	UpdateStatus(ctx context.Context, investorID, threadID string, status domain.ThreadStatus) (*domain.QAThread, error)
}

// TemplateService manages question templates.
type TemplateService interface {
	List(ctx context.Context, investorID string) ([]domain.QuestionTemplate, error)
	Create(ctx context.Context, investorID, question string) (*domain.QuestionTemplate, error)
	Update(ctx context.Context, investorID, id string, question *string, order *int) (*domain.QuestionTemplate, error)
	Delete(ctx context.Context, investorID, id string) error
	Send(ctx context.Context, investorID, pitchID string, templateIDs []string, custom string) (*services.SendResult, error)
}

// TalentQAService runs recruiter/talent direct messages.
type TalentQAService interface {
	Open(ctx context.Context, sender entitlement.Principal, pitchID, message string) (*services.OpenResult, error)
	List(ctx context.Context, p entitlement.Principal) ([]services.TalentThreadSummary, error)
	Messages(ctx context.Context, p entitlement.Principal, threadID string) ([]services.MessageView, error)
	PostMessage(ctx context.Context, p entitlement.Principal, threadID, idempotencyKey string, in services.MessageInput) (*services.PostResult, error)
}

// BillingService verifies App Store receipts.
type BillingService interface {
	VerifySubscription(ctx context.Context, investorID, receipt string) (*services.SubscriptionState, error)
	VerifyUnlock(ctx context.Context, founderID, startupID, receipt string) (*services.UnlockResult, error)
	Current(ctx context.Context, investorID string) (*services.SubscriptionState, error)
	Unlocks(ctx context.Context, founderID string) ([]domain.PitchUnlock, error)
}

// SupportService answers support chats and tickets.
type SupportService interface {
	Chat(ctx context.Context, p entitlement.Principal, message string) (support.Reply, error)
	CreateTicket(ctx context.Context, p entitlement.Principal, subject, message string) (*services.TicketCreated, error)
	ListTickets(ctx context.Context, p entitlement.Principal) ([]services.TicketListItem, error)
	GetTicket(ctx context.Context, p entitlement.Principal, ticketID string) (*services.TicketDetail, error)
	PostMessage(ctx context.Context, p entitlement.Principal, ticketID, content string) (*services.TicketReply, error)
}

// AdminService is the talent review queue.
type AdminService interface {
	PendingTalent(ctx context.Context, limit, offset int) (*services.PendingTalent, error)
	Approve(ctx context.Context, profileID string) (*domain.TalentProfile, error)
	Reject(ctx context.Context, profileID, reason string) (*domain.TalentProfile, error)
	Stats(ctx context.Context) (*services.ReviewStats, error)
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers. Handler tests may leave
// members nil when their routes are not exercised.
type Services struct {
	Auth        AuthService
	Profiles    ProfileService
	Startups    StartupService
	Pitches     PitchService
	TalentPitch TalentPitchService
	QA          QAService
	Templates   TemplateService
	TalentQA    TalentQAService
	Billing     BillingService
	Support     SupportService
	Admin       AdminService
}

// Handlers groups the HTTP endpoints of the API.
type Handlers struct {
	svc Services
}

// New constructs Handlers bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{svc: s}
}
