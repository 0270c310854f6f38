package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/notify"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// TalentThreadSummary is a talent thread as listed for either participant.
type TalentThreadSummary struct {
	ID             string       `json:"id"`
	PitchID        string       `json:"pitch_id"`
	TalentID       string       `json:"talent_id"`
	RecruiterID    string       `json:"recruiter_id"`
	TalentName     string       `json:"talent_name,omitempty"`
	TalentJobTitle string       `json:"talent_job_title,omitempty"`
	RecruiterName  string       `json:"recruiter_name,omitempty"`
	RecruiterRole  domain.Role  `json:"recruiter_role"`
	LastMessage    *MessageView `json:"last_message"`
	UnreadCount    int64        `json:"unread_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OpenResult is the outcome of contacting a talent.
type OpenResult struct {
	ThreadID          string      `json:"thread_id"`
	Created           bool        `json:"created"`
	Message           MessageView `json:"message"`
	DMsRemainingMonth *int        `json:"talent_dms_remaining_this_month,omitempty"`
}

// TalentQAService runs direct-message threads between recruiters and
// talent.
type TalentQAService struct {
	DB       *gorm.DB
	Resolver *entitlement.Resolver
	Notifier notify.Notifier

	IdempotencyTTL time.Duration
	Log            zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TalentQAService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *TalentQAService) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.Discard{}
	}
	return s.Notifier
}

func (s *TalentQAService) span(ctx context.Context, name string, p entitlement.Principal) (context.Context, trace.Span) {
	return otel.Tracer("services/TalentQAService").Start(ctx, name,
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("user.role", string(p.Role)),
		))
}

// Open sends message to the talent behind pitchID, creating the thread on
// first contact. First contact spends one monthly DM for founders and
// unsubscribed investors; when none are left nothing is written and
// ErrPaymentRequired is returned.
func (s *TalentQAService) Open(ctx context.Context, sender entitlement.Principal, pitchID, message string) (*OpenResult, error) {
	ctx, span := s.span(ctx, "Open", sender)
	defer span.End()
	span.SetAttributes(attribute.String("talent_pitch.id", pitchID))

	if err := entitlement.Guard(sender, domain.RoleFounder, domain.RoleInvestor); err != nil {
		return nil, err
	}
	in, err := MessageInput{Type: domain.MessageText, Content: message}.normalize()
	if err != nil {
		return nil, invalidf("initial_message is required")
	}
	pitch, _, err := repo.GetVisibleTalentPitch(ctx, s.DB, pitchID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}

	var (
		out = &OpenResult{}
		msg *domain.TalentQAMessage
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, created, err := repo.FindOrCreateTalentThread(ctx, tx, pitch, sender.UserID)
		if err != nil {
			return err
		}
		out.ThreadID, out.Created = t.ID, created
		if created {
			acc, err := s.Resolver.ConsumeDM(ctx, tx, sender)
			if err != nil {
				return err
			}
			if !acc.HasSubscription {
				left := acc.Remaining
				out.DMsRemainingMonth = &left
			}
		}
		msg = &domain.TalentQAMessage{
			ThreadID:    t.ID,
			SenderID:    sender.UserID,
			MessageType: in.Type,
			Content:     in.Content,
		}
		return repo.CreateTalentMessage(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}
	out.Message = talentView(*msg, map[string]domain.Role{sender.UserID: sender.Role})

	if out.Created {
		name, company := displayNameOf(ctx, s.DB, sender.UserID, sender.Role)
		s.notifier().Notify(notify.TalentInterest(
			pushToken(ctx, s.DB, pitch.TalentID), name, company, out.ThreadID, msg.ID))
	} else {
		s.notifyMessage(ctx, &domain.TalentQAThread{ID: out.ThreadID, TalentID: pitch.TalentID, RecruiterID: sender.UserID}, sender, msg.ID)
	}
	return out, nil
}

// List returns the caller's talent threads, most recently active first.
func (s *TalentQAService) List(ctx context.Context, p entitlement.Principal) ([]TalentThreadSummary, error) {
	ctx, span := s.span(ctx, "List", p)
	defer span.End()

	threads, err := repo.ListTalentThreadsFor(ctx, s.DB, p.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(threads))
	for _, t := range threads {
		ids = append(ids, t.RecruiterID)
	}
	roles, err := senderRoles(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]TalentThreadSummary, 0, len(threads))
	for _, t := range threads {
		last, err := repo.LastTalentMessage(ctx, s.DB, t.ID)
		if err != nil {
			return nil, err
		}
		unread, err := repo.CountUnread(ctx, s.DB, &domain.TalentQAMessage{}, t.ID, p.UserID)
		if err != nil {
			return nil, err
		}
		sum := TalentThreadSummary{
			ID:            t.ID,
			PitchID:       t.PitchID,
			TalentID:      t.TalentID,
			RecruiterID:   t.RecruiterID,
			RecruiterRole: roles[t.RecruiterID],
			UnreadCount:   unread,
			CreatedAt:     t.CreatedAt,
			UpdatedAt:     t.UpdatedAt,
		}
		if prof, err := repo.GetTalentProfile(ctx, s.DB, t.TalentID); err == nil {
			sum.TalentName, sum.TalentJobTitle = prof.FullName, prof.JobTitleSeeking
		}
		sum.RecruiterName, _ = displayNameOf(ctx, s.DB, t.RecruiterID, sum.RecruiterRole)
		if last != nil {
			lr, err := senderRoles(ctx, s.DB, last.SenderID)
			if err != nil {
				return nil, err
			}
			v := talentView(*last, lr)
			sum.LastMessage = &v
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *TalentQAService) participantThread(ctx context.Context, p entitlement.Principal, threadID string) (*domain.TalentQAThread, error) {
	t, err := repo.GetTalentThread(ctx, s.DB, threadID)
	if err != nil {
		return nil, notFound(err, "thread")
	}
	if t.TalentID != p.UserID && t.RecruiterID != p.UserID {
		return nil, notFoundf("thread not found")
	}
	return t, nil
}

// Messages returns the thread history, oldest first, and marks the
// counterparty's messages read.
func (s *TalentQAService) Messages(ctx context.Context, p entitlement.Principal, threadID string) ([]MessageView, error) {
	ctx, span := s.span(ctx, "Messages", p)
	defer span.End()
	span.SetAttributes(attribute.String("thread.id", threadID))

	t, err := s.participantThread(ctx, p, threadID)
	if err != nil {
		return nil, err
	}
	if _, err := repo.MarkRead(ctx, s.DB, &domain.TalentQAMessage{}, t.ID, p.UserID); err != nil {
		return nil, err
	}
	msgs, err := repo.ListTalentMessages(ctx, s.DB, t.ID)
	if err != nil {
		return nil, err
	}
	roles, err := senderRoles(ctx, s.DB, t.TalentID, t.RecruiterID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, talentView(m, roles))
	}
	return out, nil
}

// PostMessage appends a message to an existing thread. Replies never spend
// quota. A non-empty idempotencyKey makes retries return the first message.
func (s *TalentQAService) PostMessage(ctx context.Context, p entitlement.Principal, threadID, idempotencyKey string, in MessageInput) (*PostResult, error) {
	ctx, span := s.span(ctx, "PostMessage", p)
	defer span.End()
	span.SetAttributes(attribute.String("thread.id", threadID))

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t, err := s.participantThread(ctx, p, threadID)
	if err != nil {
		return nil, err
	}
	id, replayed, err := idempotentCreate(ctx, s.DB, p.UserID, t.ID, idempotencyKey, s.IdempotencyTTL, s.now(),
		func(tx *gorm.DB, id string) error {
			return repo.CreateTalentMessage(ctx, tx, &domain.TalentQAMessage{
				ID:          id,
				ThreadID:    t.ID,
				SenderID:    p.UserID,
				MessageType: in.Type,
				Content:     in.Content,
				VideoURL:    in.VideoURL,
			})
		})
	if err != nil {
		return nil, err
	}
	m, err := repo.GetTalentMessage(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if !replayed {
		s.notifyMessage(ctx, t, p, m.ID)
	}
	return &PostResult{Message: talentView(*m, map[string]domain.Role{p.UserID: p.Role}), Replayed: replayed}, nil
}

func (s *TalentQAService) notifyMessage(ctx context.Context, t *domain.TalentQAThread, sender entitlement.Principal, messageID string) {
	if sender.UserID == t.TalentID {
		name, _ := displayNameOf(ctx, s.DB, sender.UserID, domain.RoleTalent)
		s.notifier().Notify(notify.TalentReplied(pushToken(ctx, s.DB, t.RecruiterID), name, t.ID, messageID))
		return
	}
	name, company := displayNameOf(ctx, s.DB, sender.UserID, sender.Role)
	s.notifier().Notify(notify.TalentInterest(pushToken(ctx, s.DB, t.TalentID), name, company, t.ID, messageID))
}
