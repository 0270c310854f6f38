package services

import (
	"context"
	"errors"
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

// ThreadStartup is the startup a Q&A thread is about.
type ThreadStartup struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

// QAThreadSummary is a thread as listed for either participant.
type QAThreadSummary struct {
	ID          string              `json:"id"`
	PitchID     string              `json:"pitch_id"`
	InvestorID  string              `json:"investor_id"`
	Status      domain.ThreadStatus `json:"status"`
	Startup     ThreadStartup       `json:"startup"`
	LastMessage *MessageView        `json:"last_message"`
	UnreadCount int64               `json:"unread_count"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ThreadRef identifies a thread returned by create-or-get.
type ThreadRef struct {
	ThreadID  string    `json:"thread_id"`
	Created   bool      `json:"created"`
	CreatedAt time.Time `json:"created_at"`
}

// QAService runs investor Q&A threads on founder pitches.
type QAService struct {
	DB       *gorm.DB
	Notifier notify.Notifier

	// StatusLocked makes interested and declined terminal.
	StatusLocked   bool
	IdempotencyTTL time.Duration
	Log            zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *QAService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *QAService) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.Discard{}
	}
	return s.Notifier
}

func (s *QAService) span(ctx context.Context, name string, p entitlement.Principal) (context.Context, trace.Span) {
	return otel.Tracer("services/QAService").Start(ctx, name,
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("user.role", string(p.Role)),
		))
}

// CreateThread returns the investor's thread on a published pitch, creating
// it when absent. Only subscribed investors may open threads.
func (s *QAService) CreateThread(ctx context.Context, investorID, pitchID string) (*ThreadRef, error) {
	ctx, span := s.span(ctx, "CreateThread", entitlement.Principal{UserID: investorID, Role: domain.RoleInvestor})
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID))

	sub, err := entitlement.HasActiveSubscription(ctx, s.DB, investorID, s.now())
	if err != nil {
		return nil, err
	}
	if !sub {
		return nil, &detailError{kind: ErrPaymentRequired, msg: "an active subscription is required to ask questions"}
	}
	p, err := repo.GetPublishedPitch(ctx, s.DB, pitchID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}
	t, created, err := repo.FindOrCreateQAThread(ctx, s.DB, p, investorID)
	if err != nil {
		return nil, err
	}
	return &ThreadRef{ThreadID: t.ID, Created: created, CreatedAt: t.CreatedAt}, nil
}

// ListThreads returns the caller's threads, most recently active first, with
// the last message and the caller's unread count.
func (s *QAService) ListThreads(ctx context.Context, p entitlement.Principal) ([]QAThreadSummary, error) {
	ctx, span := s.span(ctx, "ListThreads", p)
	defer span.End()

	if err := entitlement.Guard(p, domain.RoleInvestor, domain.RoleFounder); err != nil {
		return nil, err
	}
	var (
		threads []domain.QAThread
		err     error
	)
	if p.Role == domain.RoleInvestor {
		threads, err = repo.ListQAThreadsForInvestor(ctx, s.DB, p.UserID)
	} else {
		threads, err = repo.ListQAThreadsForFounder(ctx, s.DB, p.UserID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]QAThreadSummary, 0, len(threads))
	for _, t := range threads {
		last, err := repo.LastQAMessage(ctx, s.DB, t.ID)
		if err != nil {
			return nil, err
		}
		unread, err := repo.CountUnread(ctx, s.DB, &domain.QAMessage{}, t.ID, p.UserID)
		if err != nil {
			return nil, err
		}
		sum := QAThreadSummary{
			ID:          t.ID,
			PitchID:     t.PitchID,
			InvestorID:  t.InvestorID,
			Status:      t.Status,
			Startup:     ThreadStartup{ID: t.Pitch.Startup.ID, Name: t.Pitch.Startup.Name, LogoURL: t.Pitch.Startup.LogoURL},
			UnreadCount: unread,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if last != nil {
			roles, err := senderRoles(ctx, s.DB, last.SenderID)
			if err != nil {
				return nil, err
			}
			v := qaView(*last, roles)
			sum.LastMessage = &v
		}
		out = append(out, sum)
	}
	return out, nil
}

// participantThread loads a thread the caller takes part in. Anyone else
// gets ErrNotFound.
func (s *QAService) participantThread(ctx context.Context, p entitlement.Principal, threadID string) (*domain.QAThread, error) {
	t, err := repo.GetQAThread(ctx, s.DB, threadID)
	if err != nil {
		return nil, notFound(err, "thread")
	}
	switch {
	case p.Role == domain.RoleInvestor && t.InvestorID == p.UserID:
	case p.Role == domain.RoleFounder && t.Pitch.Startup.FounderID == p.UserID:
	default:
		return nil, notFoundf("thread not found")
	}
	return t, nil
}

// Messages returns the thread history, oldest first, and marks the
// counterparty's messages read.
func (s *QAService) Messages(ctx context.Context, p entitlement.Principal, threadID string) ([]MessageView, error) {
	ctx, span := s.span(ctx, "Messages", p)
	defer span.End()
	span.SetAttributes(attribute.String("thread.id", threadID))

	t, err := s.participantThread(ctx, p, threadID)
	if err != nil {
		return nil, err
	}
	if _, err := repo.MarkRead(ctx, s.DB, &domain.QAMessage{}, t.ID, p.UserID); err != nil {
		return nil, err
	}
	msgs, err := repo.ListQAMessages(ctx, s.DB, t.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.SenderID)
	}
	roles, err := senderRoles(ctx, s.DB, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, qaView(m, roles))
	}
	return out, nil
}

// PostMessage appends a message and notifies the other participant. A
// non-empty idempotencyKey makes retries return the first message.
func (s *QAService) PostMessage(ctx context.Context, p entitlement.Principal, threadID, idempotencyKey string, in MessageInput) (*PostResult, error) {
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
			return repo.CreateQAMessage(ctx, tx, &domain.QAMessage{
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
	m, err := repo.GetQAMessage(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if !replayed {
		s.notifyMessage(ctx, t, p, m.ID)
	}
	return &PostResult{Message: qaView(*m, map[string]domain.Role{p.UserID: p.Role}), Replayed: replayed}, nil
}

func (s *QAService) notifyMessage(ctx context.Context, t *domain.QAThread, sender entitlement.Principal, messageID string) {
	startup := t.Pitch.Startup.Name
	if sender.Role == domain.RoleInvestor {
		investor, _ := displayNameOf(ctx, s.DB, sender.UserID, domain.RoleInvestor)
		s.notifier().Notify(notify.NewQuestion(
			pushToken(ctx, s.DB, t.Pitch.Startup.FounderID), investor, startup, t.ID, messageID))
		return
	}
	founder, _ := displayNameOf(ctx, s.DB, sender.UserID, domain.RoleFounder)
	s.notifier().Notify(notify.FounderReplied(
		pushToken(ctx, s.DB, t.InvestorID), founder, startup, t.ID, messageID))
}

// UpdateStatus moves the investor's thread to status. Setting the current
// status again is a no-op. A change to interested or declined notifies the
// founder once the new status is committed.
func (s *QAService) UpdateStatus(ctx context.Context, investorID, threadID string, status domain.ThreadStatus) (*domain.QAThread, error) {
	p := entitlement.Principal{UserID: investorID, Role: domain.RoleInvestor}
	ctx, span := s.span(ctx, "UpdateStatus", p)
	defer span.End()
	span.SetAttributes(
		attribute.String("thread.id", threadID),
		attribute.String("thread.status", string(status)),
	)

	if !status.Valid() {
		return nil, invalidf("status must be one of active, interested, declined")
	}
	t, err := repo.GetQAThread(ctx, s.DB, threadID)
	if err != nil {
		return nil, notFound(err, "thread")
	}
	if t.InvestorID != investorID {
		return nil, notFoundf("thread not found")
	}
	if t.Status == status {
		return t, nil
	}
	if s.StatusLocked && t.Status != domain.ThreadActive {
		return nil, conflictf("thread status is already %s", t.Status)
	}
	from, changedAt := t.Status, s.now()
	if err := repo.UpdateQAThreadStatus(ctx, s.DB, t.ID, from, status, changedAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, conflictf("thread status changed concurrently, reload and retry")
		}
		return nil, err
	}
	t.Status = status
	t.UpdatedAt = changedAt

	var n notify.Notification
	investor, _ := displayNameOf(ctx, s.DB, investorID, domain.RoleInvestor)
	token := pushToken(ctx, s.DB, t.Pitch.Startup.FounderID)
	switch status {
	case domain.ThreadInterested:
		n = notify.InvestorInterested(token, investor, t.Pitch.Startup.Name, t.ID, from, changedAt)
	case domain.ThreadDeclined:
		n = notify.InvestorDeclined(token, investor, t.Pitch.Startup.Name, t.ID, from, changedAt)
	default:
		return t, nil
	}
	if !s.notifier().Notify(n) {
		s.Log.Debug().Str("thread_id", t.ID).Str("status", string(status)).Msg("status notification not queued")
	}
	return t, nil
}
