package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// SendResult reports the questions posted by Send.
type SendResult struct {
	ThreadID     string   `json:"thread_id"`
	MessagesSent int      `json:"messages_sent"`
	Questions    []string `json:"questions"`
}

// TemplateService manages investors' reusable questions and sends them to
// founders through Q&A threads.
type TemplateService struct {
	DB *gorm.DB

	// Threads delivers the new-question notification and supplies the clock.
	Threads *QAService
}

func (s *TemplateService) span(ctx context.Context, name, investorID string) (context.Context, trace.Span) {
	return otel.Tracer("services/TemplateService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", investorID)))
}

func cleanQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", invalidf("question_text is required")
	}
	if utf8.RuneCountInString(q) > MaxMessageRunes {
		return "", invalidf("question_text too long: max %d characters", MaxMessageRunes)
	}
	return q, nil
}

// List returns the investor's templates, seeding the defaults the first time.
func (s *TemplateService) List(ctx context.Context, investorID string) ([]domain.QuestionTemplate, error) {
	ctx, span := s.span(ctx, "List", investorID)
	defer span.End()

	out, err := repo.ListTemplates(ctx, s.DB, investorID)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}
	return repo.SeedDefaultTemplates(ctx, s.DB, investorID)
}

// Create appends a custom template after the investor's existing ones.
func (s *TemplateService) Create(ctx context.Context, investorID, question string) (*domain.QuestionTemplate, error) {
	ctx, span := s.span(ctx, "Create", investorID)
	defer span.End()

	q, err := cleanQuestion(question)
	if err != nil {
		return nil, err
	}
	order, err := repo.NextTemplateOrder(ctx, s.DB, investorID)
	if err != nil {
		return nil, err
	}
	t := &domain.QuestionTemplate{InvestorID: investorID, QuestionText: q, DisplayOrder: order}
	if err := repo.CreateTemplate(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update changes the text or position of an owned template.
func (s *TemplateService) Update(ctx context.Context, investorID, id string, question *string, order *int) (*domain.QuestionTemplate, error) {
	ctx, span := s.span(ctx, "Update", investorID)
	defer span.End()
	span.SetAttributes(attribute.String("template.id", id))

	fields := map[string]any{}
	if question != nil {
		q, err := cleanQuestion(*question)
		if err != nil {
			return nil, err
		}
		fields["question_text"] = q
	}
	if order != nil {
		if *order < 0 {
			return nil, invalidf("display_order cannot be negative")
		}
		fields["display_order"] = *order
	}
	if err := repo.UpdateTemplate(ctx, s.DB, id, investorID, fields); err != nil {
		return nil, notFound(err, "template")
	}
	return repo.GetOwnedTemplate(ctx, s.DB, id, investorID)
}

// Delete removes an owned template.
func (s *TemplateService) Delete(ctx context.Context, investorID, id string) error {
	ctx, span := s.span(ctx, "Delete", investorID)
	defer span.End()
	span.SetAttributes(attribute.String("template.id", id))

	return notFound(repo.DeleteTemplate(ctx, s.DB, id, investorID), "template")
}

// Send posts the selected templates and an optional custom question to the
// investor's thread on pitchID, creating the thread when needed. The founder
// receives a single notification.
func (s *TemplateService) Send(ctx context.Context, investorID, pitchID string, templateIDs []string, custom string) (*SendResult, error) {
	ctx, span := s.span(ctx, "Send", investorID)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID), attribute.Int("templates", len(templateIDs)))

	now := s.Threads.now()
	sub, err := entitlement.HasActiveSubscription(ctx, s.DB, investorID, now)
	if err != nil {
		return nil, err
	}
	if !sub {
		return nil, &detailError{kind: ErrPaymentRequired, msg: "an active subscription is required to ask questions"}
	}

	templates, err := repo.TemplatesByID(ctx, s.DB, investorID, templateIDs)
	if err != nil {
		return nil, err
	}
	questions := make([]string, 0, len(templates)+1)
	for _, t := range templates {
		questions = append(questions, t.QuestionText)
	}
	if c := strings.TrimSpace(custom); c != "" {
		q, err := cleanQuestion(c)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, invalidf("select at least one question or write a custom one")
	}

	p, err := repo.GetPublishedPitch(ctx, s.DB, pitchID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}

	var (
		thread *domain.QAThread
		lastID string
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, _, err := repo.FindOrCreateQAThread(ctx, tx, p, investorID)
		if err != nil {
			return err
		}
		thread = t
		base := time.Now().UTC()
		for i, q := range questions {
			m := &domain.QAMessage{
				ThreadID:    t.ID,
				SenderID:    investorID,
				MessageType: domain.MessageText,
				Content:     q,
				CreatedAt:   base.Add(time.Duration(i) * time.Microsecond),
			}
			if err := repo.CreateQAMessage(ctx, tx, m); err != nil {
				return err
			}
			lastID = m.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	thread.Pitch = *p
	s.Threads.notifyMessage(ctx, thread, entitlement.Principal{UserID: investorID, Role: domain.RoleInvestor}, lastID)
	return &SendResult{ThreadID: thread.ID, MessagesSent: len(questions), Questions: questions}, nil
}
