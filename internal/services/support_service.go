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
	"github.com/caerus-app/caerus-backend/internal/support"
)

const (
	maxSubjectRunes = 255
	previewRunes    = 100
)

// TicketListItem is a ticket with a preview of its latest message.
type TicketListItem struct {
	repo.TicketSummary
	LastMessage *string `json:"last_message"`
	LastSender  *string `json:"last_sender"`
}

// TicketDetail is a ticket with its full history.
type TicketDetail struct {
	domain.SupportTicket
	Messages []domain.SupportMessage `json:"messages"`
}

// TicketCreated is the outcome of opening a ticket.
type TicketCreated struct {
	Ticket     domain.SupportTicket `json:"ticket"`
	AIResponse string               `json:"ai_response"`
	NeedsHuman bool                 `json:"needs_human"`
}

// TicketReply is the outcome of posting to a ticket.
type TicketReply struct {
	Message    domain.SupportMessage `json:"message"`
	AIResponse string                `json:"ai_response"`
	NeedsHuman bool                  `json:"needs_human"`
}

// SupportService stores help tickets and asks the responder for an answer
// to every user message.
type SupportService struct {
	DB        *gorm.DB
	Responder support.Responder
}

func (s *SupportService) span(ctx context.Context, name string, p entitlement.Principal) (context.Context, trace.Span) {
	return otel.Tracer("services/SupportService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", p.UserID)))
}

func (s *SupportService) respond(ctx context.Context, p entitlement.Principal, message string) support.Reply {
	if s.Responder == nil {
		return support.Reply{Response: support.UnavailableReply, NeedsHuman: true}
	}
	return s.Responder.Respond(ctx, string(p.Role), message)
}

func cleanSupportText(v, field string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalidf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > max {
		return "", invalidf("%s too long: max %d characters", field, max)
	}
	return v, nil
}

// Chat answers a message without opening a ticket.
func (s *SupportService) Chat(ctx context.Context, p entitlement.Principal, message string) (support.Reply, error) {
	ctx, span := s.span(ctx, "Chat", p)
	defer span.End()

	msg, err := cleanSupportText(message, "content", MaxMessageRunes)
	if err != nil {
		return support.Reply{}, err
	}
	return s.respond(ctx, p, msg), nil
}

// CreateTicket opens a ticket with the user's first message and the
// assistant's answer.
func (s *SupportService) CreateTicket(ctx context.Context, p entitlement.Principal, subject, message string) (*TicketCreated, error) {
	ctx, span := s.span(ctx, "CreateTicket", p)
	defer span.End()

	subject, err := cleanSupportText(subject, "subject", maxSubjectRunes)
	if err != nil {
		return nil, err
	}
	message, err = cleanSupportText(message, "message", MaxMessageRunes)
	if err != nil {
		return nil, err
	}

	// The model call happens before any write so no transaction stays open
	// across it.
	reply := s.respond(ctx, p, message)
	span.SetAttributes(attribute.Bool("support.needs_human", reply.NeedsHuman))

	t := domain.SupportTicket{UserID: p.UserID, Subject: subject, Status: domain.TicketOpen}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateTicket(ctx, tx, &t); err != nil {
			return err
		}
		return s.appendExchange(ctx, tx, t.ID, message, reply.Response, nil)
	})
	if err != nil {
		return nil, err
	}
	return &TicketCreated{Ticket: t, AIResponse: reply.Response, NeedsHuman: reply.NeedsHuman}, nil
}

// appendExchange stores a user message followed by the assistant reply.
func (s *SupportService) appendExchange(ctx context.Context, tx *gorm.DB, ticketID, userText, aiText string, user *domain.SupportMessage) error {
	now := time.Now().UTC()
	if user == nil {
		user = &domain.SupportMessage{}
	}
	*user = domain.SupportMessage{TicketID: ticketID, SenderType: domain.SenderUser, Content: userText, CreatedAt: now}
	if err := repo.AddSupportMessage(ctx, tx, user); err != nil {
		return err
	}
	return repo.AddSupportMessage(ctx, tx, &domain.SupportMessage{
		TicketID:   ticketID,
		SenderType: domain.SenderAI,
		Content:    aiText,
		CreatedAt:  now.Add(time.Microsecond),
	})
}

// ListTickets returns the user's tickets, most recently active first.
func (s *SupportService) ListTickets(ctx context.Context, p entitlement.Principal) ([]TicketListItem, error) {
	ctx, span := s.span(ctx, "ListTickets", p)
	defer span.End()

	tickets, err := repo.ListTickets(ctx, s.DB, p.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]TicketListItem, 0, len(tickets))
	for _, t := range tickets {
		item := TicketListItem{TicketSummary: t}
		last, err := repo.LastSupportMessage(ctx, s.DB, t.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			preview := truncateRunes(last.Content, previewRunes)
			sender := last.SenderType
			item.LastMessage, item.LastSender = &preview, &sender
		}
		out = append(out, item)
	}
	return out, nil
}

// GetTicket returns an owned ticket with its messages, oldest first.
func (s *SupportService) GetTicket(ctx context.Context, p entitlement.Principal, ticketID string) (*TicketDetail, error) {
	ctx, span := s.span(ctx, "GetTicket", p)
	defer span.End()
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	t, err := repo.GetOwnedTicket(ctx, s.DB, ticketID, p.UserID)
	if err != nil {
		return nil, notFound(err, "ticket")
	}
	msgs, err := repo.ListSupportMessages(ctx, s.DB, t.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{SupportTicket: *t, Messages: msgs}, nil
}

// PostMessage appends a user message to an owned ticket along with the
// assistant's answer.
func (s *SupportService) PostMessage(ctx context.Context, p entitlement.Principal, ticketID, content string) (*TicketReply, error) {
	ctx, span := s.span(ctx, "PostMessage", p)
	defer span.End()
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	content, err := cleanSupportText(content, "content", MaxMessageRunes)
	if err != nil {
		return nil, err
	}
	t, err := repo.GetOwnedTicket(ctx, s.DB, ticketID, p.UserID)
	if err != nil {
		return nil, notFound(err, "ticket")
	}

	reply := s.respond(ctx, p, content)
	var user domain.SupportMessage
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.appendExchange(ctx, tx, t.ID, content, reply.Response, &user)
	})
	if err != nil {
		return nil, err
	}
	return &TicketReply{Message: user, AIResponse: reply.Response, NeedsHuman: reply.NeedsHuman}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
