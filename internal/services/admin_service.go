package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/utils"
)

// PendingTalent is one page of the review queue.
type PendingTalent struct {
	Profiles []domain.TalentProfile `json:"profiles"`
	Total    int64                  `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// ReviewStats counts talent profiles per review status.
type ReviewStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// AdminService reviews talent applications.
type AdminService struct {
	DB *gorm.DB

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *AdminService) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("services/AdminService").Start(ctx, name)
}

// PendingTalent lists onboarded talent awaiting review, oldest application
// first.
func (s *AdminService) PendingTalent(ctx context.Context, limit, offset int) (*PendingTalent, error) {
	ctx, span := s.span(ctx, "PendingTalent")
	defer span.End()

	limit, offset = utils.ClampLimitOffset(limit, offset)
	profiles, total, err := repo.ListTalentByStatus(ctx, s.DB, domain.TalentPending, true, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PendingTalent{Profiles: profiles, Total: total, Limit: limit, Offset: offset}, nil
}

// Approve makes a pending talent profile visible in feeds.
func (s *AdminService) Approve(ctx context.Context, profileID string) (*domain.TalentProfile, error) {
	ctx, span := s.span(ctx, "Approve")
	defer span.End()
	span.SetAttributes(attribute.String("talent_profile.id", profileID))

	return s.transition(ctx, profileID, domain.TalentApproved, map[string]any{
		"approved_at":      s.now(),
		"rejection_reason": "",
	})
}

// Reject closes a pending application with an optional reason shown to the
// applicant.
func (s *AdminService) Reject(ctx context.Context, profileID, reason string) (*domain.TalentProfile, error) {
	ctx, span := s.span(ctx, "Reject")
	defer span.End()
	span.SetAttributes(attribute.String("talent_profile.id", profileID))

	return s.transition(ctx, profileID, domain.TalentRejected, map[string]any{
		"rejection_reason": strings.TrimSpace(reason),
	})
}

func (s *AdminService) transition(ctx context.Context, profileID, to string, fields map[string]any) (*domain.TalentProfile, error) {
	err := repo.TransitionTalentStatus(ctx, s.DB, profileID, domain.TalentPending, to, fields)
	if errors.Is(err, repo.ErrNotFound) {
		p, gerr := repo.GetTalentProfileByID(ctx, s.DB, profileID)
		if gerr != nil {
			return nil, notFound(gerr, "talent profile")
		}
		return nil, conflictf("profile is already %s", p.Status)
	}
	if err != nil {
		return nil, err
	}
	return repo.GetTalentProfileByID(ctx, s.DB, profileID)
}

// Stats counts talent profiles by review status.
func (s *AdminService) Stats(ctx context.Context) (*ReviewStats, error) {
	ctx, span := s.span(ctx, "Stats")
	defer span.End()

	counts, err := repo.CountTalentByStatus(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := &ReviewStats{
		Pending:  counts[domain.TalentPending],
		Approved: counts[domain.TalentApproved],
		Rejected: counts[domain.TalentRejected],
	}
	out.Total = out.Pending + out.Approved + out.Rejected
	return out, nil
}

// SetAdmin grants or revokes the admin claim of the user with email.
func (s *AdminService) SetAdmin(ctx context.Context, email string, admin bool) error {
	ctx, span := s.span(ctx, "SetAdmin")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalidf("email is required")
	}
	return notFound(repo.SetAdmin(ctx, s.DB, email, admin), "user")
}
