package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// StartupInput carries the fields of a startup. On update, nil fields are
// left unchanged.
type StartupInput struct {
	Name            *string
	Tagline         *string
	Website         *string
	Sectors         []string
	Stage           *string
	Location        *string
	RoundSizeMin    *int64
	RoundSizeMax    *int64
	TractionBullets []string
	LogoURL         *string
}

// StartupService manages founders' startups.
type StartupService struct {
	DB *gorm.DB
}

func (s *StartupService) span(ctx context.Context, name, founderID string) (context.Context, trace.Span) {
	return otel.Tracer("services/StartupService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", founderID)))
}

// Create adds a startup for founderID. Name and a known stage are required.
func (s *StartupService) Create(ctx context.Context, founderID string, in StartupInput) (*domain.Startup, error) {
	ctx, span := s.span(ctx, "Create", founderID)
	defer span.End()

	name := strings.TrimSpace(deref(in.Name))
	if name == "" {
		return nil, invalidf("name is required")
	}
	stage := strings.TrimSpace(deref(in.Stage))
	if !domain.ValidStage(stage) {
		return nil, invalidf("stage must be one of %s", strings.Join(domain.StartupStages, ", "))
	}
	if err := checkRange(in.RoundSizeMin, in.RoundSizeMax, "round size"); err != nil {
		return nil, err
	}
	website, err := optionalURL(deref(in.Website), "website")
	if err != nil {
		return nil, err
	}

	st := &domain.Startup{
		FounderID:       founderID,
		Name:            name,
		Tagline:         strings.TrimSpace(deref(in.Tagline)),
		Website:         website,
		Sectors:         domain.StringList(cleanList(in.Sectors)),
		Stage:           stage,
		Location:        strings.TrimSpace(deref(in.Location)),
		RoundSizeMin:    in.RoundSizeMin,
		RoundSizeMax:    in.RoundSizeMax,
		TractionBullets: domain.StringList(cleanList(in.TractionBullets)),
		LogoURL:         strings.TrimSpace(deref(in.LogoURL)),
	}
	if err := repo.CreateStartup(ctx, s.DB, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ListMine returns the founder's startups, newest first.
func (s *StartupService) ListMine(ctx context.Context, founderID string) ([]domain.Startup, error) {
	ctx, span := s.span(ctx, "ListMine", founderID)
	defer span.End()
	return repo.ListStartupsByFounder(ctx, s.DB, founderID)
}

// Get returns any startup by id.
func (s *StartupService) Get(ctx context.Context, id string) (*domain.Startup, error) {
	ctx, span := otel.Tracer("services/StartupService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("startup.id", id)))
	defer span.End()

	st, err := repo.GetStartup(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, "startup")
	}
	return st, nil
}

// Update applies a partial update to a startup owned by founderID.
func (s *StartupService) Update(ctx context.Context, founderID, id string, in StartupInput) (*domain.Startup, error) {
	ctx, span := s.span(ctx, "Update", founderID)
	defer span.End()
	span.SetAttributes(attribute.String("startup.id", id))

	cur, err := repo.GetOwnedStartup(ctx, s.DB, id, founderID)
	if err != nil {
		return nil, notFound(err, "startup")
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Stage != nil {
		stage := strings.TrimSpace(*in.Stage)
		if !domain.ValidStage(stage) {
			return nil, invalidf("stage must be one of %s", strings.Join(domain.StartupStages, ", "))
		}
		fields["stage"] = stage
	}
	if in.Website != nil {
		website, err := optionalURL(*in.Website, "website")
		if err != nil {
			return nil, err
		}
		fields["website"] = website
	}
	lo, hi := cur.RoundSizeMin, cur.RoundSizeMax
	if in.RoundSizeMin != nil {
		lo = in.RoundSizeMin
		fields["round_size_min"] = lo
	}
	if in.RoundSizeMax != nil {
		hi = in.RoundSizeMax
		fields["round_size_max"] = hi
	}
	if err := checkRange(lo, hi, "round size"); err != nil {
		return nil, err
	}
	for col, v := range map[string]*string{"tagline": in.Tagline, "location": in.Location, "logo_url": in.LogoURL} {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	if in.Sectors != nil {
		fields["sectors"] = domain.StringList(cleanList(in.Sectors))
	}
	if in.TractionBullets != nil {
		fields["traction_bullets"] = domain.StringList(cleanList(in.TractionBullets))
	}

	if err := repo.UpdateStartup(ctx, s.DB, id, founderID, fields); err != nil {
		return nil, notFound(err, "startup")
	}
	return repo.GetStartup(ctx, s.DB, id)
}

// Delete removes a startup owned by founderID along with its pitches.
func (s *StartupService) Delete(ctx context.Context, founderID, id string) error {
	ctx, span := s.span(ctx, "Delete", founderID)
	defer span.End()
	span.SetAttributes(attribute.String("startup.id", id))

	return notFound(repo.DeleteStartup(ctx, s.DB, id, founderID), "startup")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
