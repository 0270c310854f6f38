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
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/storage"
	"github.com/caerus-app/caerus-backend/internal/utils"
)

// Upper bounds on pitch length, in seconds.
const (
	MaxFreePitchSeconds   = 30
	MaxPaidPitchSeconds   = 300
	MaxTalentPitchSeconds = 60
)

// UploadRequest asks for a signed upload URL for a new draft pitch.
type UploadRequest struct {
	StartupID   string
	Type        string
	Filename    string
	ContentType string
}

// UploadTicket is a draft pitch plus the URL its video must be PUT to.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	VideoID   string `json:"video_id"`
}

// PitchAccess is the feed-facing view of an investor's entitlement.
type PitchAccess struct {
	HasSubscription    bool `json:"has_subscription"`
	FreeViewsRemaining int  `json:"free_views_remaining"`
}

func pitchAccess(a entitlement.Access) PitchAccess {
	return PitchAccess{HasSubscription: a.HasSubscription, FreeViewsRemaining: a.Remaining}
}

// PitchCard is a pitch as listed in the investor feed.
type PitchCard struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	ViewCount    int            `json:"view_count"`
	CreatedAt    time.Time      `json:"created_at"`
	Startup      domain.Startup `json:"startup"`
}

// PitchFeed is one page of the investor feed.
type PitchFeed struct {
	Pitches []PitchCard `json:"pitches"`
	Total   int64       `json:"total"`
	Access  PitchAccess `json:"access"`
}

// PitchDetail is a published pitch with a signed video URL.
type PitchDetail struct {
	PitchCard
	VideoURL        string      `json:"video_url"`
	DurationSeconds int         `json:"duration_seconds"`
	AlreadyViewed   bool        `json:"already_viewed"`
	Access          PitchAccess `json:"access"`
}

// ViewReceipt is the outcome of recording a view.
type ViewReceipt struct {
	Viewed        bool `json:"viewed"`
	AlreadyViewed bool `json:"already_viewed"`
	PitchAccess
}

// StartupPitches is a startup with all of its pitches, for the dashboard.
type StartupPitches struct {
	domain.Startup
	Pitches []domain.Pitch `json:"pitches"`
}

// FounderDashboard summarizes a founder's startups and engagement.
type FounderDashboard struct {
	Startups []StartupPitches  `json:"startups"`
	Stats    repo.FounderStats `json:"stats"`
}

// PitchService runs the founder pitch lifecycle and the investor feed.
type PitchService struct {
	DB       *gorm.DB
	Resolver *entitlement.Resolver
	Storage  storage.Signer
}

func (s *PitchService) span(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return otel.Tracer("services/PitchService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", userID)))
}

// UploadURL creates a draft pitch on a startup the founder owns and returns a
// signed upload URL for its video. A 5 minute pitch needs an unlock purchase
// for the startup first.
func (s *PitchService) UploadURL(ctx context.Context, founderID string, in UploadRequest) (*UploadTicket, error) {
	ctx, span := s.span(ctx, "UploadURL", founderID)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.type", in.Type))

	if in.Type != domain.PitchTypeFree && in.Type != domain.PitchTypePaid {
		return nil, invalidf("type must be %q or %q", domain.PitchTypeFree, domain.PitchTypePaid)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, invalidf("filename is required")
	}
	if _, err := repo.GetOwnedStartup(ctx, s.DB, in.StartupID, founderID); err != nil {
		return nil, notFound(err, "startup")
	}
	if in.Type == domain.PitchTypePaid {
		ok, err := repo.HasUnlock(ctx, s.DB, in.StartupID, founderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &detailError{kind: ErrPaymentRequired, msg: "a 5 minute pitch requires purchase"}
		}
	}

	key := storage.VideoKey(in.Filename)
	url, err := s.Storage.UploadURL(ctx, key, in.ContentType)
	if err != nil {
		return nil, signError(err)
	}
	p := &domain.Pitch{StartupID: in.StartupID, Type: in.Type, VideoKey: key, Status: domain.PitchDraft}
	if err := repo.CreatePitch(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return &UploadTicket{UploadURL: url, VideoID: p.ID}, nil
}

// Publish makes a founder's pitch visible, archiving the startup's previous
// published pitch of the same type.
func (s *PitchService) Publish(ctx context.Context, founderID, pitchID string, durationSeconds int) (*domain.Pitch, error) {
	ctx, span := s.span(ctx, "Publish", founderID)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID))

	p, err := repo.GetOwnedPitch(ctx, s.DB, pitchID, founderID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}
	max := MaxFreePitchSeconds
	if p.Type == domain.PitchTypePaid {
		max = MaxPaidPitchSeconds
	}
	if durationSeconds <= 0 || durationSeconds > max {
		return nil, invalidf("duration_seconds must be between 1 and %d for this pitch", max)
	}
	if err := repo.PublishPitch(ctx, s.DB, p, map[string]any{"duration_seconds": durationSeconds}); err != nil {
		return nil, notFound(err, "pitch")
	}
	return p, nil
}

// Feed returns a page of published pitches. Investors without a subscription
// or free views are refused with ErrPaymentRequired.
func (s *PitchService) Feed(ctx context.Context, investorID string, f repo.PitchFilter) (*PitchFeed, error) {
	ctx, span := s.span(ctx, "Feed", investorID)
	defer span.End()

	acc, err := s.Resolver.PitchAccess(ctx, investorID)
	if err != nil {
		return nil, notFound(err, "investor profile")
	}
	if !acc.Allowed() {
		return nil, &entitlement.QuotaError{Kind: entitlement.KindPitchView}
	}
	f.Limit, f.Offset = utils.ClampLimitOffset(f.Limit, f.Offset)
	pitches, total, err := repo.ListPublishedPitches(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}
	out := &PitchFeed{Pitches: make([]PitchCard, 0, len(pitches)), Total: total, Access: pitchAccess(acc)}
	for _, p := range pitches {
		out.Pitches = append(out.Pitches, pitchCard(p))
	}
	return out, nil
}

// Get returns a published pitch with a signed video URL and records the view.
// A first view by an unsubscribed investor spends a free view.
func (s *PitchService) Get(ctx context.Context, investorID, pitchID string) (*PitchDetail, error) {
	ctx, span := s.span(ctx, "Get", investorID)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID))

	p, err := repo.GetPublishedPitch(ctx, s.DB, pitchID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}
	url, err := s.Storage.DownloadURL(ctx, p.VideoKey)
	if err != nil {
		return nil, signError(err)
	}
	res, err := s.Resolver.ConsumePitchView(ctx, investorID, p.ID)
	if err != nil {
		return nil, err
	}
	if !res.AlreadyViewed {
		p.ViewCount++
	}
	return &PitchDetail{
		PitchCard:       pitchCard(*p),
		VideoURL:        url,
		DurationSeconds: p.DurationSeconds,
		AlreadyViewed:   res.AlreadyViewed,
		Access:          pitchAccess(res.Access),
	}, nil
}

// View records a view without returning the video.
func (s *PitchService) View(ctx context.Context, investorID, pitchID string) (*ViewReceipt, error) {
	ctx, span := s.span(ctx, "View", investorID)
	defer span.End()
	span.SetAttributes(attribute.String("pitch.id", pitchID))

	if _, err := repo.GetPublishedPitch(ctx, s.DB, pitchID); err != nil {
		return nil, notFound(err, "pitch")
	}
	res, err := s.Resolver.ConsumePitchView(ctx, investorID, pitchID)
	if err != nil {
		return nil, err
	}
	return &ViewReceipt{Viewed: true, AlreadyViewed: res.AlreadyViewed, PitchAccess: pitchAccess(res.Access)}, nil
}

// Dashboard lists the founder's startups with their pitches and totals.
func (s *PitchService) Dashboard(ctx context.Context, founderID string) (*FounderDashboard, error) {
	ctx, span := s.span(ctx, "Dashboard", founderID)
	defer span.End()

	startups, err := repo.ListStartupsByFounder(ctx, s.DB, founderID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(startups))
	for _, st := range startups {
		ids = append(ids, st.ID)
	}
	pitches, err := repo.PitchesForStartups(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	byStartup := make(map[string][]domain.Pitch, len(startups))
	for _, p := range pitches {
		byStartup[p.StartupID] = append(byStartup[p.StartupID], p)
	}
	stats, err := repo.FounderDashboardStats(ctx, s.DB, founderID)
	if err != nil {
		return nil, err
	}

	out := &FounderDashboard{Startups: make([]StartupPitches, 0, len(startups)), Stats: stats}
	for _, st := range startups {
		ps := byStartup[st.ID]
		if ps == nil {
			ps = []domain.Pitch{}
		}
		out.Startups = append(out.Startups, StartupPitches{Startup: st, Pitches: ps})
	}
	return out, nil
}

func pitchCard(p domain.Pitch) PitchCard {
	return PitchCard{
		ID:           p.ID,
		Type:         p.Type,
		ThumbnailURL: p.ThumbnailURL,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		Startup:      p.Startup,
	}
}

// signError reports an unconfigured or failing object store as ErrUpstream.
func signError(err error) error {
	if errors.Is(err, storage.ErrDisabled) {
		return upstreamf("video storage is not configured")
	}
	return upstreamf("could not sign video url")
}
