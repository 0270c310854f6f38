package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/entitlement"
	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/storage"
	"github.com/caerus-app/caerus-backend/internal/utils"
)

// TalentUploadRequest asks for a signed upload URL for the talent's pitch.
type TalentUploadRequest struct {
	Filename    string
	ContentType string
	Headline    string
}

// TalentUploadTicket is the URL a talent pitch video must be PUT to.
type TalentUploadTicket struct {
	UploadURL string `json:"upload_url"`
	PitchID   string `json:"pitch_id"`
}

// TalentFeedQuery is the raw talent feed filter; Skills is a comma-separated
// list.
type TalentFeedQuery struct {
	Skills           string
	ExperienceLevel  string
	CompensationType string
	Location         string
	RemotePreference string
	Limit            int
	Offset           int
}

// TalentAccess is the feed-facing view of a recruiter's daily quota.
type TalentAccess struct {
	HasSubscription           bool `json:"has_subscription"`
	TalentViewsRemainingToday int  `json:"talent_views_remaining_today"`
}

func talentAccess(a entitlement.Access) TalentAccess {
	return TalentAccess{HasSubscription: a.HasSubscription, TalentViewsRemainingToday: a.Remaining}
}

// TalentSummary is the part of a talent profile recruiters see in the feed.
type TalentSummary struct {
	ID               string            `json:"id"`
	FullName         string            `json:"full_name"`
	JobTitleSeeking  string            `json:"job_title_seeking,omitempty"`
	Skills           domain.StringList `json:"skills"`
	ExperienceLevel  string            `json:"experience_level,omitempty"`
	CompensationType string            `json:"compensation_type,omitempty"`
	Location         string            `json:"location,omitempty"`
	RemotePreference string            `json:"remote_preference,omitempty"`
}

func talentSummary(p domain.TalentProfile) TalentSummary {
	return TalentSummary{
		ID:               p.UserID,
		FullName:         p.FullName,
		JobTitleSeeking:  p.JobTitleSeeking,
		Skills:           p.Skills,
		ExperienceLevel:  p.ExperienceLevel,
		CompensationType: p.CompensationType,
		Location:         p.Location,
		RemotePreference: p.RemotePreference,
	}
}

// TalentCard is a talent pitch as listed in the feed.
type TalentCard struct {
	ID           string        `json:"id"`
	Headline     string        `json:"headline,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	ViewCount    int           `json:"view_count"`
	CreatedAt    time.Time     `json:"created_at"`
	Talent       TalentSummary `json:"talent"`
}

// TalentFeed is one page of the talent feed.
type TalentFeed struct {
	Pitches []TalentCard `json:"pitches"`
	Total   int64        `json:"total"`
	Access  TalentAccess `json:"access"`
}

// TalentPitchDetail is a published talent pitch with the full profile and a
// signed video URL.
type TalentPitchDetail struct {
	ID              string               `json:"id"`
	Headline        string               `json:"headline,omitempty"`
	VideoURL        string               `json:"video_url"`
	DurationSeconds int                  `json:"duration_seconds"`
	ViewCount       int                  `json:"view_count"`
	CreatedAt       time.Time            `json:"created_at"`
	Talent          domain.TalentProfile `json:"talent"`
	AlreadyViewed   bool                 `json:"already_viewed"`
	Access          TalentAccess         `json:"access"`
}

// TalentViewReceipt is the outcome of recording a talent pitch view.
type TalentViewReceipt struct {
	Viewed        bool `json:"viewed"`
	AlreadyViewed bool `json:"already_viewed"`
	TalentAccess
}

// MyTalentPitch is the talent's own pitch. VideoURL is set once published.
type MyTalentPitch struct {
	*domain.TalentPitch
	VideoURL string `json:"video_url,omitempty"`
}

// TalentDashboard summarizes the talent's application and engagement.
type TalentDashboard struct {
	Status          string              `json:"status"`
	FullName        string              `json:"full_name"`
	JobTitleSeeking string              `json:"job_title_seeking,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Pitch           *domain.TalentPitch `json:"pitch"`
	Stats           repo.TalentStats    `json:"stats"`
}

// TalentPitchService runs the talent pitch lifecycle and the recruiter feed.
type TalentPitchService struct {
	DB       *gorm.DB
	Resolver *entitlement.Resolver
	Storage  storage.Signer
}

func (s *TalentPitchService) span(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return otel.Tracer("services/TalentPitchService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", userID)))
}

// approved returns ErrForbidden unless the talent profile is approved.
func (s *TalentPitchService) approved(ctx context.Context, talentID string) error {
	prof, err := repo.GetTalentProfile(ctx, s.DB, talentID)
	if err != nil {
		return notFound(err, "talent profile")
	}
	if prof.Status != domain.TalentApproved {
		return forbiddenf("your talent profile must be approved before you can upload a pitch")
	}
	return nil
}

// UploadURL returns a signed upload URL for the talent's pitch. An existing
// draft is reused; a published pitch blocks a new upload.
func (s *TalentPitchService) UploadURL(ctx context.Context, talentID string, in TalentUploadRequest) (*TalentUploadTicket, error) {
	ctx, span := s.span(ctx, "UploadURL", talentID)
	defer span.End()

	if strings.TrimSpace(in.Filename) == "" {
		return nil, invalidf("filename is required")
	}
	if err := s.approved(ctx, talentID); err != nil {
		return nil, err
	}
	cur, err := repo.GetCurrentTalentPitch(ctx, s.DB, talentID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if cur != nil && cur.Status == domain.PitchPublished {
		return nil, conflictf("you already have a published pitch")
	}

	key := storage.VideoKey(in.Filename)
	url, err := s.Storage.UploadURL(ctx, key, in.ContentType)
	if err != nil {
		return nil, signError(err)
	}
	headline := strings.TrimSpace(in.Headline)
	if cur != nil {
		cur.VideoKey = key
		cur.Headline = headline
		err = repo.SaveTalentPitch(ctx, s.DB, cur)
	} else {
		cur = &domain.TalentPitch{TalentID: talentID, VideoKey: key, Headline: headline, Status: domain.PitchDraft}
		err = repo.CreateTalentPitch(ctx, s.DB, cur)
	}
	if err != nil {
		return nil, err
	}
	return &TalentUploadTicket{UploadURL: url, PitchID: cur.ID}, nil
}

// Publish makes the talent's draft visible to recruiters. A talent has at
// most one published pitch.
func (s *TalentPitchService) Publish(ctx context.Context, talentID, pitchID string, durationSeconds int, headline string) (*domain.TalentPitch, error) {
	ctx, span := s.span(ctx, "Publish", talentID)
	defer span.End()
	span.SetAttributes(attribute.String("talent_pitch.id", pitchID))

	headline = strings.TrimSpace(headline)
	if headline == "" {
		return nil, invalidf("headline is required")
	}
	if durationSeconds <= 0 || durationSeconds > MaxTalentPitchSeconds {
		return nil, invalidf("duration_seconds must be between 1 and %d", MaxTalentPitchSeconds)
	}
	if err := s.approved(ctx, talentID); err != nil {
		return nil, err
	}
	p, err := repo.GetOwnedTalentPitch(ctx, s.DB, pitchID, talentID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}
	if p.Status == domain.PitchPublished {
		return nil, conflictf("pitch is already published")
	}
	cur, err := repo.GetCurrentTalentPitch(ctx, s.DB, talentID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if cur != nil && cur.Status == domain.PitchPublished && cur.ID != p.ID {
		return nil, conflictf("you already have a published pitch")
	}

	p.Status = domain.PitchPublished
	p.DurationSeconds = durationSeconds
	p.Headline = headline
	if err := repo.SaveTalentPitch(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Feed returns a page of approved talent with a published pitch.
// Recruiters past their daily quota are refused with ErrPaymentRequired.
func (s *TalentPitchService) Feed(ctx context.Context, viewer entitlement.Principal, q TalentFeedQuery) (*TalentFeed, error) {
	ctx, span := s.span(ctx, "Feed", viewer.UserID)
	defer span.End()

	acc, err := s.Resolver.TalentAccess(ctx, viewer)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	if !acc.Allowed() {
		return nil, &entitlement.QuotaError{Kind: entitlement.KindTalentView}
	}
	limit, offset := utils.ClampLimitOffset(q.Limit, q.Offset)
	rows, total, err := repo.ListTalentFeed(ctx, s.DB, repo.TalentFilter{
		Skills:           ParseSkills(q.Skills),
		ExperienceLevel:  strings.TrimSpace(q.ExperienceLevel),
		CompensationType: strings.TrimSpace(q.CompensationType),
		Location:         strings.TrimSpace(q.Location),
		RemotePreference: strings.TrimSpace(q.RemotePreference),
		Offset:           offset,
		Limit:            limit,
	})
	if err != nil {
		return nil, err
	}
	out := &TalentFeed{Pitches: make([]TalentCard, 0, len(rows)), Total: total, Access: talentAccess(acc)}
	for _, r := range rows {
		out.Pitches = append(out.Pitches, TalentCard{
			ID:           r.Pitch.ID,
			Headline:     r.Pitch.Headline,
			ThumbnailURL: r.Pitch.ThumbnailURL,
			ViewCount:    r.Pitch.ViewCount,
			CreatedAt:    r.Pitch.CreatedAt,
			Talent:       talentSummary(r.Profile),
		})
	}
	return out, nil
}

// Get returns a visible talent pitch with a signed video URL and records the
// view against the viewer's daily quota.
func (s *TalentPitchService) Get(ctx context.Context, viewer entitlement.Principal, pitchID string) (*TalentPitchDetail, error) {
	ctx, span := s.span(ctx, "Get", viewer.UserID)
	defer span.End()
	span.SetAttributes(attribute.String("talent_pitch.id", pitchID))

	p, prof, err := repo.GetVisibleTalentPitch(ctx, s.DB, pitchID)
	if err != nil {
		return nil, notFound(err, "pitch")
	}
	url, err := s.Storage.DownloadURL(ctx, p.VideoKey)
	if err != nil {
		return nil, signError(err)
	}
	res, err := s.Resolver.ConsumeTalentView(ctx, viewer, p.ID)
	if err != nil {
		return nil, err
	}
	if !res.AlreadyViewed {
		p.ViewCount++
	}
	return &TalentPitchDetail{
		ID:              p.ID,
		Headline:        p.Headline,
		VideoURL:        url,
		DurationSeconds: p.DurationSeconds,
		ViewCount:       p.ViewCount,
		CreatedAt:       p.CreatedAt,
		Talent:          *prof,
		AlreadyViewed:   res.AlreadyViewed,
		Access:          talentAccess(res.Access),
	}, nil
}

// View records a talent pitch view without returning the video.
func (s *TalentPitchService) View(ctx context.Context, viewer entitlement.Principal, pitchID string) (*TalentViewReceipt, error) {
	ctx, span := s.span(ctx, "View", viewer.UserID)
	defer span.End()
	span.SetAttributes(attribute.String("talent_pitch.id", pitchID))

	if _, _, err := repo.GetVisibleTalentPitch(ctx, s.DB, pitchID); err != nil {
		return nil, notFound(err, "pitch")
	}
	res, err := s.Resolver.ConsumeTalentView(ctx, viewer, pitchID)
	if err != nil {
		return nil, err
	}
	return &TalentViewReceipt{Viewed: true, AlreadyViewed: res.AlreadyViewed, TalentAccess: talentAccess(res.Access)}, nil
}

// Mine returns the talent's current pitch, or nil when there is none.
func (s *TalentPitchService) Mine(ctx context.Context, talentID string) (*MyTalentPitch, error) {
	ctx, span := s.span(ctx, "Mine", talentID)
	defer span.End()

	p, err := repo.GetCurrentTalentPitch(ctx, s.DB, talentID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := &MyTalentPitch{TalentPitch: p}
	if p.Status == domain.PitchPublished {
		if url, err := s.Storage.DownloadURL(ctx, p.VideoKey); err == nil {
			out.VideoURL = url
		}
	}
	return out, nil
}

// Dashboard returns the talent's application state and engagement totals.
func (s *TalentPitchService) Dashboard(ctx context.Context, talentID string) (*TalentDashboard, error) {
	ctx, span := s.span(ctx, "Dashboard", talentID)
	defer span.End()

	prof, err := repo.GetTalentProfile(ctx, s.DB, talentID)
	if err != nil {
		return nil, notFound(err, "talent profile")
	}
	var published *domain.TalentPitch
	p, err := repo.GetCurrentTalentPitch(ctx, s.DB, talentID)
	switch {
	case err == nil && p.Status == domain.PitchPublished:
		published = p
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}
	stats, err := repo.TalentDashboardStats(ctx, s.DB, talentID, published)
	if err != nil {
		return nil, err
	}
	return &TalentDashboard{
		Status:          prof.Status,
		FullName:        prof.FullName,
		JobTitleSeeking: prof.JobTitleSeeking,
		RejectionReason: prof.RejectionReason,
		Pitch:           published,
		Stats:           stats,
	}, nil
}

// ParseSkills splits a comma-separated skill list and case-folds each entry,
// dropping blanks.
func ParseSkills(csv string) []string {
	var out []string
	fold := cases.Fold()
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, fold.String(s))
	}
	return out
}
