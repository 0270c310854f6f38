package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/repo"
)

// Me is the signed-in account with its role profile.
type Me struct {
	User    *domain.User `json:"user"`
	Profile any          `json:"profile"`
}

// AccountUpdate is a partial update of the account and its role profile.
// Nil fields are left unchanged. Fields a role's profile lacks are ignored.
type AccountUpdate struct {
	AvatarURL   *string
	PushToken   *string
	FullName    *string
	LinkedinURL *string
	TwitterURL  *string
	WebsiteURL  *string
}

// FounderOnboarding completes a founder profile.
type FounderOnboarding struct {
	FullName             string
	CompanyName          string
	LinkedinURL          string
	TwitterURL           string
	WebsiteURL           string
	SeekingInvestorTypes []string
	DesiredCheckSizeMin  *int64
	DesiredCheckSizeMax  *int64
	ValueAddPreferences  []string
}

// InvestorOnboarding completes an investor profile.
type InvestorOnboarding struct {
	FullName      string
	FirmName      string
	LinkedinURL   string
	TwitterURL    string
	WebsiteURL    string
	TicketSizeMin *int64
	TicketSizeMax *int64
	Sectors       []string
	Stages        []string
	Geographies   []string
	InvestorType  string
}

// TalentOnboarding completes a talent profile and submits it for review.
type TalentOnboarding struct {
	FullName         string
	JobTitleSeeking  string
	Skills           []string
	ExperienceLevel  string
	CompensationType string
	SalaryRangeMin   *int64
	SalaryRangeMax   *int64
	Availability     string
	PastProjects     string
	PortfolioURL     string
	Certifications   []string
	LinkedinURL      string
	Location         string
	RemotePreference string
	PreferredSectors []string
}

// FounderPublic is what investors and talent see of a founder.
type FounderPublic struct {
	Profile   *domain.FounderProfile `json:"profile"`
	AvatarURL string                 `json:"avatar_url,omitempty"`
	Startups  []domain.Startup       `json:"startups"`
}

// InvestorPublic is what founders and talent see of an investor.
type InvestorPublic struct {
	Profile   *domain.InvestorProfile `json:"profile"`
	AvatarURL string                  `json:"avatar_url,omitempty"`
}

// ProfileService manages accounts and role profiles.
type ProfileService struct {
	DB *gorm.DB
}

func (s *ProfileService) span(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return otel.Tracer("services/ProfileService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", userID)))
}

// Me returns the account and its role profile.
func (s *ProfileService) Me(ctx context.Context, userID string) (*Me, error) {
	ctx, span := s.span(ctx, "Me", userID)
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, notFound(err, "account")
	}
	var prof any
	switch u.Role {
	case domain.RoleFounder:
		prof, err = repo.GetFounderProfile(ctx, s.DB, userID)
	case domain.RoleInvestor:
		prof, err = repo.GetInvestorProfile(ctx, s.DB, userID)
	case domain.RoleTalent:
		prof, err = repo.GetTalentProfile(ctx, s.DB, userID)
	}
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return &Me{User: u, Profile: prof}, nil
}

// UpdateAccount applies a partial update and returns the refreshed account.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID string, in AccountUpdate) (*Me, error) {
	ctx, span := s.span(ctx, "UpdateAccount", userID)
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, notFound(err, "account")
	}

	userFields := map[string]any{}
	if in.AvatarURL != nil {
		userFields["avatar_url"] = strings.TrimSpace(*in.AvatarURL)
	}
	if in.PushToken != nil {
		userFields["push_token"] = strings.TrimSpace(*in.PushToken)
	}

	profFields := map[string]any{}
	if in.FullName != nil {
		profFields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	links := map[string]*string{"linkedin_url": in.LinkedinURL}
	if u.Role != domain.RoleTalent {
		links["twitter_url"] = in.TwitterURL
		links["website_url"] = in.WebsiteURL
	}
	for col, v := range links {
		if v == nil {
			continue
		}
		clean, err := optionalURL(*v, col)
		if err != nil {
			return nil, err
		}
		profFields[col] = clean
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateUser(ctx, tx, userID, userFields); err != nil {
			return err
		}
		return repo.UpdateProfile(ctx, tx, profileModel(u.Role), userID, profFields)
	})
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return s.Me(ctx, userID)
}

// OnboardFounder fills in and completes the founder profile.
func (s *ProfileService) OnboardFounder(ctx context.Context, userID string, in FounderOnboarding) (*domain.FounderProfile, error) {
	ctx, span := s.span(ctx, "OnboardFounder", userID)
	defer span.End()

	if strings.TrimSpace(in.FullName) == "" {
		return nil, invalidf("full_name is required")
	}
	if err := checkRange(in.DesiredCheckSizeMin, in.DesiredCheckSizeMax, "desired check size"); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"full_name":              strings.TrimSpace(in.FullName),
		"company_name":           strings.TrimSpace(in.CompanyName),
		"seeking_investor_types": domain.StringList(cleanList(in.SeekingInvestorTypes)),
		"desired_check_size_min": in.DesiredCheckSizeMin,
		"desired_check_size_max": in.DesiredCheckSizeMax,
		"value_add_preferences":  domain.StringList(cleanList(in.ValueAddPreferences)),
		"profile_completed":      true,
		"onboarding_completed":   true,
	}
	if err := putURLs(fields, map[string]string{
		"linkedin_url": in.LinkedinURL, "twitter_url": in.TwitterURL, "website_url": in.WebsiteURL,
	}); err != nil {
		return nil, err
	}
	if err := repo.UpdateProfile(ctx, s.DB, &domain.FounderProfile{}, userID, fields); err != nil {
		return nil, notFound(err, "founder profile")
	}
	return repo.GetFounderProfile(ctx, s.DB, userID)
}

// OnboardInvestor fills in and completes the investor profile.
func (s *ProfileService) OnboardInvestor(ctx context.Context, userID string, in InvestorOnboarding) (*domain.InvestorProfile, error) {
	ctx, span := s.span(ctx, "OnboardInvestor", userID)
	defer span.End()

	if strings.TrimSpace(in.FullName) == "" {
		return nil, invalidf("full_name is required")
	}
	if err := checkRange(in.TicketSizeMin, in.TicketSizeMax, "ticket size"); err != nil {
		return nil, err
	}
	for _, st := range in.Stages {
		if !domain.ValidStage(st) {
			return nil, invalidf("unknown stage %q", st)
		}
	}
	fields := map[string]any{
		"full_name":            strings.TrimSpace(in.FullName),
		"firm_name":            strings.TrimSpace(in.FirmName),
		"ticket_size_min":      in.TicketSizeMin,
		"ticket_size_max":      in.TicketSizeMax,
		"sectors":              domain.StringList(cleanList(in.Sectors)),
		"stages":               domain.StringList(cleanList(in.Stages)),
		"geographies":          domain.StringList(cleanList(in.Geographies)),
		"investor_type":        strings.TrimSpace(in.InvestorType),
		"profile_completed":    true,
		"onboarding_completed": true,
	}
	if err := putURLs(fields, map[string]string{
		"linkedin_url": in.LinkedinURL, "twitter_url": in.TwitterURL, "website_url": in.WebsiteURL,
	}); err != nil {
		return nil, err
	}
	if err := repo.UpdateProfile(ctx, s.DB, &domain.InvestorProfile{}, userID, fields); err != nil {
		return nil, notFound(err, "investor profile")
	}
	return repo.GetInvestorProfile(ctx, s.DB, userID)
}

// OnboardTalent fills in the talent profile and submits it for review.
// Approved talent keep their status; everyone else goes back to pending.
func (s *ProfileService) OnboardTalent(ctx context.Context, userID string, in TalentOnboarding) (*domain.TalentProfile, error) {
	ctx, span := s.span(ctx, "OnboardTalent", userID)
	defer span.End()

	if strings.TrimSpace(in.FullName) == "" {
		return nil, invalidf("full_name is required")
	}
	if strings.TrimSpace(in.LinkedinURL) == "" {
		return nil, invalidf("linkedin_url is required for talent profiles")
	}
	if err := checkRange(in.SalaryRangeMin, in.SalaryRangeMax, "salary range"); err != nil {
		return nil, err
	}
	skills := cleanList(in.Skills)
	if len(skills) == 0 {
		return nil, invalidf("at least one skill is required")
	}

	cur, err := repo.GetTalentProfile(ctx, s.DB, userID)
	if err != nil {
		return nil, notFound(err, "talent profile")
	}
	fields := map[string]any{
		"full_name":            strings.TrimSpace(in.FullName),
		"job_title_seeking":    strings.TrimSpace(in.JobTitleSeeking),
		"skills":               domain.StringList(skills),
		"experience_level":     strings.TrimSpace(in.ExperienceLevel),
		"compensation_type":    strings.TrimSpace(in.CompensationType),
		"salary_range_min":     in.SalaryRangeMin,
		"salary_range_max":     in.SalaryRangeMax,
		"availability":         strings.TrimSpace(in.Availability),
		"past_projects":        strings.TrimSpace(in.PastProjects),
		"certifications":       domain.StringList(cleanList(in.Certifications)),
		"location":             strings.TrimSpace(in.Location),
		"remote_preference":    strings.TrimSpace(in.RemotePreference),
		"preferred_sectors":    domain.StringList(cleanList(in.PreferredSectors)),
		"profile_completed":    true,
		"onboarding_completed": true,
	}
	if err := putURLs(fields, map[string]string{
		"linkedin_url": in.LinkedinURL, "portfolio_url": in.PortfolioURL,
	}); err != nil {
		return nil, err
	}
	if cur.Status != domain.TalentApproved {
		fields["status"] = domain.TalentPending
		fields["applied_at"] = time.Now().UTC()
		fields["rejection_reason"] = ""
	}
	if err := repo.UpdateProfile(ctx, s.DB, &domain.TalentProfile{}, userID, fields); err != nil {
		return nil, notFound(err, "talent profile")
	}
	return repo.GetTalentProfile(ctx, s.DB, userID)
}

// Founder returns a founder's public profile and startups.
func (s *ProfileService) Founder(ctx context.Context, founderID string) (*FounderPublic, error) {
	ctx, span := s.span(ctx, "Founder", founderID)
	defer span.End()

	prof, err := repo.GetFounderProfile(ctx, s.DB, founderID)
	if err != nil {
		return nil, notFound(err, "founder")
	}
	u, err := repo.GetUser(ctx, s.DB, founderID)
	if err != nil {
		return nil, notFound(err, "founder")
	}
	startups, err := repo.ListStartupsByFounder(ctx, s.DB, founderID)
	if err != nil {
		return nil, err
	}
	return &FounderPublic{Profile: prof, AvatarURL: u.AvatarURL, Startups: startups}, nil
}

// Investor returns an investor's public profile.
func (s *ProfileService) Investor(ctx context.Context, investorID string) (*InvestorPublic, error) {
	ctx, span := s.span(ctx, "Investor", investorID)
	defer span.End()

	prof, err := repo.GetInvestorProfile(ctx, s.DB, investorID)
	if err != nil {
		return nil, notFound(err, "investor")
	}
	u, err := repo.GetUser(ctx, s.DB, investorID)
	if err != nil {
		return nil, notFound(err, "investor")
	}
	return &InvestorPublic{Profile: prof, AvatarURL: u.AvatarURL}, nil
}

func profileModel(r domain.Role) any {
	switch r {
	case domain.RoleFounder:
		return &domain.FounderProfile{}
	case domain.RoleInvestor:
		return &domain.InvestorProfile{}
	default:
		return &domain.TalentProfile{}
	}
}

// optionalURL trims v and, when non-empty, requires an absolute http(s) URL.
func optionalURL(v, field string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalidf("%s must be an http(s) URL", field)
	}
	return v, nil
}

func putURLs(fields map[string]any, urls map[string]string) error {
	for col, v := range urls {
		clean, err := optionalURL(v, col)
		if err != nil {
			return err
		}
		fields[col] = clean
	}
	return nil
}

func checkRange(lo, hi *int64, what string) error {
	if (lo != nil && *lo < 0) || (hi != nil && *hi < 0) {
		return invalidf("%s cannot be negative", what)
	}
	if lo != nil && hi != nil && *lo > *hi {
		return invalidf("%s minimum exceeds maximum", what)
	}
	return nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
