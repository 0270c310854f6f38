// Account HTTP handlers.
//
// This file exposes the session and profile endpoints:
//   - POST /auth/signup, /auth/login       (identity token exchange)
//   - GET  /auth/me, PUT /auth/profile     (own account)
//   - POST /auth/onboarding/{role}         (role profile completion)
//   - GET  /profiles/{founders|investors}/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/services"
)

//
// DTOs
//

// SignupRequest exchanges a Firebase ID token for a session and fixes the
// account's role.
type SignupRequest struct {
	IDToken string `json:"id_token" binding:"required" example:"eyJhbGciOiJSUzI1NiIs..."`
	Role    string `json:"role"     binding:"required,oneof=founder investor talent" example:"investor"`
}

// LoginRequest exchanges a Firebase ID token for a session.
type LoginRequest struct {
	IDToken string `json:"id_token" binding:"required" example:"eyJhbGciOiJSUzI1NiIs..."`
}

// UpdateProfileRequest is a partial account update; omitted fields are kept.
type UpdateProfileRequest struct {
	AvatarURL   *string `json:"avatar_url"   example:"https://cdn.example.com/a.png"`
	PushToken   *string `json:"push_token"   example:"ExponentPushToken[xxxxxxxx]"`
	FullName    *string `json:"full_name"    example:"Ada Lovelace"`
	LinkedinURL *string `json:"linkedin_url"`
	TwitterURL  *string `json:"twitter_url"`
	WebsiteURL  *string `json:"website_url"`
}

// FounderOnboardingRequest completes a founder profile.
type FounderOnboardingRequest struct {
	FullName             string   `json:"full_name"    binding:"required,max=200" example:"Ada Lovelace"`
	CompanyName          string   `json:"company_name" binding:"required,max=200" example:"Analytical Engines Ltd"`
	LinkedinURL          string   `json:"linkedin_url"`
	TwitterURL           string   `json:"twitter_url"`
	WebsiteURL           string   `json:"website_url"`
	SeekingInvestorTypes []string `json:"seeking_investor_types"`
	DesiredCheckSizeMin  *int64   `json:"desired_check_size_min" binding:"omitempty,min=0"`
	DesiredCheckSizeMax  *int64   `json:"desired_check_size_max" binding:"omitempty,min=0"`
	ValueAddPreferences  []string `json:"value_add_preferences"`
}

// InvestorOnboardingRequest completes an investor profile.
type InvestorOnboardingRequest struct {
	FullName      string   `json:"full_name" binding:"required,max=200" example:"Grace Hopper"`
	FirmName      string   `json:"firm_name" binding:"max=200" example:"Compiler Capital"`
	LinkedinURL   string   `json:"linkedin_url"`
	TwitterURL    string   `json:"twitter_url"`
	WebsiteURL    string   `json:"website_url"`
	TicketSizeMin *int64   `json:"ticket_size_min" binding:"omitempty,min=0"`
	TicketSizeMax *int64   `json:"ticket_size_max" binding:"omitempty,min=0"`
	Sectors       []string `json:"sectors" example:"fintech,ai"`
	Stages        []string `json:"stages" example:"seed"`
	Geographies   []string `json:"geographies"`
	InvestorType  string   `json:"investor_type" example:"angel"`
}

// TalentOnboardingRequest completes a talent profile and submits it for
// review.
type TalentOnboardingRequest struct {
	FullName         string   `json:"full_name"         binding:"required,max=200" example:"Linus Torvalds"`
	JobTitleSeeking  string   `json:"job_title_seeking" binding:"required,max=200" example:"Backend Engineer"`
	Skills           []string `json:"skills"            binding:"required,min=1" example:"go,postgres"`
	ExperienceLevel  string   `json:"experience_level"  binding:"required" example:"senior"`
	CompensationType string   `json:"compensation_type" binding:"required" example:"salary"`
	SalaryRangeMin   *int64   `json:"salary_range_min"  binding:"omitempty,min=0"`
	SalaryRangeMax   *int64   `json:"salary_range_max"  binding:"omitempty,min=0"`
	Availability     string   `json:"availability" example:"immediately"`
	PastProjects     string   `json:"past_projects"`
	PortfolioURL     string   `json:"portfolio_url"`
	Certifications   []string `json:"certifications"`
	LinkedinURL      string   `json:"linkedin_url"`
	Location         string   `json:"location" example:"Berlin"`
	RemotePreference string   `json:"remote_preference" example:"remote"`
	PreferredSectors []string `json:"preferred_sectors"`
}

//
// Handlers
//

// Signup godoc
// @ID          signup
// @Summary     Create an account
// @Description Verifies a Firebase ID token and creates the account with the chosen role. An identity that already has an account gets 409.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SignupRequest  true  "Identity token and role"
// @Success     201   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid identity token"
// @Failure     409   {object}  handlers.ErrorResponse  "Account exists"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.svc.Auth.Signup(c.Request.Context(), req.IDToken, req.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, sess)
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Description Verifies a Firebase ID token and issues a session token for the existing account.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Identity token"
// @Success     200   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid identity token"
// @Failure     404   {object}  handlers.ErrorResponse  "No account for this identity"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.svc.Auth.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, sess)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.Me
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	me, err := h.svc.Profiles.Me(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, me)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the current account
// @Description Partial update of avatar, push token, name and links. Fields the caller's role profile lacks are ignored.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdateProfileRequest  true  "Fields to change"
// @Success     200   {object}  services.Me
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     401   {object}  handlers.ErrorResponse
// @Router      /auth/profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	me, err := h.svc.Profiles.UpdateAccount(c.Request.Context(), p.UserID, services.AccountUpdate{
		AvatarURL:   req.AvatarURL,
		PushToken:   req.PushToken,
		FullName:    req.FullName,
		LinkedinURL: req.LinkedinURL,
		TwitterURL:  req.TwitterURL,
		WebsiteURL:  req.WebsiteURL,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, me)
}

// OnboardFounder godoc
// @ID          onboardFounder
// @Summary     Complete the founder profile
// @Tags        Onboarding
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.FounderOnboardingRequest  true  "Founder profile"
// @Success     200   {object}  domain.FounderProfile
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Not a founder"
// @Router      /auth/onboarding/founder [post]
func (h *Handlers) OnboardFounder(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req FounderOnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	prof, err := h.svc.Profiles.OnboardFounder(c.Request.Context(), p.UserID, services.FounderOnboarding{
		FullName:             req.FullName,
		CompanyName:          req.CompanyName,
		LinkedinURL:          req.LinkedinURL,
		TwitterURL:           req.TwitterURL,
		WebsiteURL:           req.WebsiteURL,
		SeekingInvestorTypes: req.SeekingInvestorTypes,
		DesiredCheckSizeMin:  req.DesiredCheckSizeMin,
		DesiredCheckSizeMax:  req.DesiredCheckSizeMax,
		ValueAddPreferences:  req.ValueAddPreferences,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, prof)
}

// OnboardInvestor godoc
// @ID          onboardInvestor
// @Summary     Complete the investor profile
// @Tags        Onboarding
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.InvestorOnboardingRequest  true  "Investor profile"
// @Success     200   {object}  domain.InvestorProfile
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Not an investor"
// @Router      /auth/onboarding/investor [post]
func (h *Handlers) OnboardInvestor(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req InvestorOnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	prof, err := h.svc.Profiles.OnboardInvestor(c.Request.Context(), p.UserID, services.InvestorOnboarding{
		FullName:      req.FullName,
		FirmName:      req.FirmName,
		LinkedinURL:   req.LinkedinURL,
		TwitterURL:    req.TwitterURL,
		WebsiteURL:    req.WebsiteURL,
		TicketSizeMin: req.TicketSizeMin,
		TicketSizeMax: req.TicketSizeMax,
		Sectors:       req.Sectors,
		Stages:        req.Stages,
		Geographies:   req.Geographies,
		InvestorType:  req.InvestorType,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, prof)
}

// OnboardTalent godoc
// @ID          onboardTalent
// @Summary     Complete the talent profile
// @Description Saves the profile and submits it for admin review. Uploading a talent pitch requires approval.
// @Tags        Onboarding
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.TalentOnboardingRequest  true  "Talent profile"
// @Success     200   {object}  domain.TalentProfile
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Not a talent account"
// @Router      /auth/onboarding/talent [post]
func (h *Handlers) OnboardTalent(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TalentOnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	prof, err := h.svc.Profiles.OnboardTalent(c.Request.Context(), p.UserID, services.TalentOnboarding{
		FullName:         req.FullName,
		JobTitleSeeking:  req.JobTitleSeeking,
		Skills:           req.Skills,
		ExperienceLevel:  req.ExperienceLevel,
		CompensationType: req.CompensationType,
		SalaryRangeMin:   req.SalaryRangeMin,
		SalaryRangeMax:   req.SalaryRangeMax,
		Availability:     req.Availability,
		PastProjects:     req.PastProjects,
		PortfolioURL:     req.PortfolioURL,
		Certifications:   req.Certifications,
		LinkedinURL:      req.LinkedinURL,
		Location:         req.Location,
		RemotePreference: req.RemotePreference,
		PreferredSectors: req.PreferredSectors,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, prof)
}

// FounderProfile godoc
// @ID          founderProfile
// @Summary     Public founder profile
// @Tags        Profiles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Founder user ID"  format(uuid)
// @Success     200  {object}  services.FounderPublic
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /profiles/founders/{id} [get]
func (h *Handlers) FounderProfile(c *gin.Context) {
	out, err := h.svc.Profiles.Founder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// InvestorProfile godoc
// @ID          investorProfile
// @Summary     Public investor profile
// @Tags        Profiles
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Investor user ID"  format(uuid)
// @Success     200  {object}  services.InvestorPublic
// @Failure     403  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /profiles/investors/{id} [get]
func (h *Handlers) InvestorProfile(c *gin.Context) {
	out, err := h.svc.Profiles.Investor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
