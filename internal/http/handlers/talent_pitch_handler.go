package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/services"
	"github.com/caerus-app/caerus-backend/internal/utils"
)

// TalentUploadRequest asks for a signed upload URL for the talent's pitch.
type TalentUploadRequest struct {
	Filename    string `json:"filename"     binding:"required,max=255" example:"me.mp4"`
	ContentType string `json:"content_type" example:"video/mp4"`
	Headline    string `json:"headline"     binding:"max=200" example:"Backend engineer, 8 years of Go"`
}

// TalentPublishRequest publishes a talent pitch draft.
type TalentPublishRequest struct {
	DurationSeconds int    `json:"duration_seconds" binding:"required,gt=0" example:"45"`
	Headline        string `json:"headline"         binding:"required,max=200" example:"Backend engineer, 8 years of Go"`
}

// UploadTalentPitch godoc
// @ID          uploadTalentPitch
// @Summary     Request a talent pitch upload URL
// @Description Only approved talent may upload. A talent with a published pitch gets 409; an existing draft is reused.
// @Tags        Talent
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.TalentUploadRequest  true  "Upload request"
// @Success     200   {object}  services.TalentUploadTicket
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Profile not approved"
// @Failure     409   {object}  handlers.ErrorResponse  "Already published"
// @Router      /talent-pitches/upload-url [post]
func (h *Handlers) UploadTalentPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TalentUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.TalentPitch.UploadURL(c.Request.Context(), p.UserID, services.TalentUploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Headline:    req.Headline,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// PublishTalentPitch godoc
// @ID          publishTalentPitch
// @Summary     Publish the talent pitch
// @Tags        Talent
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                         true  "Talent pitch ID"  format(uuid)
// @Param       body  body      handlers.TalentPublishRequest  true  "Video length and headline"
// @Success     200   {object}  domain.TalentPitch
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse
// @Router      /talent-pitches/{id}/publish [post]
func (h *Handlers) PublishTalentPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TalentPublishRequest
	if !bindJSON(c, &req) {
		return
	}
	tp, err := h.svc.TalentPitch.Publish(c.Request.Context(), p.UserID, c.Param("id"), req.DurationSeconds, req.Headline)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, tp)
}

// TalentFeed godoc
// @ID          talentFeed
// @Summary     Talent feed for founders and investors
// @Description Approved talent with a published pitch. skills matches any overlap, case-folded.
// @Tags        Talent
// @Produce     json
// @Security    BearerAuth
// @Param       skills             query     string  false  "Comma-separated skills"  example(go,react)
// @Param       experience_level   query     string  false  "Experience level"
// @Param       compensation_type  query     string  false  "Compensation type"
// @Param       location           query     string  false  "Location substring"
// @Param       remote_preference  query     string  false  "Remote preference"
// @Param       limit              query     int     false  "Page size"  minimum(1) maximum(50) default(20)
// @Param       offset             query     int     false  "Offset"     minimum(0) default(0)
// @Success     200  {object}  services.TalentFeed
// @Failure     402  {object}  handlers.ErrorResponse  "Daily view limit reached"
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /talent-pitches/feed [get]
func (h *Handlers) TalentFeed(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	feed, err := h.svc.TalentPitch.Feed(c.Request.Context(), p, services.TalentFeedQuery{
		Skills:           c.Query("skills"),
		ExperienceLevel:  c.Query("experience_level"),
		CompensationType: c.Query("compensation_type"),
		Location:         c.Query("location"),
		RemotePreference: c.Query("remote_preference"),
		Limit:            queryInt(c, "limit", utils.DefaultLimit),
		Offset:           queryInt(c, "offset", 0),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, feed)
}

// GetTalentPitch godoc
// @ID          getTalentPitch
// @Summary     Open a talent pitch
// @Tags        Talent
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Talent pitch ID"  format(uuid)
// @Success     200  {object}  services.TalentPitchDetail
// @Failure     402  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /talent-pitches/{id} [get]
func (h *Handlers) GetTalentPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	d, err := h.svc.TalentPitch.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// ViewTalentPitch godoc
// @ID          viewTalentPitch
// @Summary     Record a talent pitch view
// @Tags        Talent
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Talent pitch ID"  format(uuid)
// @Success     200  {object}  services.TalentViewReceipt
// @Failure     402  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /talent-pitches/{id}/view [post]
func (h *Handlers) ViewTalentPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	r, err := h.svc.TalentPitch.View(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// MyTalentPitch godoc
// @ID          myTalentPitch
// @Summary     The caller's talent pitch and review status
// @Tags        Talent
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.MyTalentPitch
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /talent-pitches/mine [get]
func (h *Handlers) MyTalentPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	m, err := h.svc.TalentPitch.Mine(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// TalentDashboard godoc
// @ID          talentDashboard
// @Summary     Talent pitch analytics
// @Tags        Talent
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.TalentDashboard
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /talent-pitches/dashboard [get]
func (h *Handlers) TalentDashboard(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	d, err := h.svc.TalentPitch.Dashboard(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}
