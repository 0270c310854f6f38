// Pitch HTTP handlers.
//
// Founders upload and publish pitches; investors browse the feed and open
// pitches. Opening or viewing a pitch may spend one of the investor's free
// views, so both answer 402 once no access remains.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/repo"
	"github.com/caerus-app/caerus-backend/internal/services"
	"github.com/caerus-app/caerus-backend/internal/utils"
)

// PitchUploadRequest asks for a signed upload URL for a new draft pitch.
type PitchUploadRequest struct {
	StartupID   string `json:"startup_id"   binding:"required,uuid" example:"6a1f4e5e-8a51-4a4e-8d2f-3e1b9a7c2d10"`
	Type        string `json:"type"         binding:"required,oneof=30s_free 5min_paid" example:"30s_free"`
	Filename    string `json:"filename"     binding:"required,max=255" example:"pitch.mp4"`
	ContentType string `json:"content_type" example:"video/mp4"`
}

// PublishRequest reports the uploaded video's length.
type PublishRequest struct {
	DurationSeconds int `json:"duration_seconds" binding:"required,gt=0" example:"28"`
}

// UploadPitch godoc
// @ID          uploadPitch
// @Summary     Request a pitch upload URL
// @Description Creates a draft pitch for an owned startup and returns a signed PUT URL (15 minutes). A 5min_paid pitch requires an unlock purchase for the startup.
// @Tags        Pitches
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.PitchUploadRequest  true  "Upload request"
// @Success     200   {object}  services.UploadTicket
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     402   {object}  handlers.ErrorResponse  "Unlock required"
// @Failure     404   {object}  handlers.ErrorResponse  "Startup not found"
// @Failure     502   {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /pitches/upload-url [post]
func (h *Handlers) UploadPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req PitchUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Pitches.UploadURL(c.Request.Context(), p.UserID, services.UploadRequest{
		StartupID:   req.StartupID,
		Type:        req.Type,
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// PublishPitch godoc
// @ID          publishPitch
// @Summary     Publish a pitch
// @Description Publishes an owned draft and archives the startup's previous published pitch of the same type.
// @Tags        Pitches
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                   true  "Pitch ID"  format(uuid)
// @Param       body  body      handlers.PublishRequest  true  "Video length"
// @Success     200   {object}  domain.Pitch
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /pitches/{id}/publish [post]
func (h *Handlers) PublishPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req PublishRequest
	if !bindJSON(c, &req) {
		return
	}
	pitch, err := h.svc.Pitches.Publish(c.Request.Context(), p.UserID, c.Param("id"), req.DurationSeconds)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, pitch)
}

// PitchFeed godoc
// @ID          pitchFeed
// @Summary     Investor pitch feed
// @Description Published pitches, newest first. Filters are case-insensitive substrings.
// @Tags        Pitches
// @Produce     json
// @Security    BearerAuth
// @Param       sector    query     string  false  "Sector"    example(fintech)
// @Param       stage     query     string  false  "Stage"     example(seed)
// @Param       location  query     string  false  "Location"  example(London)
// @Param       limit     query     int     false  "Page size"  minimum(1) maximum(50) default(20)
// @Param       offset    query     int     false  "Offset"     minimum(0) default(0)
// @Success     200  {object}  services.PitchFeed
// @Failure     402  {object}  handlers.ErrorResponse  "No free views and no subscription"
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /pitches/feed [get]
func (h *Handlers) PitchFeed(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	feed, err := h.svc.Pitches.Feed(c.Request.Context(), p.UserID, repo.PitchFilter{
		Sector:   c.Query("sector"),
		Stage:    c.Query("stage"),
		Location: c.Query("location"),
		Limit:    queryInt(c, "limit", utils.DefaultLimit),
		Offset:   queryInt(c, "offset", 0),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, feed)
}

// GetPitch godoc
// @ID          getPitch
// @Summary     Open a pitch
// @Description Returns the pitch with a signed download URL (60 minutes). The first open by an unsubscribed investor spends a free view.
// @Tags        Pitches
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pitch ID"  format(uuid)
// @Success     200  {object}  services.PitchDetail
// @Failure     402  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pitches/{id} [get]
func (h *Handlers) GetPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	d, err := h.svc.Pitches.Get(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// ViewPitch godoc
// @ID          viewPitch
// @Summary     Record a pitch view
// @Tags        Pitches
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pitch ID"  format(uuid)
// @Success     200  {object}  services.ViewReceipt
// @Failure     402  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pitches/{id}/view [post]
func (h *Handlers) ViewPitch(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	r, err := h.svc.Pitches.View(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// FounderDashboard godoc
// @ID          founderDashboard
// @Summary     Founder pitch analytics
// @Tags        Pitches
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.FounderDashboard
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /pitches/dashboard [get]
func (h *Handlers) FounderDashboard(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	d, err := h.svc.Pitches.Dashboard(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}
