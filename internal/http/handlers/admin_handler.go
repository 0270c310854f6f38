package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/utils"
)

// RejectTalentRequest optionally explains a rejection to the talent.
type RejectTalentRequest struct {
	Reason string `json:"reason" binding:"max=1000" example:"Portfolio link is broken"`
}

// PendingTalent godoc
// @ID          pendingTalent
// @Summary     Talent awaiting review
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       limit   query     int  false  "Page size"  minimum(1) maximum(50) default(20)
// @Param       offset  query     int  false  "Offset"     minimum(0) default(0)
// @Success     200  {object}  services.PendingTalent
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /admin/talent/pending [get]
func (h *Handlers) PendingTalent(c *gin.Context) {
	page, err := h.svc.Admin.PendingTalent(c.Request.Context(),
		queryInt(c, "limit", utils.DefaultLimit), queryInt(c, "offset", 0))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// ApproveTalent godoc
// @ID          approveTalent
// @Summary     Approve a talent profile
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Talent profile ID"  format(uuid)
// @Success     200  {object}  domain.TalentProfile
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Not pending"
// @Router      /admin/talent/{id}/approve [post]
func (h *Handlers) ApproveTalent(c *gin.Context) {
	prof, err := h.svc.Admin.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, prof)
}

// RejectTalent godoc
// @ID          rejectTalent
// @Summary     Reject a talent profile
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                        true   "Talent profile ID"  format(uuid)
// @Param       body  body      handlers.RejectTalentRequest  false  "Reason"
// @Success     200   {object}  domain.TalentProfile
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Not pending"
// @Router      /admin/talent/{id}/reject [post]
func (h *Handlers) RejectTalent(c *gin.Context) {
	var req RejectTalentRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	prof, err := h.svc.Admin.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, prof)
}

// TalentReviewStats godoc
// @ID          talentReviewStats
// @Summary     Talent profiles by review status
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.ReviewStats
// @Router      /admin/talent/stats [get]
func (h *Handlers) TalentReviewStats(c *gin.Context) {
	st, err := h.svc.Admin.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}
