package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContactTalentRequest sends a message to a talent about their pitch.
type ContactTalentRequest struct {
	PitchID        string `json:"pitch_id"        binding:"required,uuid"`
	InitialMessage string `json:"initial_message" binding:"required" example:"We are hiring a founding engineer."`
}

// ContactTalent godoc
// @ID          contactTalent
// @Summary     Message a talent
// @Description Appends to the caller's thread with the talent or opens a new one. Opening a thread spends one monthly DM for founders and unsubscribed investors.
// @Tags        Talent DMs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ContactTalentRequest  true  "Message"
// @Success     200   {object}  services.OpenResult  "Existing thread"
// @Success     201   {object}  services.OpenResult  "Thread opened"
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     402   {object}  handlers.ErrorResponse  "Monthly DM limit reached"
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /talent-qa/threads [post]
func (h *Handlers) ContactTalent(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req ContactTalentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.TalentQA.Open(c.Request.Context(), p, req.PitchID, req.InitialMessage)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	ok(c, status, res)
}

// ListTalentThreads godoc
// @ID          listTalentThreads
// @Summary     List talent DM threads
// @Tags        Talent DMs
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   services.TalentThreadSummary
// @Router      /talent-qa/threads [get]
func (h *Handlers) ListTalentThreads(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.TalentQA.List(c.Request.Context(), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// TalentThreadMessages godoc
// @ID          talentThreadMessages
// @Summary     Read a talent DM thread
// @Tags        Talent DMs
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Thread ID"  format(uuid)
// @Success     200  {array}   services.MessageView
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /talent-qa/threads/{id}/messages [get]
func (h *Handlers) TalentThreadMessages(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	msgs, err := h.svc.TalentQA.Messages(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, msgs)
}

// PostTalentMessage godoc
// @ID          postTalentMessage
// @Summary     Post to a talent DM thread
// @Tags        Talent DMs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                       false  "Retry key"
// @Param       id               path      string                       true   "Thread ID"  format(uuid)
// @Param       body             body      handlers.PostMessageRequest  true   "Message"
// @Success     201  {object}  services.PostResult
// @Success     200  {object}  services.PostResult  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /talent-qa/threads/{id}/messages [post]
func (h *Handlers) PostTalentMessage(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.TalentQA.PostMessage(c.Request.Context(), p, c.Param("id"), idempotencyKey(c), req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writePosted(c, res)
}
