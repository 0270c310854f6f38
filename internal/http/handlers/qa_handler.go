// Q&A HTTP handlers.
//
// Investors open question threads on pitches and founders answer them.
// Message posts accept an Idempotency-Key header: a retried key returns the
// message created by the first request with 200 and Idempotency-Replayed.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/domain"
	"github.com/caerus-app/caerus-backend/internal/http/middleware"
	"github.com/caerus-app/caerus-backend/internal/services"
)

// CreateThreadRequest opens (or returns) the caller's thread on a pitch.
type CreateThreadRequest struct {
	PitchID string `json:"pitch_id" binding:"required,uuid" example:"0b6c1c2e-6a8e-4a55-9f7c-1ed3c8a4b7f1"`
}

// PostMessageRequest is a thread message. message_type defaults to text.
type PostMessageRequest struct {
	MessageType string `json:"message_type" binding:"omitempty,oneof=text video" example:"text"`
	Content     string `json:"content" example:"What is your current MRR?"`
	VideoURL    string `json:"video_url"`
}

func (r PostMessageRequest) input() services.MessageInput {
	return services.MessageInput{Type: r.MessageType, Content: r.Content, VideoURL: r.VideoURL}
}

// UpdateStatusRequest sets the investor's disposition on a thread.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"interested"`
}

// writePosted answers a message post: 201 for a new message, 200 with
// Idempotency-Replayed for a replayed key.
func writePosted(c *gin.Context, res *services.PostResult) {
	if res.Replayed || middleware.IsReplay(c) {
		c.Header("Idempotency-Replayed", "true")
		ok(c, http.StatusOK, res)
		return
	}
	ok(c, http.StatusCreated, res)
}

func idempotencyKey(c *gin.Context) string {
	k, _ := middleware.GetIdempotencyKey(c)
	return k
}

// CreateThread godoc
// @ID          createThread
// @Summary     Open a Q&A thread on a pitch
// @Description Returns the investor's existing thread on the pitch or creates one. Requires an active subscription.
// @Tags        Q&A
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.CreateThreadRequest  true  "Pitch"
// @Success     200   {object}  services.ThreadRef  "Existing thread"
// @Success     201   {object}  services.ThreadRef  "Created"
// @Failure     402   {object}  handlers.ErrorResponse  "Subscription required"
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /qa/threads [post]
func (h *Handlers) CreateThread(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req CreateThreadRequest
	if !bindJSON(c, &req) {
		return
	}
	ref, err := h.svc.QA.CreateThread(c.Request.Context(), p.UserID, req.PitchID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if ref.Created {
		status = http.StatusCreated
	}
	ok(c, status, ref)
}

// ListThreads godoc
// @ID          listThreads
// @Summary     List Q&A threads
// @Description Investors see the threads they opened; founders see threads on their pitches.
// @Tags        Q&A
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   services.QAThreadSummary
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /qa/threads [get]
func (h *Handlers) ListThreads(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.QA.ListThreads(c.Request.Context(), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// ThreadMessages godoc
// @ID          threadMessages
// @Summary     Read a Q&A thread
// @Description Returns messages oldest first and marks the counterparty's messages read.
// @Tags        Q&A
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Thread ID"  format(uuid)
// @Success     200  {array}   services.MessageView
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /qa/threads/{id}/messages [get]
func (h *Handlers) ThreadMessages(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	msgs, err := h.svc.QA.Messages(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, msgs)
}

// PostThreadMessage godoc
// @ID          postThreadMessage
// @Summary     Post to a Q&A thread
// @Tags        Q&A
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header    string                       false  "Retry key"  example(msg-7f3a)
// @Param       id               path      string                       true   "Thread ID"  format(uuid)
// @Param       body             body      handlers.PostMessageRequest  true   "Message"
// @Success     201  {object}  services.PostResult
// @Success     200  {object}  services.PostResult  "Replayed"
// @Header      200  {string}  Idempotency-Replayed  "true"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     429  {object}  handlers.ErrorResponse
// @Router      /qa/threads/{id}/messages [post]
func (h *Handlers) PostThreadMessage(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.QA.PostMessage(c.Request.Context(), p, c.Param("id"), idempotencyKey(c), req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writePosted(c, res)
}

// UpdateThreadStatus godoc
// @ID          updateThreadStatus
// @Summary     Set a thread's status
// @Description active, interested or declined. Moving to interested or declined notifies the founder.
// @Tags        Q&A
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                        true  "Thread ID"  format(uuid)
// @Param       body  body      handlers.UpdateStatusRequest  true  "New status"
// @Success     200   {object}  domain.QAThread
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Status locked"
// @Router      /qa/threads/{id}/status [put]
func (h *Handlers) UpdateThreadStatus(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.QA.UpdateStatus(c.Request.Context(), p.UserID, c.Param("id"), domain.ThreadStatus(req.Status))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

//
// Question templates
//

// TemplateRequest creates or updates a question template.
type TemplateRequest struct {
	Question *string `json:"question" example:"What is your go-to-market?"`
	Order    *int    `json:"order"    binding:"omitempty,min=0"`
}

// SendQuestionsRequest posts templates and an optional custom question to
// the investor's thread on a pitch.
type SendQuestionsRequest struct {
	PitchID        string   `json:"pitch_id"     binding:"required,uuid"`
	TemplateIDs    []string `json:"template_ids" binding:"omitempty,dive,uuid"`
	CustomQuestion string   `json:"custom_question" example:"Who is your first hire?"`
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List question templates
// @Description The default questions are added on first use.
// @Tags        Questions
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.QuestionTemplate
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /questions/templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.Templates.List(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// CreateTemplate godoc
// @ID          createTemplate
// @Summary     Add a question template
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.TemplateRequest  true  "Question"
// @Success     201   {object}  domain.QuestionTemplate
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /questions/templates [post]
func (h *Handlers) CreateTemplate(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	q := ""
	if req.Question != nil {
		q = *req.Question
	}
	t, err := h.svc.Templates.Create(c.Request.Context(), p.UserID, q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// UpdateTemplate godoc
// @ID          updateTemplate
// @Summary     Edit or reorder a question template
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                    true  "Template ID"  format(uuid)
// @Param       body  body      handlers.TemplateRequest  true  "Fields to change"
// @Success     200   {object}  domain.QuestionTemplate
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /questions/templates/{id} [put]
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Templates.Update(c.Request.Context(), p.UserID, c.Param("id"), req.Question, req.Order)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTemplate godoc
// @ID          deleteTemplate
// @Summary     Delete a question template
// @Tags        Questions
// @Security    BearerAuth
// @Param       id   path      string  true  "Template ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /questions/templates/{id} [delete]
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	if err := h.svc.Templates.Delete(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}

// SendQuestions godoc
// @ID          sendQuestions
// @Summary     Send questions to a founder
// @Description Posts the chosen templates and an optional custom question into the investor's thread on the pitch, creating it when needed. Requires an active subscription.
// @Tags        Questions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SendQuestionsRequest  true  "Questions"
// @Success     200   {object}  services.SendResult
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     402   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /questions/send [post]
func (h *Handlers) SendQuestions(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req SendQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Templates.Send(c.Request.Context(), p.UserID, req.PitchID, req.TemplateIDs, req.CustomQuestion)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
