package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SupportChatRequest is a one-off question to the support assistant.
type SupportChatRequest struct {
	Message string `json:"message" binding:"required" example:"How do I cancel my subscription?"`
}

// CreateTicketRequest opens a support ticket.
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required" example:"Billing"`
	Message string `json:"message" binding:"required" example:"I was charged twice."`
}

// TicketMessageRequest adds a message to a ticket.
type TicketMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SupportChat godoc
// @ID          supportChat
// @Summary     Ask the support assistant
// @Tags        Support
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.SupportChatRequest  true  "Question"
// @Success     200   {object}  support.Reply
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /support/chat [post]
func (h *Handlers) SupportChat(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req SupportChatRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Support.Chat(c.Request.Context(), p, req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// CreateTicket godoc
// @ID          createTicket
// @Summary     Open a support ticket
// @Description Stores the ticket with the first message and the assistant's reply.
// @Tags        Support
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.CreateTicketRequest  true  "Ticket"
// @Success     201   {object}  services.TicketCreated
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /support/tickets [post]
func (h *Handlers) CreateTicket(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req CreateTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Support.CreateTicket(c.Request.Context(), p, req.Subject, req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTickets godoc
// @ID          listTickets
// @Summary     List the caller's support tickets
// @Tags        Support
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  services.TicketListItem
// @Router      /support/tickets [get]
func (h *Handlers) ListTickets(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.Support.ListTickets(c.Request.Context(), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// GetTicket godoc
// @ID          getTicket
// @Summary     Read a support ticket
// @Tags        Support
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Ticket ID"  format(uuid)
// @Success     200  {object}  services.TicketDetail
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /support/tickets/{id} [get]
func (h *Handlers) GetTicket(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	t, err := h.svc.Support.GetTicket(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// PostTicketMessage godoc
// @ID          postTicketMessage
// @Summary     Reply on a support ticket
// @Tags        Support
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                         true  "Ticket ID"  format(uuid)
// @Param       body  body      handlers.TicketMessageRequest  true  "Message"
// @Success     201   {object}  services.TicketReply
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /support/tickets/{id}/messages [post]
func (h *Handlers) PostTicketMessage(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req TicketMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Support.PostMessage(c.Request.Context(), p, c.Param("id"), req.Content)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}
