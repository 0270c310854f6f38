package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caerus-app/caerus-backend/internal/services"
)

// StartupRequest is the body of create and update. On update, omitted fields
// are left unchanged.
type StartupRequest struct {
	Name            *string  `json:"name"    example:"Analytical Engines"`
	Tagline         *string  `json:"tagline" example:"Programmable computation"`
	Website         *string  `json:"website" example:"https://example.com"`
	Sectors         []string `json:"sectors" example:"deeptech"`
	Stage           *string  `json:"stage"   example:"seed"`
	Location        *string  `json:"location" example:"London"`
	RoundSizeMin    *int64   `json:"round_size_min" binding:"omitempty,min=0"`
	RoundSizeMax    *int64   `json:"round_size_max" binding:"omitempty,min=0"`
	TractionBullets []string `json:"traction_bullets"`
	LogoURL         *string  `json:"logo_url"`
}

func (r StartupRequest) input() services.StartupInput {
	return services.StartupInput{
		Name:            r.Name,
		Tagline:         r.Tagline,
		Website:         r.Website,
		Sectors:         r.Sectors,
		Stage:           r.Stage,
		Location:        r.Location,
		RoundSizeMin:    r.RoundSizeMin,
		RoundSizeMax:    r.RoundSizeMax,
		TractionBullets: r.TractionBullets,
		LogoURL:         r.LogoURL,
	}
}

// CreateStartup godoc
// @ID          createStartup
// @Summary     Create a startup
// @Tags        Startups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.StartupRequest  true  "Startup"
// @Success     201   {object}  domain.Startup
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "Not a founder"
// @Router      /startups [post]
func (h *Handlers) CreateStartup(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req StartupRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.svc.Startups.Create(c.Request.Context(), p.UserID, req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, st)
}

// ListMyStartups godoc
// @ID          listMyStartups
// @Summary     List the founder's startups
// @Tags        Startups
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   domain.Startup
// @Failure     403  {object}  handlers.ErrorResponse
// @Router      /startups/mine [get]
func (h *Handlers) ListMyStartups(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.Startups.ListMine(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// GetStartup godoc
// @ID          getStartup
// @Summary     Get a startup
// @Tags        Startups
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Startup ID"  format(uuid)
// @Success     200  {object}  domain.Startup
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /startups/{id} [get]
func (h *Handlers) GetStartup(c *gin.Context) {
	st, err := h.svc.Startups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// UpdateStartup godoc
// @ID          updateStartup
// @Summary     Update a startup
// @Description Partial update of a startup owned by the caller. Startups of other founders answer 404.
// @Tags        Startups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                   true  "Startup ID"  format(uuid)
// @Param       body  body      handlers.StartupRequest  true  "Fields to change"
// @Success     200   {object}  domain.Startup
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse
// @Router      /startups/{id} [put]
func (h *Handlers) UpdateStartup(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req StartupRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.svc.Startups.Update(c.Request.Context(), p.UserID, c.Param("id"), req.input())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// DeleteStartup godoc
// @ID          deleteStartup
// @Summary     Delete a startup
// @Tags        Startups
// @Security    BearerAuth
// @Param       id   path      string  true  "Startup ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /startups/{id} [delete]
func (h *Handlers) DeleteStartup(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	if err := h.svc.Startups.Delete(c.Request.Context(), p.UserID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
