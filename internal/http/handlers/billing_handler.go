package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VerifySubscriptionRequest carries a base64 App Store receipt.
type VerifySubscriptionRequest struct {
	ReceiptData string `json:"receipt_data" binding:"required"`
}

// VerifyUnlockRequest carries the receipt of a 5 minute pitch purchase.
type VerifyUnlockRequest struct {
	StartupID   string `json:"startup_id"   binding:"required,uuid"`
	ReceiptData string `json:"receipt_data" binding:"required"`
}

// VerifySubscription godoc
// @ID          verifySubscription
// @Summary     Verify an investor subscription receipt
// @Description Verifies the receipt with Apple and stores the transaction with the latest expiry.
// @Tags        Billing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.VerifySubscriptionRequest  true  "Receipt"
// @Success     200   {object}  services.SubscriptionState
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid receipt"
// @Failure     502   {object}  handlers.ErrorResponse  "App Store unavailable"
// @Router      /iap/verify-subscription [post]
func (h *Handlers) VerifySubscription(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req VerifySubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.svc.Billing.VerifySubscription(c.Request.Context(), p.UserID, req.ReceiptData)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// VerifyUnlock godoc
// @ID          verifyUnlock
// @Summary     Verify a pitch unlock purchase
// @Tags        Billing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.VerifyUnlockRequest  true  "Receipt"
// @Success     200   {object}  services.UnlockResult
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     404   {object}  handlers.ErrorResponse  "Startup not found"
// @Failure     502   {object}  handlers.ErrorResponse
// @Router      /iap/verify-unlock [post]
func (h *Handlers) VerifyUnlock(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	var req VerifyUnlockRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Billing.VerifyUnlock(c.Request.Context(), p.UserID, req.StartupID, req.ReceiptData)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// CurrentSubscription godoc
// @ID          currentSubscription
// @Summary     The investor's subscription
// @Tags        Billing
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.SubscriptionState
// @Router      /iap/subscription [get]
func (h *Handlers) CurrentSubscription(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	st, err := h.svc.Billing.Current(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// ListUnlocks godoc
// @ID          listUnlocks
// @Summary     The founder's pitch unlocks
// @Tags        Billing
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}  domain.PitchUnlock
// @Router      /iap/unlocks [get]
func (h *Handlers) ListUnlocks(c *gin.Context) {
	p, found := principal(c)
	if !found {
		return
	}
	list, err := h.svc.Billing.Unlocks(c.Request.Context(), p.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}
