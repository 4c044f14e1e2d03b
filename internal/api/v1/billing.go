package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailbeam/billing/internal/api/dto"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/service"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{service: service, log: log}
}

// GetBillingProfile returns the billing state of an account.
func (h *BillingHandler) GetBillingProfile(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetBillingProfile(c.Request.Context(), account)
	if err != nil {
		h.log.Errorw("failed to get billing profile", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCurrentPlan returns the account's active plan, 404 when on the
// free tier.
func (h *BillingHandler) GetCurrentPlan(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetCurrentPlan(c.Request.Context(), account)
	if err != nil {
		h.log.Errorw("failed to get current plan", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateBillingInformation updates the account's billing address.
func (h *BillingHandler) UpdateBillingInformation(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateBillingInformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind billing information request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateBillingInformation(c.Request.Context(), account, &req)
	if err != nil {
		h.log.Errorw("failed to update billing information", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentMethod returns the account's registered payment method.
func (h *BillingHandler) GetPaymentMethod(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPaymentMethod(c.Request.Context(), account)
	if err != nil {
		h.log.Errorw("failed to get payment method", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePaymentMethod replaces the account's registered payment method,
// storing a new encrypted instrument when a card is submitted.
func (h *BillingHandler) UpdatePaymentMethod(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind payment method request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePaymentMethod(c.Request.Context(), account, &req)
	if err != nil {
		h.log.Errorw("failed to update payment method", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
