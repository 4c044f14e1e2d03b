package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mailbeam/billing/internal/api/dto"
	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/logger"
	"github.com/mailbeam/billing/internal/service"
)

type AgreementHandler struct {
	service service.AgreementService
	log     *logger.Logger
}

func NewAgreementHandler(service service.AgreementService, log *logger.Logger) *AgreementHandler {
	return &AgreementHandler{service: service, log: log}
}

// CreateAgreement runs the agreement creation workflow for an account.
func (h *AgreementHandler) CreateAgreement(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.Error(ierr.NewError("account is required").
			WithHint("Account name is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind agreement request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateAgreement(c.Request.Context(), account, &req)
	if err != nil {
		h.log.Errorw("failed to create agreement", "error", err, "account_name", account)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
