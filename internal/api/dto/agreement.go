package dto

import (
	"github.com/shopspring/decimal"

	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/types"
	"github.com/mailbeam/billing/internal/validator"
)

// CreateAgreementRequest is the body of POST /v1/accounts/:account/agreements
type CreateAgreementRequest struct {
	PlanID        string          `json:"plan_id" validate:"required"`
	Total         decimal.Decimal `json:"total"`
	PromoCode     string          `json:"promocode,omitempty"`
	DiscountID    string          `json:"discount_id,omitempty"`
	OriginInbound string          `json:"origin_inbound,omitempty"`
}

func (r *CreateAgreementRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Total.IsNegative() {
		return ierr.NewError("total must not be negative").
			WithHint("Total must be zero or positive").
			WithReportableDetails(map[string]any{
				"total": r.Total.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CreateAgreementResponse reports the outcome of a completed run
type CreateAgreementResponse struct {
	AgreementID     string                  `json:"agreement_id"`
	BillingCreditID string                  `json:"billing_credit_id"`
	InvoiceID       *string                 `json:"invoice_id,omitempty"`
	PlanID          string                  `json:"plan_id"`
	PlanType        types.PlanType          `json:"plan_type"`
	Total           decimal.Decimal         `json:"total"`
	UpgradePending  bool                    `json:"upgrade_pending"`
	State           types.AgreementRunState `json:"state"`
}
