package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ierr "github.com/mailbeam/billing/internal/errors"
	"github.com/mailbeam/billing/internal/validator"
)

func TestMain(m *testing.M) {
	validator.NewValidator()
	m.Run()
}

func TestCreateAgreementRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateAgreementRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: &CreateAgreementRequest{
				PlanID: "plan_monthly",
				Total:  decimal.NewFromInt(50),
			},
		},
		{
			name: "zero total is allowed",
			req: &CreateAgreementRequest{
				PlanID: "plan_monthly",
				Total:  decimal.Zero,
			},
		},
		{
			name: "promo and discount are optional",
			req: &CreateAgreementRequest{
				PlanID:     "plan_monthly",
				Total:      decimal.NewFromInt(50),
				PromoCode:  "SAVE10",
				DiscountID: "disc_1",
			},
		},
		{
			name:    "missing plan id",
			req:     &CreateAgreementRequest{Total: decimal.NewFromInt(50)},
			wantErr: true,
		},
		{
			name: "negative total",
			req: &CreateAgreementRequest{
				PlanID: "plan_monthly",
				Total:  decimal.NewFromInt(-1),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
