package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PlanType represents the commercial shape of a plan
type PlanType string

const (
	PlanTypeFree        PlanType = "FREE"
	PlanTypeIndividual  PlanType = "INDIVIDUAL"
	PlanTypeMonthly     PlanType = "MONTHLY"
	PlanTypeSubscribers PlanType = "SUBSCRIBERS"
)

func (t PlanType) String() string {
	return string(t)
}

func (t PlanType) Validate() error {
	allowed := []PlanType{
		PlanTypeFree,
		PlanTypeIndividual,
		PlanTypeMonthly,
		PlanTypeSubscribers,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid plan type: %s", t)
	}
	return nil
}

// AllowedBillingPlanTypes are the target plan types a subscriber may
// upgrade to through self-service agreement creation.
var AllowedBillingPlanTypes = []PlanType{
	PlanTypeIndividual,
	PlanTypeMonthly,
	PlanTypeSubscribers,
}
