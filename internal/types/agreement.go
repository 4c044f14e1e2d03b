package types

// AgreementRunState tracks the progress of a single agreement creation
// workflow run. States up to and including StateCharging may end in
// StateRejected; once the ledger commit succeeds the run can only end
// in StateCompleted.
type AgreementRunState string

const (
	StateValidating         AgreementRunState = "VALIDATING"
	StateResolvingPlan      AgreementRunState = "RESOLVING_PLAN"
	StateResolvingPromotion AgreementRunState = "RESOLVING_PROMOTION"
	StateCharging           AgreementRunState = "CHARGING"
	StateCommittingLedger   AgreementRunState = "COMMITTING_LEDGER"
	StatePostCommitBranch   AgreementRunState = "POST_COMMIT_BRANCH"
	StateSyncingExternal    AgreementRunState = "SYNCING_EXTERNAL"
	StateNotifying          AgreementRunState = "NOTIFYING"
	StateCompleted          AgreementRunState = "COMPLETED"
	StateRejected           AgreementRunState = "REJECTED"
	StateFailed             AgreementRunState = "FAILED"
)

func (s AgreementRunState) String() string {
	return string(s)
}

// RejectionReason is the machine-readable cause of an aborted run
type RejectionReason string

const (
	RejectionInvalidSubscriber        RejectionReason = "invalid_subscriber"
	RejectionInvalidPaymentMethod     RejectionReason = "invalid_payment_method"
	RejectionCountryNotAllowed        RejectionReason = "country_not_allowed_for_transfer"
	RejectionSubscriberNotFree        RejectionReason = "subscriber_not_on_free_tier"
	RejectionInvalidPlan              RejectionReason = "invalid_plan"
	RejectionInvalidPlanType          RejectionReason = "invalid_plan_type"
	RejectionInvalidPromotion         RejectionReason = "invalid_promotion"
	RejectionMissingPaymentInstrument RejectionReason = "missing_payment_instrument"
)

func (r RejectionReason) String() string {
	return string(r)
}
