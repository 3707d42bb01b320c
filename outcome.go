package guardrail

// Reason identifies why a check decided (or declined) to terminate.
type Reason string

const (
	// ReasonStepLimitExceeded means step_count crossed max_steps.
	ReasonStepLimitExceeded Reason = "STEP_LIMIT_EXCEEDED"

	// ReasonTimeLimitExceeded means elapsed runtime reached max_runtime.
	ReasonTimeLimitExceeded Reason = "TIME_LIMIT_EXCEEDED"

	// ReasonTokenLimitExceeded means token_count reached max_tokens.
	ReasonTokenLimitExceeded Reason = "TOKEN_LIMIT_EXCEEDED"

	// ReasonCostLimitExceeded means cost_accrued reached max_cost.
	ReasonCostLimitExceeded Reason = "COST_LIMIT_EXCEEDED"

	// ReasonWithinLimits means no configured ceiling has tripped.
	ReasonWithinLimits Reason = "WITHIN_LIMITS"
)

// CheckOutcome is the result of evaluating one or all limits. It is a value
// snapshot, never stored by the guard.
//
// Details carries diagnostic fields keyed by snake_case names: the current
// value and configured ceiling for the tripped limit, or for
// [ReasonWithinLimits] a snapshot of all four counters plus elapsed runtime.
type CheckOutcome struct {
	ShouldTerminate bool
	Reason          Reason
	Details         map[string]any
}
