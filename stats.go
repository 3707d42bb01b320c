package guardrail

import "time"

// GuardStats is a point-in-time snapshot of a guard's usage and ceilings,
// for diagnostics and lifecycle events. Unset ceilings stay nil, meaning
// "no limit".
type GuardStats struct {
	ExecutionID string
	StepCount   int64
	TokenCount  int64
	CostAccrued float64
	Runtime     time.Duration
	Limits      LimitConfig
}
