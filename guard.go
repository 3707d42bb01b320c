package guardrail

import (
	"sync"
	"time"
)

// costEpsilon absorbs float64 rounding drift when repeated small cost
// additions approach the ceiling. A sum that lands within this margin of
// max_cost is treated as having reached it.
const costEpsilon = 1e-9

// Guard holds one execution's safety ceilings and live usage counters, and
// answers "should this execution stop, and why?".
//
// # Lifecycle
//
// Create one Guard per execution when the execution begins and discard it
// when the execution ends. Guards are never shared across executions; that
// is what keeps concurrent executions mutually non-interfering.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Record* calls from different
// goroutines (step driver, usage reporter) never lose updates, and Check*
// calls always read a consistent snapshot. A check racing a concurrent
// Record* may observe the pre-update value; it never observes a torn one.
//
// # Check Semantics
//
// The comparison operator differs per limit and is load-bearing:
//
//   - Steps trip on strictly-greater-than: exactly MaxSteps steps may
//     complete, the step after that trips.
//   - Runtime, tokens, and cost trip on reaching the ceiling (>=).
type Guard struct {
	mu sync.RWMutex

	executionID string
	config      LimitConfig
	timeProv    TimeProvider
	start       time.Time

	stepCount   int64
	tokenCount  int64
	costAccrued float64
}

// New creates a Guard for the given execution. The config is validated
// eagerly and copied, so later mutation of the caller's config does not
// affect the guard. A nil config means no limits.
func New(executionID string, config *LimitConfig) (*Guard, error) {
	if config == nil {
		config = NewLimitConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	tp := NewDefaultTimeProvider()
	return &Guard{
		executionID: executionID,
		config:      config.clone(),
		timeProv:    tp,
		start:       tp.Now(),
	}, nil
}

// WithTimeProvider replaces the guard's clock and resets the start instant
// to the provider's current time. Call before handing the guard to any
// concurrent caller. Returns the guard for chaining.
func (g *Guard) WithTimeProvider(tp TimeProvider) *Guard {
	g.timeProv = tp
	g.start = tp.Now()
	return g
}

// ExecutionID returns the identifier of the execution this guard watches.
func (g *Guard) ExecutionID() string {
	return g.executionID
}

// Config returns a copy of the guard's limit configuration.
func (g *Guard) Config() LimitConfig {
	return g.config.clone()
}

// RecordStep increments the step counter by one. Call once per completed
// step, before deciding whether to proceed to the next.
func (g *Guard) RecordStep() {
	g.mu.Lock()
	g.stepCount++
	g.mu.Unlock()
}

// RecordTokens adds n to the token counter. Non-positive n is a no-op:
// usage reports may legitimately be zero or corrected negative upstream,
// but the counter never decreases.
func (g *Guard) RecordTokens(n int64) {
	if n <= 0 {
		return
	}
	g.mu.Lock()
	g.tokenCount += n
	g.mu.Unlock()
}

// RecordCost adds amount to the accrued cost. Non-positive amounts are a
// no-op under the same rule as RecordTokens.
func (g *Guard) RecordCost(amount float64) {
	if amount <= 0 {
		return
	}
	g.mu.Lock()
	g.costAccrued += amount
	g.mu.Unlock()
}

// CheckStepLimit reports whether the step ceiling has been crossed.
// Returns nil when the limit is not configured or not yet crossed.
func (g *Guard) CheckStepLimit() *CheckOutcome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkStepLimitLocked()
}

func (g *Guard) checkStepLimitLocked() *CheckOutcome {
	if g.config.MaxSteps == nil || g.stepCount <= *g.config.MaxSteps {
		return nil
	}
	return &CheckOutcome{
		ShouldTerminate: true,
		Reason:          ReasonStepLimitExceeded,
		Details: map[string]any{
			"step_count": g.stepCount,
			"max_steps":  *g.config.MaxSteps,
		},
	}
}

// CheckRuntimeLimit reports whether elapsed runtime has reached the runtime
// ceiling. Returns nil when the limit is not configured or not yet reached.
func (g *Guard) CheckRuntimeLimit() *CheckOutcome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkRuntimeLimitLocked()
}

func (g *Guard) checkRuntimeLimitLocked() *CheckOutcome {
	if g.config.MaxRuntime == nil {
		return nil
	}
	elapsed := g.timeProv.Now().Sub(g.start)
	if elapsed < *g.config.MaxRuntime {
		return nil
	}
	return &CheckOutcome{
		ShouldTerminate: true,
		Reason:          ReasonTimeLimitExceeded,
		Details: map[string]any{
			"runtime":     elapsed,
			"max_runtime": *g.config.MaxRuntime,
		},
	}
}

// CheckTokenLimit reports whether accumulated tokens have reached the token
// ceiling. Returns nil when the limit is not configured or not yet reached.
func (g *Guard) CheckTokenLimit() *CheckOutcome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkTokenLimitLocked()
}

func (g *Guard) checkTokenLimitLocked() *CheckOutcome {
	if g.config.MaxTokens == nil || g.tokenCount < *g.config.MaxTokens {
		return nil
	}
	return &CheckOutcome{
		ShouldTerminate: true,
		Reason:          ReasonTokenLimitExceeded,
		Details: map[string]any{
			"token_count": g.tokenCount,
			"max_tokens":  *g.config.MaxTokens,
		},
	}
}

// CheckCostLimit reports whether accrued cost has reached the cost ceiling.
// Returns nil when the limit is not configured or not yet reached.
func (g *Guard) CheckCostLimit() *CheckOutcome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.checkCostLimitLocked()
}

func (g *Guard) checkCostLimitLocked() *CheckOutcome {
	if g.config.MaxCost == nil {
		return nil
	}
	// Tolerance-aware: 10 additions of 0.1 must reach a 1.0 ceiling even
	// when the float sum lands at 0.9999999999999999.
	if g.costAccrued < *g.config.MaxCost-costEpsilon {
		return nil
	}
	return &CheckOutcome{
		ShouldTerminate: true,
		Reason:          ReasonCostLimitExceeded,
		Details: map[string]any{
			"cost_accrued": g.costAccrued,
			"max_cost":     *g.config.MaxCost,
		},
	}
}

// CheckAllLimits evaluates every configured limit in fixed priority order:
// step, then runtime, then token, then cost. The first tripped limit wins,
// so the reported reason is deterministic even when several ceilings cross
// in the same evaluation.
//
// When nothing trips, the outcome carries [ReasonWithinLimits] and a
// snapshot of all four counters plus elapsed runtime.
func (g *Guard) CheckAllLimits() CheckOutcome {
	g.mu.RLock()
	defer g.mu.RUnlock()

	checks := []func() *CheckOutcome{
		g.checkStepLimitLocked,
		g.checkRuntimeLimitLocked,
		g.checkTokenLimitLocked,
		g.checkCostLimitLocked,
	}
	for _, check := range checks {
		if outcome := check(); outcome != nil {
			return *outcome
		}
	}

	return CheckOutcome{
		ShouldTerminate: false,
		Reason:          ReasonWithinLimits,
		Details: map[string]any{
			"step_count":   g.stepCount,
			"runtime":      g.timeProv.Now().Sub(g.start),
			"token_count":  g.tokenCount,
			"cost_accrued": g.costAccrued,
		},
	}
}

// Stats returns a read-only snapshot of the guard's counters, elapsed
// runtime, and configured ceilings. Never mutates and never fails.
func (g *Guard) Stats() GuardStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GuardStats{
		ExecutionID: g.executionID,
		StepCount:   g.stepCount,
		TokenCount:  g.tokenCount,
		CostAccrued: g.costAccrued,
		Runtime:     g.timeProv.Now().Sub(g.start),
		Limits:      g.config.clone(),
	}
}
