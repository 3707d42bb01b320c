package guardrail

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a LimitConfig fails validation.
// Use errors.Is to detect it regardless of the wrapped field detail.
var ErrInvalidConfig = errors.New("guardrail: invalid limit config")

// LimitConfig holds the safety ceilings for one execution.
//
// All four limits are independent and independently optional. A nil field
// means that dimension is unbounded. A config with no limits set is valid:
// the guard then never terminates the execution and acts as a pure usage
// tracker.
//
// Note that nil and zero are different for MaxTokens and MaxCost: a zero
// ceiling is a legal configuration that trips on the first check, while nil
// means "no ceiling at all".
//
// Build configs with the fluent helpers:
//
//	cfg := guardrail.NewLimitConfig().
//	    WithMaxSteps(50).
//	    WithMaxRuntime(2 * time.Minute).
//	    WithMaxTokens(100_000).
//	    WithMaxCost(5.00)
type LimitConfig struct {
	// MaxSteps caps the number of completed steps. The guard allows exactly
	// MaxSteps steps to complete; the step after that trips the limit.
	// Must be positive if set.
	MaxSteps *int64

	// MaxRuntime caps wall-clock duration since guard construction, measured
	// on the monotonic clock. Trips at or after the ceiling.
	// Must be positive if set.
	MaxRuntime *time.Duration

	// MaxTokens caps accumulated token usage. Trips at or after the ceiling.
	// Must be non-negative if set.
	MaxTokens *int64

	// MaxCost caps accumulated monetary cost. Trips at or after the ceiling.
	// Must be non-negative if set.
	MaxCost *float64
}

// NewLimitConfig creates an empty LimitConfig with no limits set.
func NewLimitConfig() *LimitConfig {
	return &LimitConfig{}
}

// WithMaxSteps sets the step ceiling. Returns the config for chaining.
func (c *LimitConfig) WithMaxSteps(n int64) *LimitConfig {
	c.MaxSteps = &n
	return c
}

// WithMaxRuntime sets the runtime ceiling. Returns the config for chaining.
func (c *LimitConfig) WithMaxRuntime(d time.Duration) *LimitConfig {
	c.MaxRuntime = &d
	return c
}

// WithMaxTokens sets the token ceiling. Returns the config for chaining.
func (c *LimitConfig) WithMaxTokens(n int64) *LimitConfig {
	c.MaxTokens = &n
	return c
}

// WithMaxCost sets the cost ceiling. Returns the config for chaining.
func (c *LimitConfig) WithMaxCost(amount float64) *LimitConfig {
	c.MaxCost = &amount
	return c
}

// Validate checks that every configured ceiling is in range. It is called by
// [New], so an invalid config is rejected at guard construction rather than
// surfacing during a later check.
func (c *LimitConfig) Validate() error {
	if c.MaxSteps != nil && *c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be positive, got %d",
			ErrInvalidConfig, *c.MaxSteps)
	}
	if c.MaxRuntime != nil && *c.MaxRuntime <= 0 {
		return fmt.Errorf("%w: max_runtime must be positive, got %v",
			ErrInvalidConfig, *c.MaxRuntime)
	}
	if c.MaxTokens != nil && *c.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must be non-negative, got %d",
			ErrInvalidConfig, *c.MaxTokens)
	}
	if c.MaxCost != nil && *c.MaxCost < 0 {
		return fmt.Errorf("%w: max_cost must be non-negative, got %v",
			ErrInvalidConfig, *c.MaxCost)
	}
	return nil
}

// clone returns a copy of the config with its own pointer storage, so a
// caller mutating the original after construction cannot change a live
// guard's ceilings.
func (c *LimitConfig) clone() LimitConfig {
	var out LimitConfig
	if c == nil {
		return out
	}
	if c.MaxSteps != nil {
		v := *c.MaxSteps
		out.MaxSteps = &v
	}
	if c.MaxRuntime != nil {
		v := *c.MaxRuntime
		out.MaxRuntime = &v
	}
	if c.MaxTokens != nil {
		v := *c.MaxTokens
		out.MaxTokens = &v
	}
	if c.MaxCost != nil {
		v := *c.MaxCost
		out.MaxCost = &v
	}
	return out
}
