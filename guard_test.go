package guardrail

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		config *LimitConfig
	}{
		{"zero max_steps", NewLimitConfig().WithMaxSteps(0)},
		{"negative max_steps", NewLimitConfig().WithMaxSteps(-5)},
		{"zero max_runtime", NewLimitConfig().WithMaxRuntime(0)},
		{"negative max_runtime", NewLimitConfig().WithMaxRuntime(-time.Second)},
		{"negative max_tokens", NewLimitConfig().WithMaxTokens(-1)},
		{"negative max_cost", NewLimitConfig().WithMaxCost(-0.01)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard, err := New("exec-1", tc.config)
			assert.Nil(t, guard)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNew_NilConfigMeansNoLimits(t *testing.T) {
	guard, err := New("exec-1", nil)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		guard.RecordStep()
	}
	guard.RecordTokens(1_000_000)
	guard.RecordCost(1000.0)

	outcome := guard.CheckAllLimits()
	assert.False(t, outcome.ShouldTerminate)
	assert.Equal(t, ReasonWithinLimits, outcome.Reason)
}

func TestNew_ConfigIsCopied(t *testing.T) {
	cfg := NewLimitConfig().WithMaxSteps(3)
	guard, err := New("exec-1", cfg)
	require.NoError(t, err)

	// Mutating the caller's config must not move the guard's ceiling.
	*cfg.MaxSteps = 1000

	for i := 0; i < 4; i++ {
		guard.RecordStep()
	}
	assert.NotNil(t, guard.CheckStepLimit())
}

func TestStepLimit_AllowsExactlyMaxSteps(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxSteps(3))
	require.NoError(t, err)

	// Exactly max_steps completed steps never trip.
	for i := 0; i < 3; i++ {
		guard.RecordStep()
		assert.Nil(t, guard.CheckStepLimit())
	}

	// The step after the limit trips.
	guard.RecordStep()
	outcome := guard.CheckStepLimit()
	require.NotNil(t, outcome)
	assert.True(t, outcome.ShouldTerminate)
	assert.Equal(t, ReasonStepLimitExceeded, outcome.Reason)
	assert.Equal(t, int64(4), outcome.Details["step_count"])
	assert.Equal(t, int64(3), outcome.Details["max_steps"])
}

func TestRuntimeLimit_TripsAtOrAfterCeiling(t *testing.T) {
	clock := NewMockTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	guard, err := New("exec-1", NewLimitConfig().WithMaxRuntime(100*time.Millisecond))
	require.NoError(t, err)
	guard.WithTimeProvider(clock)

	assert.Nil(t, guard.CheckRuntimeLimit())

	clock.Advance(99 * time.Millisecond)
	assert.Nil(t, guard.CheckRuntimeLimit())

	// Crossing-or-equal: trips exactly at the ceiling, unlike the step limit.
	clock.Advance(1 * time.Millisecond)
	outcome := guard.CheckRuntimeLimit()
	require.NotNil(t, outcome)
	assert.Equal(t, ReasonTimeLimitExceeded, outcome.Reason)
	assert.Equal(t, 100*time.Millisecond, outcome.Details["runtime"])
	assert.Equal(t, 100*time.Millisecond, outcome.Details["max_runtime"])
}

func TestTokenLimit_TripsAtCeiling(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxTokens(100))
	require.NoError(t, err)

	guard.RecordTokens(99)
	assert.Nil(t, guard.CheckTokenLimit())

	guard.RecordTokens(2)
	outcome := guard.CheckTokenLimit()
	require.NotNil(t, outcome)
	assert.Equal(t, ReasonTokenLimitExceeded, outcome.Reason)
	assert.Equal(t, int64(101), outcome.Details["token_count"])
	assert.Equal(t, int64(100), outcome.Details["max_tokens"])
}

func TestTokenLimit_ZeroCeilingTripsImmediately(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxTokens(0))
	require.NoError(t, err)

	outcome := guard.CheckTokenLimit()
	require.NotNil(t, outcome)
	assert.Equal(t, ReasonTokenLimitExceeded, outcome.Reason)
}

func TestCostLimit_TripsAtCeiling(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxCost(1.00))
	require.NoError(t, err)

	guard.RecordCost(0.99)
	assert.Nil(t, guard.CheckCostLimit())

	guard.RecordCost(0.02)
	outcome := guard.CheckCostLimit()
	require.NotNil(t, outcome)
	assert.Equal(t, ReasonCostLimitExceeded, outcome.Reason)
	assert.Equal(t, 1.00, outcome.Details["max_cost"])
}

func TestCostLimit_FloatAccumulationReachesCeiling(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxCost(1.00))
	require.NoError(t, err)

	// 10 * 0.1 sums to 0.9999999999999999 in float64; the tolerance-aware
	// comparison must still treat the ceiling as reached.
	for i := 0; i < 10; i++ {
		guard.RecordCost(0.1)
	}
	outcome := guard.CheckCostLimit()
	require.NotNil(t, outcome)
	assert.Equal(t, ReasonCostLimitExceeded, outcome.Reason)
}

func TestRecord_NonPositiveIsNoOp(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().WithMaxTokens(10).WithMaxCost(1.0))
	require.NoError(t, err)

	guard.RecordTokens(0)
	guard.RecordTokens(-50)
	guard.RecordCost(0)
	guard.RecordCost(-99.0)

	stats := guard.Stats()
	assert.Equal(t, int64(0), stats.TokenCount)
	assert.Equal(t, 0.0, stats.CostAccrued)
	assert.Nil(t, guard.CheckTokenLimit())
	assert.Nil(t, guard.CheckCostLimit())
}

func TestCheckAllLimits_PriorityOrder(t *testing.T) {
	clock := NewMockTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	guard, err := New("exec-1", NewLimitConfig().
		WithMaxSteps(1).
		WithMaxRuntime(time.Millisecond).
		WithMaxTokens(1).
		WithMaxCost(0.01))
	require.NoError(t, err)
	guard.WithTimeProvider(clock)

	// Push every dimension past its ceiling at once.
	guard.RecordStep()
	guard.RecordStep()
	clock.Advance(time.Hour)
	guard.RecordTokens(1000)
	guard.RecordCost(100.0)

	outcome := guard.CheckAllLimits()
	require.True(t, outcome.ShouldTerminate)
	assert.Equal(t, ReasonStepLimitExceeded, outcome.Reason)
}

func TestCheckAllLimits_WithinLimitsSnapshot(t *testing.T) {
	clock := NewMockTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	guard, err := New("exec-1", NewLimitConfig().
		WithMaxSteps(100).
		WithMaxRuntime(10*time.Second).
		WithMaxTokens(1000).
		WithMaxCost(10.0))
	require.NoError(t, err)
	guard.WithTimeProvider(clock)

	guard.RecordStep()
	guard.RecordTokens(50)
	guard.RecordCost(0.50)
	clock.Advance(time.Second)

	outcome := guard.CheckAllLimits()
	assert.False(t, outcome.ShouldTerminate)
	assert.Equal(t, ReasonWithinLimits, outcome.Reason)
	assert.Equal(t, int64(1), outcome.Details["step_count"])
	assert.Equal(t, int64(50), outcome.Details["token_count"])
	assert.Equal(t, 0.50, outcome.Details["cost_accrued"])
	assert.Equal(t, time.Second, outcome.Details["runtime"])
}

func TestCheckAllLimits_IdempotentWithoutMutation(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig().
		WithMaxSteps(100).
		WithMaxTokens(1000))
	require.NoError(t, err)
	guard.RecordStep()
	guard.RecordTokens(10)

	first := guard.CheckAllLimits()
	second := guard.CheckAllLimits()
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.ShouldTerminate, second.ShouldTerminate)
	assert.Equal(t, first.Details["step_count"], second.Details["step_count"])
	assert.Equal(t, first.Details["token_count"], second.Details["token_count"])
}

func TestIndividualChecks_NilWhenUnconfigured(t *testing.T) {
	guard, err := New("exec-1", NewLimitConfig())
	require.NoError(t, err)
	guard.RecordStep()
	guard.RecordTokens(1 << 40)
	guard.RecordCost(1e9)

	assert.Nil(t, guard.CheckStepLimit())
	assert.Nil(t, guard.CheckRuntimeLimit())
	assert.Nil(t, guard.CheckTokenLimit())
	assert.Nil(t, guard.CheckCostLimit())
}

func TestRecord_ConcurrentCallersLoseNoUpdates(t *testing.T) {
	const callers = 8
	const perCaller = 1000

	guard, err := New("exec-1", NewLimitConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perCaller; j++ {
				guard.RecordStep()
				guard.RecordTokens(1)
				guard.RecordCost(0.001)
			}
		}()
	}
	wg.Wait()

	stats := guard.Stats()
	assert.Equal(t, int64(callers*perCaller), stats.StepCount)
	assert.Equal(t, int64(callers*perCaller), stats.TokenCount)
	assert.InDelta(t, float64(callers*perCaller)*0.001, stats.CostAccrued, 1e-6)
}

func TestStats_Snapshot(t *testing.T) {
	clock := NewMockTimeProvider(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	guard, err := New("exec-42", NewLimitConfig().
		WithMaxSteps(10).
		WithMaxRuntime(time.Minute))
	require.NoError(t, err)
	guard.WithTimeProvider(clock)

	guard.RecordStep()
	guard.RecordTokens(128)
	guard.RecordCost(0.25)
	clock.Advance(5 * time.Second)

	stats := guard.Stats()
	assert.Equal(t, "exec-42", stats.ExecutionID)
	assert.Equal(t, int64(1), stats.StepCount)
	assert.Equal(t, int64(128), stats.TokenCount)
	assert.Equal(t, 0.25, stats.CostAccrued)
	assert.Equal(t, 5*time.Second, stats.Runtime)

	require.NotNil(t, stats.Limits.MaxSteps)
	assert.Equal(t, int64(10), *stats.Limits.MaxSteps)
	require.NotNil(t, stats.Limits.MaxRuntime)
	assert.Equal(t, time.Minute, *stats.Limits.MaxRuntime)

	// Unset ceilings stay nil, meaning "no limit".
	assert.Nil(t, stats.Limits.MaxTokens)
	assert.Nil(t, stats.Limits.MaxCost)
}
