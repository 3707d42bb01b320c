// Package guardrail enforces runtime safety limits on long-running
// executions that have no natural halting condition, such as LLM agent
// loops that can replan, retry, or loop indefinitely.
//
// A [Guard] holds one execution's ceilings (steps, runtime, tokens, cost)
// and live usage counters. The owning engine records usage as work
// completes and either polls the guard between steps or runs a
// monitor.Monitor alongside the execution to catch limits, principally the
// runtime limit, that would otherwise go unnoticed while a step blocks.
//
// # Quick Start
//
//	cfg := guardrail.NewLimitConfig().
//	    WithMaxSteps(50).
//	    WithMaxRuntime(2 * time.Minute).
//	    WithMaxCost(5.00)
//
//	guard, err := guardrail.New(guardrail.NewExecutionID(), cfg)
//	if err != nil {
//	    // invalid config, rejected at construction
//	}
//
//	// On the execution's critical path:
//	guard.RecordStep()
//	guard.RecordTokens(1536)
//	guard.RecordCost(0.012)
//
//	if outcome := guard.CheckAllLimits(); outcome.ShouldTerminate {
//	    // stop: outcome.Reason says why, outcome.Details says how far over
//	}
//
// # Background Monitoring
//
//	registry := events.NewRegistry().Subscribe(mySubscriber)
//	mon := monitor.New(guard, myCanceller, registry, monitor.DefaultConfig())
//	mon.Start(ctx)
//	defer mon.Stop() // silent when the execution completes first
//
// When several limits cross in the same evaluation, [Guard.CheckAllLimits]
// reports the highest-priority one (step, runtime, token, cost), so the
// termination cause is reproducible across runs.
//
// The guard performs no I/O; every operation is an in-memory comparison or
// counter update and returns immediately.
package guardrail
