package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rickchristie/guardrail"
)

// limitsCmd runs each limit in isolation against synthetic usage and logs
// the outcome as the guard fires.
func limitsCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Fire each limit in isolation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := demoStepLimit(logger); err != nil {
				return err
			}
			if err := demoRuntimeLimit(logger); err != nil {
				return err
			}
			if err := demoTokenLimit(logger); err != nil {
				return err
			}
			return demoCostLimit(logger)
		},
	}
}

func demoStepLimit(logger zerolog.Logger) error {
	guard, err := guardrail.New(
		guardrail.NewExecutionID(),
		guardrail.NewLimitConfig().WithMaxSteps(3),
	)
	if err != nil {
		return err
	}
	for i := 1; i <= 5; i++ {
		guard.RecordStep()
		outcome := guard.CheckAllLimits()
		if outcome.ShouldTerminate {
			logOutcome(logger, "step limit", i, outcome)
			return nil
		}
		logger.Info().Int("step", i).Msg("step limit: within limits")
	}
	return nil
}

func demoRuntimeLimit(logger zerolog.Logger) error {
	guard, err := guardrail.New(
		guardrail.NewExecutionID(),
		guardrail.NewLimitConfig().WithMaxRuntime(150*time.Millisecond),
	)
	if err != nil {
		return err
	}
	logger.Info().Msg("runtime limit: waiting 200ms")
	time.Sleep(200 * time.Millisecond)
	logOutcome(logger, "runtime limit", 0, guard.CheckAllLimits())
	return nil
}

func demoTokenLimit(logger zerolog.Logger) error {
	guard, err := guardrail.New(
		guardrail.NewExecutionID(),
		guardrail.NewLimitConfig().WithMaxTokens(10),
	)
	if err != nil {
		return err
	}
	guard.RecordTokens(12)
	logOutcome(logger, "token limit", 0, guard.CheckAllLimits())
	return nil
}

func demoCostLimit(logger zerolog.Logger) error {
	guard, err := guardrail.New(
		guardrail.NewExecutionID(),
		guardrail.NewLimitConfig().WithMaxCost(1.00),
	)
	if err != nil {
		return err
	}
	guard.RecordCost(1.50)
	logOutcome(logger, "cost limit", 0, guard.CheckAllLimits())
	return nil
}

func logOutcome(
	logger zerolog.Logger,
	scenario string,
	step int,
	outcome guardrail.CheckOutcome,
) {
	evt := logger.Warn().
		Str("scenario", scenario).
		Str("reason", string(outcome.Reason)).
		Fields(outcome.Details)
	if step > 0 {
		evt = evt.Int("step", step)
	}
	evt.Msg("guard fired")
}
