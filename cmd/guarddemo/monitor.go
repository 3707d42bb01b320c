package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rickchristie/guardrail"
	"github.com/rickchristie/guardrail/events"
	"github.com/rickchristie/guardrail/monitor"
)

// logSubscriber logs lifecycle events as they are dispatched.
type logSubscriber struct {
	logger zerolog.Logger
}

func (s *logSubscriber) OnExecutionStarted(e *guardrail.ExecutionStartedEvent) {
	s.logger.Info().Str("execution_id", e.ExecutionID).Msg("execution started")
}

func (s *logSubscriber) OnExecutionCompleted(e *guardrail.ExecutionCompletedEvent) {
	s.logger.Info().
		Str("execution_id", e.ExecutionID).
		Dur("runtime", e.Stats.Runtime).
		Msg("execution completed")
}

func (s *logSubscriber) OnExecutionTerminated(e *guardrail.ExecutionTerminatedEvent) {
	s.logger.Warn().
		Str("execution_id", e.ExecutionID).
		Str("reason", string(e.Reason)).
		Fields(e.Details).
		Msg("execution terminated")
}

// monitorCmd runs a slow task (3s) under a 2s runtime limit so the monitor
// fires, cancels the work, and publishes the termination event.
func monitorCmd(logger zerolog.Logger) *cobra.Command {
	var maxRuntime time.Duration
	var workDuration time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Kill slow work with a background monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, err := guardrail.New(
				guardrail.NewExecutionID(),
				guardrail.NewLimitConfig().WithMaxRuntime(maxRuntime),
			)
			if err != nil {
				return err
			}

			registry := events.NewRegistry().
				Subscribe(&logSubscriber{logger: logger})

			workCtx, cancelWork := context.WithCancel(cmd.Context())
			defer cancelWork()

			mon := monitor.New(
				guard,
				monitor.CancelFunc(func(string) error {
					cancelWork()
					return nil
				}),
				registry,
				monitor.Config{
					Interval: 50 * time.Millisecond,
					Logger:   &logger,
				},
			)

			registry.Dispatch(&guardrail.ExecutionStartedEvent{
				ExecutionID: guard.ExecutionID(),
				Limits:      guard.Config(),
				At:          time.Now(),
			})
			mon.Start(cmd.Context())
			defer mon.Stop()

			// Simulated unit of work that only stops when cancelled.
			select {
			case <-time.After(workDuration):
				registry.Dispatch(&guardrail.ExecutionCompletedEvent{
					ExecutionID: guard.ExecutionID(),
					Stats:       guard.Stats(),
					At:          time.Now(),
				})
			case <-workCtx.Done():
				logger.Info().Msg("work interrupted by guard")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxRuntime, "max-runtime", 2*time.Second,
		"runtime ceiling for the execution")
	cmd.Flags().DurationVar(&workDuration, "work", 3*time.Second,
		"how long the simulated work runs if not interrupted")
	return cmd
}
