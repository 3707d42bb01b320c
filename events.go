package guardrail

import "time"

// Event is the marker interface for execution lifecycle events.
// Only events defined in this package can be dispatched.
type Event interface {
	lifecycleEvent()
}

// ExecutionStartedEvent is emitted once when a monitored execution begins.
type ExecutionStartedEvent struct {
	// ExecutionID identifies the execution.
	ExecutionID string

	// Limits is a copy of the ceilings configured for this execution.
	Limits LimitConfig

	// At is when monitoring started.
	At time.Time
}

func (*ExecutionStartedEvent) lifecycleEvent() {}

// ExecutionCompletedEvent is emitted once when an execution finishes
// normally, before any limit trips.
type ExecutionCompletedEvent struct {
	// ExecutionID identifies the execution.
	ExecutionID string

	// Stats is the final usage snapshot.
	Stats GuardStats

	// At is when the execution completed.
	At time.Time
}

func (*ExecutionCompletedEvent) lifecycleEvent() {}

// ExecutionTerminatedEvent is emitted exactly once when the guard decides
// to stop an execution. Reason and Details come straight from the tripping
// [CheckOutcome].
type ExecutionTerminatedEvent struct {
	// ExecutionID identifies the execution.
	ExecutionID string

	// Reason is the termination-cause tag (e.g. STEP_LIMIT_EXCEEDED).
	Reason Reason

	// Details carries the tripped limit's current value and ceiling.
	Details map[string]any

	// At is when the trip was detected.
	At time.Time
}

func (*ExecutionTerminatedEvent) lifecycleEvent() {}

// -----------------------------------------------------------------------------
// Subscriber Interfaces
// -----------------------------------------------------------------------------

// ExecutionStartedSubscriber receives ExecutionStartedEvent.
type ExecutionStartedSubscriber interface {
	OnExecutionStarted(e *ExecutionStartedEvent)
}

// ExecutionCompletedSubscriber receives ExecutionCompletedEvent.
type ExecutionCompletedSubscriber interface {
	OnExecutionCompleted(e *ExecutionCompletedEvent)
}

// ExecutionTerminatedSubscriber receives ExecutionTerminatedEvent.
type ExecutionTerminatedSubscriber interface {
	OnExecutionTerminated(e *ExecutionTerminatedEvent)
}
