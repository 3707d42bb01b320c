package events

import (
	"github.com/rickchristie/guardrail"
)

// Registry manages lifecycle event subscribers and dispatches events to them.
//
// Subscribers can implement any combination of subscriber interfaces
// (guardrail.ExecutionStartedSubscriber, ExecutionCompletedSubscriber,
// ExecutionTerminatedSubscriber); they only receive events for the
// interfaces they implement, in registration order.
//
//	registry := events.NewRegistry()
//	registry.Subscribe(&AuditLogSubscriber{})
//	registry.Subscribe(&AlertSubscriber{})
//
// # Thread Safety
//
// Registry is NOT thread-safe for registration. Subscribe all subscribers
// before starting the monitor. Dispatch may be called from the monitor's
// goroutine; subscribers must be safe for that.
type Registry struct {
	subscribers []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make([]any, 0),
	}
}

// Subscribe adds a subscriber. Returns the registry for chaining.
func (r *Registry) Subscribe(subscriber any) *Registry {
	r.subscribers = append(r.subscribers, subscriber)
	return r
}

// Dispatch sends an event to all matching subscribers in registration order.
func (r *Registry) Dispatch(event guardrail.Event) {
	switch e := event.(type) {
	case *guardrail.ExecutionStartedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(guardrail.ExecutionStartedSubscriber); ok {
				sub.OnExecutionStarted(e)
			}
		}
	case *guardrail.ExecutionCompletedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(guardrail.ExecutionCompletedSubscriber); ok {
				sub.OnExecutionCompleted(e)
			}
		}
	case *guardrail.ExecutionTerminatedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(guardrail.ExecutionTerminatedSubscriber); ok {
				sub.OnExecutionTerminated(e)
			}
		}
	}
}
