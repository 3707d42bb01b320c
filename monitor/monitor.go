package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickchristie/guardrail"
	"github.com/rickchristie/guardrail/events"
)

// DefaultInterval is the polling interval used when none is configured.
// Pick an interval an order of magnitude smaller than the smallest
// configured runtime limit if you need tight termination latency.
const DefaultInterval = 100 * time.Millisecond

// State describes where the monitor is in its lifecycle.
type State int

const (
	// StateRunning means the monitor is polling the guard.
	StateRunning State = iota

	// StateTerminating means a limit tripped and the termination side
	// effects (cancel + notification) have fired. Terminal.
	StateTerminating

	// StateStopped means the monitor was cancelled externally before any
	// limit tripped. Terminal and silent.
	StateStopped
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Canceller is the execution engine's cancellation interface. The monitor
// calls it once when a limit trips; the engine must accept the request and
// interrupt in-progress work promptly. Cancelling an already-finished
// execution must not error.
type Canceller interface {
	Cancel(executionID string) error
}

// CancelFunc adapts a plain function to the Canceller interface.
type CancelFunc func(executionID string) error

// Cancel calls f.
func (f CancelFunc) Cancel(executionID string) error {
	return f(executionID)
}

// Config holds configuration options for the Monitor.
type Config struct {
	// Interval is the polling interval. Zero means DefaultInterval.
	Interval time.Duration

	// Logger receives termination and failure logs. Nil discards them.
	Logger *zerolog.Logger
}

// DefaultConfig returns a config with the default polling interval and no
// logger.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
	}
}

// Monitor watches one execution's Guard on a fixed polling interval,
// independently of the execution's own step cadence. Without it, a runtime
// limit would only be observed at the next step boundary, which can be
// arbitrarily far away when a step blocks.
//
// On the first tick whose aggregate check trips, the monitor cancels the
// execution through the Canceller, publishes exactly one
// [guardrail.ExecutionTerminatedEvent], and stops polling. If the execution
// completes first, call [Monitor.Stop]; that is a clean, silent shutdown.
//
// A Monitor is one-shot: construct a new one per execution.
type Monitor struct {
	guard     *guardrail.Guard
	canceller Canceller
	registry  *events.Registry
	interval  time.Duration
	logger    zerolog.Logger

	mu        sync.Mutex
	state     State
	started   bool
	cancelRun context.CancelFunc
	done      chan struct{}
	terminate sync.Once
}

// New creates a Monitor for the guard. The canceller and registry are the
// collaborator boundaries: canceller interrupts the execution engine,
// registry announces the termination. Either may be nil, in which case
// that side effect is skipped.
func New(
	guard *guardrail.Guard,
	canceller Canceller,
	registry *events.Registry,
	config Config,
) *Monitor {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Monitor{
		guard:     guard,
		canceller: canceller,
		registry:  registry,
		interval:  config.Interval,
		logger:    logger,
		state:     StateRunning,
		done:      make(chan struct{}),
	}
}

// Start launches the polling goroutine. The monitor also stops when ctx is
// cancelled, which counts as an external stop (silent). Start is a no-op
// after the first call.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.state != StateRunning {
		return
	}
	m.started = true

	runCtx, cancel := context.WithCancel(ctx)
	m.cancelRun = cancel
	go m.run(runCtx)
}

// Stop cancels the polling loop and waits for it to exit. Safe to call
// multiple times and safe to call after a trip; a monitor that already
// fired stays in StateTerminating.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.state = StateStopped
		m.mu.Unlock()
		return
	}
	cancel := m.cancelRun
	m.mu.Unlock()

	cancel()
	<-m.done
}

// State returns the monitor's current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done returns a channel closed when the polling loop has exited.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// run is the polling loop. It evaluates the guard's aggregate check on each
// tick and fires the termination side effects on the first trip.
func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			if m.state == StateRunning {
				m.state = StateStopped
			}
			m.mu.Unlock()
			return
		case <-ticker.C:
			outcome := m.guard.CheckAllLimits()
			if !outcome.ShouldTerminate {
				continue
			}
			m.fireTermination(outcome)
			return
		}
	}
}

// fireTermination performs the one-shot termination side effects: cancel
// the execution, publish the notification, enter StateTerminating. A failed
// cancel is logged and does not block the terminal state or the
// notification; the guard's decision stands even when signaling partially
// fails.
func (m *Monitor) fireTermination(outcome guardrail.CheckOutcome) {
	m.terminate.Do(func() {
		m.mu.Lock()
		m.state = StateTerminating
		m.mu.Unlock()

		executionID := m.guard.ExecutionID()
		m.logger.Warn().
			Str("execution_id", executionID).
			Str("reason", string(outcome.Reason)).
			Fields(outcome.Details).
			Msg("terminating execution: limit exceeded")

		if m.canceller != nil {
			if err := m.canceller.Cancel(executionID); err != nil {
				m.logger.Error().
					Err(err).
					Str("execution_id", executionID).
					Msg("execution cancel request failed")
			}
		}

		if m.registry != nil {
			m.registry.Dispatch(&guardrail.ExecutionTerminatedEvent{
				ExecutionID: executionID,
				Reason:      outcome.Reason,
				Details:     outcome.Details,
				At:          time.Now(),
			})
		}
	})
}
