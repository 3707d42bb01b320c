// Package events provides the subscriber registry that announces execution
// lifecycle events (started, completed, terminated) to observers.
//
// The monitor emits exactly one ExecutionTerminatedEvent per triggered
// termination; delivery ordering across subscribers follows registration
// order. The registry does not persist events.
package events
