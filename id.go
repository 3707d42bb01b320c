package guardrail

import "github.com/google/uuid"

// NewExecutionID returns a fresh unique execution identifier. Callers with
// their own id scheme can pass any opaque string to [New] instead.
func NewExecutionID() string {
	return uuid.NewString()
}
