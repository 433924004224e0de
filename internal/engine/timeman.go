package engine

import (
	"time"
)

// TimeManager tracks the wall-clock budget of a single move computation.
// A zero budget never expires.
type TimeManager struct {
	budget    time.Duration // Time allowed for this move
	startTime time.Time     // When the move computation started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new move with the given budget.
func (tm *TimeManager) Init(budget time.Duration) {
	tm.startTime = time.Now()
	tm.budget = budget
}

// Elapsed returns the time elapsed since the move computation started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the time allowed for this move.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Remaining returns the time left, or zero once expired. With no budget it
// returns a negative duration.
func (tm *TimeManager) Remaining() time.Duration {
	if tm.budget <= 0 {
		return -1
	}
	left := tm.budget - tm.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Expired returns true once the budget has been used up.
func (tm *TimeManager) Expired() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}
