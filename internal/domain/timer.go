package domain

import (
	"math"
	"time"
)

// Timer is one active countdown. EndAt is fixed at creation and never
// changes; the remaining time is always derived from it.
type Timer struct {
	ID    string
	Label string
	EndAt time.Time
}

// RemainingSeconds is recomputed on every display refresh, never stored.
func (t Timer) RemainingSeconds(now time.Time) int {
	remaining := int(math.Round(t.EndAt.Sub(now).Seconds()))
	if remaining < 0 {
		return 0
	}
	return remaining
}
