package application

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jarvis/internal/domain"
)

// Announcer delivers a notification to the user: an assistant chat message
// plus the spoken version of it.
type Announcer interface {
	Announce(text string)
}

type activeTimer struct {
	domain.Timer
	handle TimerHandle
}

// TimerRegistry owns the set of active countdown timers. Any number of
// timers can run at once; operations on distinct ids never interfere, and
// operations on the same id are serialized so cancel-during-fire cannot
// both remove and fire.
type TimerRegistry struct {
	clock     Clock
	announcer Announcer
	logger    *slog.Logger

	mu     sync.Mutex
	timers map[string]*activeTimer
}

func NewTimerRegistry(clock Clock, announcer Announcer, logger *slog.Logger) *TimerRegistry {
	return &TimerRegistry{
		clock:     clock,
		announcer: announcer,
		logger:    logger,
		timers:    make(map[string]*activeTimer),
	}
}

// Start schedules a one-shot countdown, announces it before returning, and
// returns the fresh timer id. The duration is rounded to whole seconds.
func (r *TimerRegistry) Start(durationSeconds float64, label string) string {
	seconds := int(math.Round(durationSeconds))
	id := uuid.NewString()
	humanLabel := fmt.Sprintf("%s (%ds)", label, seconds)
	d := time.Duration(seconds) * time.Second

	r.mu.Lock()
	t := &activeTimer{Timer: domain.Timer{
		ID:    id,
		Label: humanLabel,
		EndAt: r.clock.Now().Add(d),
	}}
	// Scheduled while holding the lock: a zero-duration fire blocks on the
	// mutex until the entry is in place.
	t.handle = r.clock.AfterFunc(d, func() { r.fire(id, label) })
	r.timers[id] = t
	r.mu.Unlock()

	r.logger.Info("timer started", "id", id, "seconds", seconds)
	r.announcer.Announce("Started " + humanLabel)
	return id
}

func (r *TimerRegistry) fire(id, label string) {
	r.mu.Lock()
	_, present := r.timers[id]
	delete(r.timers, id)
	r.mu.Unlock()

	if !present {
		// Cancelled after the handle fired but before we got the lock.
		return
	}

	r.logger.Info("timer finished", "id", id)
	r.announcer.Announce(label + " finished!")
}

// Cancel stops a timer. It reports false for unknown ids, which makes a
// double cancel a no-op. A cancelled timer never fires its completion.
func (r *TimerRegistry) Cancel(id string) bool {
	r.mu.Lock()
	t, ok := r.timers[id]
	if ok {
		delete(r.timers, id)
		t.handle.Stop()
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	r.logger.Info("timer cancelled", "id", id)
	r.announcer.Announce("Cancelled " + t.Label)
	return true
}

// ClearAll drops every active timer in one step and announces exactly once.
func (r *TimerRegistry) ClearAll() {
	r.mu.Lock()
	for id, t := range r.timers {
		t.handle.Stop()
		delete(r.timers, id)
	}
	r.mu.Unlock()

	r.announcer.Announce("Cleared all timers")
}

// Snapshot returns the active timers ordered by end time, for display.
func (r *TimerRegistry) Snapshot() []domain.Timer {
	r.mu.Lock()
	out := make([]domain.Timer, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, t.Timer)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EndAt.Before(out[j].EndAt) })
	return out
}

// RemainingSeconds derives the countdown for one timer from the registry
// clock.
func (r *TimerRegistry) RemainingSeconds(t domain.Timer) int {
	return t.RemainingSeconds(r.clock.Now())
}

// Len reports how many timers are active.
func (r *TimerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
