// Package turn serializes turn processing for one chat session: at most one
// turn in flight, and a minimum interval between accepted submissions so a
// double-fired submit (Enter plus click) collapses to a single turn.
package turn

import (
	"sync"
	"time"
)

// DefaultDebounce is the minimum interval between accepted turns.
const DefaultDebounce = 300 * time.Millisecond

// Guard is the per-session turn gate. Zero value is not usable; use NewGuard.
type Guard struct {
	mu           sync.Mutex
	debounce     time.Duration
	inFlight     bool
	lastAccepted time.Time
	now          func() time.Time
}

func NewGuard(debounce time.Duration) *Guard {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Guard{debounce: debounce, now: time.Now}
}

// TryAcquire attempts to start a turn. It returns false (drop, do not queue)
// when a turn is already in flight or the previous one was accepted less
// than the debounce window ago.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.inFlight {
		return false
	}
	if !g.lastAccepted.IsZero() && now.Sub(g.lastAccepted) < g.debounce {
		return false
	}
	g.inFlight = true
	g.lastAccepted = now
	return true
}

// Release ends the current turn. Must be called on every exit path of the
// turn, including failures, so the user can retry.
func (g *Guard) Release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// SetClock overrides the time source. Test hook.
func (g *Guard) SetClock(now func() time.Time) {
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
}
