package store

import (
	"sync"
	"sync/atomic"
	"time"

	"run-coach-be/pkg/coach/summary"
	"run-coach-be/pkg/coach/turn"
)

// Session represents the active per-user conversation state in memory. It is
// never persisted: the durable truth lives in the profile and message tables,
// and a fresh Session is lazily created after restarts or cache eviction.
//
// Phase, pending field and greeted flag are mutated both by guarded turns and
// by session init, which does not hold the turn guard, so access goes through
// the mutex-backed accessors. The reveal generation is read from the reveal
// goroutine after the guard is released and is therefore atomic.
type Session struct {
	UserID string

	// Guard serializes turns for this user and drops rapid-fire duplicates.
	Guard *turn.Guard

	// Summarizer batches summary triggers for this user's conversation.
	// Attached by the orchestrator because its fire callback closes over
	// service deps.
	Summarizer *summary.Scheduler

	// revealGen invalidates an in-progress progressive reveal when a newer
	// turn starts. Compared against a snapshot taken at reveal start.
	revealGen atomic.Uint64

	mu           sync.Mutex
	phase        string
	pendingField string
	greeted      bool
}

const (
	PhaseOnboarding = "ONBOARDING"
	PhaseCoaching   = "COACHING"
)

// NewSession builds a Session with a fresh guard. A non-positive debounce
// falls back to the package default.
func NewSession(userID string, debounce time.Duration) *Session {
	return &Session{
		UserID: userID,
		phase:  PhaseOnboarding,
		Guard:  turn.NewGuard(debounce),
	}
}

func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) SetPhase(phase string) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

// PendingField is the onboarding field the last question asked for, so the
// next message can be validated against it. Empty outside onboarding.
func (s *Session) PendingField() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingField
}

func (s *Session) SetPendingField(key string) {
	s.mu.Lock()
	s.pendingField = key
	s.mu.Unlock()
}

// MarkGreeted records that the welcome-back message went out. It returns
// false when the session was already greeted, so the greeting is sent at
// most once per session lifetime.
func (s *Session) MarkGreeted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.greeted {
		return false
	}
	s.greeted = true
	return true
}

// BumpReveal starts a new reveal generation, invalidating any reveal still
// playing out, and returns the new generation.
func (s *Session) BumpReveal() uint64 {
	return s.revealGen.Add(1)
}

// RevealGen returns the current reveal generation.
func (s *Session) RevealGen() uint64 {
	return s.revealGen.Load()
}
