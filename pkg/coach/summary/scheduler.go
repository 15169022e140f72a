// Package summary keeps the rolling conversation summary fresh without
// paying for a model call on every message. Each session owns one Scheduler;
// messages are enqueued as they happen and a summarize run fires either when
// a batch threshold is reached or when the session goes idle.
package summary

import (
	"sync"
	"time"
)

const (
	// DefaultBatchN triggers a run every N-th enqueued message.
	DefaultBatchN = 3
	// DefaultIdle triggers a run after this long without a new message.
	DefaultIdle = 12 * time.Second
)

// Payload is the newest message offered for summarization. Only the latest
// payload is summarized against the existing summary, not a full replay.
type Payload struct {
	Sender string
	Text   string
}

// Scheduler debounces and batches summarize runs for one session.
//
// State is cleared eagerly before fire is invoked, so messages enqueued
// while a run is in progress start a fresh cycle instead of being dropped.
// An explicit in-flight flag guarantees at most one fire per session even if
// the batch trigger and a just-expired idle timer race.
type Scheduler struct {
	mu sync.Mutex

	batchN int
	idle   time.Duration
	fire   func(Payload)

	dirty    bool
	count    int
	last     *Payload
	gen      uint64
	timer    *time.Timer
	inFlight bool
}

// NewScheduler builds a scheduler that calls fire on its own goroutine when
// a trigger condition is met. fire must be safe to call concurrently with
// Enqueue and should swallow its own failures: summarization is best effort.
func NewScheduler(batchN int, idle time.Duration, fire func(Payload)) *Scheduler {
	if batchN <= 0 {
		batchN = DefaultBatchN
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Scheduler{batchN: batchN, idle: idle, fire: fire}
}

// Enqueue records a new message. It resets the idle timer, and when the
// batch threshold is reached it triggers a run immediately.
func (s *Scheduler) Enqueue(sender, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	s.count++
	s.last = &Payload{Sender: sender, Text: text}
	s.gen++
	s.stopTimerLocked()

	if s.count >= s.batchN {
		s.runLocked()
		return
	}
	s.armTimerLocked()
}

// Flush forces a run if anything is pending. Used on session teardown.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLocked()
}

// runLocked starts a run if one is due and none is in flight. Idempotent:
// a duplicate timer firing after a batch run finds dirty == false and stops.
func (s *Scheduler) runLocked() {
	if !s.dirty || s.last == nil || s.inFlight {
		return
	}
	payload := *s.last
	s.dirty = false
	s.count = 0
	s.last = nil
	s.stopTimerLocked()
	s.inFlight = true

	go func() {
		s.fire(payload)

		s.mu.Lock()
		s.inFlight = false
		// Work that arrived mid-run starts a fresh cycle.
		if s.dirty {
			if s.count >= s.batchN {
				s.runLocked()
			} else {
				s.armTimerLocked()
			}
		}
		s.mu.Unlock()
	}()
}

func (s *Scheduler) armTimerLocked() {
	gen := s.gen
	s.timer = time.AfterFunc(s.idle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer enqueue superseded this timer.
		if gen != s.gen {
			return
		}
		s.runLocked()
	})
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// BuildPrompt renders the summarize request from the persisted summary and
// the newest payload. The model is asked for a bounded-length update.
func BuildPrompt(existing string, p Payload) string {
	return "Existing summary:\n" + existing + "\n\n" + p.Sender + ": " + p.Text + "\n\nUpdate summary (<=200 words):"
}
