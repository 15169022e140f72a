package summary

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fireRecorder collects payloads across goroutines.
type fireRecorder struct {
	mu       sync.Mutex
	payloads []Payload
	fired    chan struct{}
}

func newFireRecorder() *fireRecorder {
	return &fireRecorder{fired: make(chan struct{}, 16)}
}

func (r *fireRecorder) fire(p Payload) {
	r.mu.Lock()
	r.payloads = append(r.payloads, p)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *fireRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fire")
	}
}

func (r *fireRecorder) snapshot() []Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Payload, len(r.payloads))
	copy(out, r.payloads)
	return out
}

func TestBatchTriggerFiresWithLastPayload(t *testing.T) {
	rec := newFireRecorder()
	s := NewScheduler(3, time.Hour, rec.fire)

	s.Enqueue("user", "one")
	s.Enqueue("bot", "two")
	s.Enqueue("user", "three")

	rec.wait(t)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("fired %d times, want 1", len(got))
	}
	if got[0].Sender != "user" || got[0].Text != "three" {
		t.Errorf("payload = %+v, want latest message", got[0])
	}
}

func TestIdleTriggerFires(t *testing.T) {
	rec := newFireRecorder()
	s := NewScheduler(100, 30*time.Millisecond, rec.fire)

	s.Enqueue("user", "hello")

	rec.wait(t)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("fired %d times, want 1", len(got))
	}
	if got[0].Text != "hello" {
		t.Errorf("payload = %+v", got[0])
	}
}

func TestEnqueueResetsIdleTimer(t *testing.T) {
	rec := newFireRecorder()
	s := NewScheduler(100, 80*time.Millisecond, rec.fire)

	s.Enqueue("user", "first")
	time.Sleep(40 * time.Millisecond)
	s.Enqueue("user", "second")
	time.Sleep(40 * time.Millisecond)

	// 80ms have passed since "first" but only 40ms since "second".
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("fired before reset idle window elapsed: %+v", got)
	}

	rec.wait(t)
	got := rec.snapshot()
	if len(got) != 1 || got[0].Text != "second" {
		t.Errorf("payloads = %+v, want one fire with second", got)
	}
}

func TestFlushFiresPendingOnly(t *testing.T) {
	rec := newFireRecorder()
	s := NewScheduler(100, time.Hour, rec.fire)

	s.Flush() // nothing pending: no fire
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("flush with no pending fired: %+v", got)
	}

	s.Enqueue("user", "pending")
	s.Flush()
	rec.wait(t)

	got := rec.snapshot()
	if len(got) != 1 || got[0].Text != "pending" {
		t.Errorf("payloads = %+v", got)
	}

	// State was cleared eagerly: another flush is a no-op.
	s.Flush()
	time.Sleep(20 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("flush after clear fired again: %+v", got)
	}
}

func TestAtMostOneRunInFlight(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	var mu sync.Mutex
	var count int

	s := NewScheduler(1, time.Hour, func(Payload) {
		mu.Lock()
		count++
		mu.Unlock()
		started <- struct{}{}
		<-release
	})

	s.Enqueue("user", "a")
	<-started

	// These land while the first run blocks; they must not start a second.
	s.Enqueue("user", "b")
	s.Enqueue("user", "c")

	mu.Lock()
	if count != 1 {
		mu.Unlock()
		t.Fatalf("runs started = %d, want 1 while in flight", count)
	}
	mu.Unlock()

	close(release)

	// The pending work starts a fresh cycle once the first run returns.
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up run never started")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Runner trains 4x weekly.", Payload{Sender: "user", Text: "my knee hurts"})
	if !strings.Contains(p, "Runner trains 4x weekly.") {
		t.Error("existing summary missing from prompt")
	}
	if !strings.Contains(p, "user: my knee hurts") {
		t.Error("latest message missing from prompt")
	}
}
