package turn

import (
	"testing"
	"time"
)

func TestGuardSerializesTurns(t *testing.T) {
	g := NewGuard(DefaultDebounce)

	if !g.TryAcquire() {
		t.Fatal("first acquire rejected")
	}
	if g.TryAcquire() {
		t.Error("second acquire succeeded while turn in flight")
	}
	g.Release()
}

func TestGuardDebounce(t *testing.T) {
	g := NewGuard(300 * time.Millisecond)

	now := time.Unix(1000, 0)
	g.SetClock(func() time.Time { return now })

	if !g.TryAcquire() {
		t.Fatal("first acquire rejected")
	}
	g.Release()

	// Released but still inside the debounce window: dropped.
	now = now.Add(100 * time.Millisecond)
	if g.TryAcquire() {
		t.Error("acquire succeeded inside debounce window")
	}

	now = now.Add(250 * time.Millisecond)
	if !g.TryAcquire() {
		t.Error("acquire rejected after debounce window passed")
	}
	g.Release()
}

func TestGuardReleaseAllowsRetry(t *testing.T) {
	g := NewGuard(10 * time.Millisecond)

	now := time.Unix(1000, 0)
	g.SetClock(func() time.Time { return now })

	if !g.TryAcquire() {
		t.Fatal("first acquire rejected")
	}
	g.Release()

	now = now.Add(time.Second)
	if !g.TryAcquire() {
		t.Error("acquire rejected after release and debounce")
	}
}

func TestGuardZeroDebounceFallsBack(t *testing.T) {
	g := NewGuard(0)
	if g.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", g.debounce, DefaultDebounce)
	}
}
