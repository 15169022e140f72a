package store

import (
	"sync"
	"testing"
	"time"
)

func TestMarkGreetedFiresOnce(t *testing.T) {
	s := NewSession("u1", time.Millisecond)

	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- s.MarkGreeted()
		}()
	}
	wg.Wait()
	close(wins)

	first := 0
	for w := range wins {
		if w {
			first++
		}
	}
	if first != 1 {
		t.Fatalf("MarkGreeted returned true %d times, want exactly 1", first)
	}
}

func TestBumpRevealInvalidatesSnapshot(t *testing.T) {
	s := NewSession("u1", time.Millisecond)

	gen := s.BumpReveal()
	if s.RevealGen() != gen {
		t.Fatalf("RevealGen() = %d immediately after bump %d", s.RevealGen(), gen)
	}

	s.BumpReveal()
	if s.RevealGen() == gen {
		t.Fatal("snapshot still current after a second bump")
	}
}

func TestSessionStateAccessorsAreConcurrencySafe(t *testing.T) {
	s := NewSession("u1", time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetPhase(PhaseCoaching)
				_ = s.Phase()
				s.SetPendingField("name")
				_ = s.PendingField()
				s.BumpReveal()
				_ = s.RevealGen()
			}
		}()
	}
	wg.Wait()

	if s.Phase() != PhaseCoaching {
		t.Fatalf("Phase() = %q, want %q", s.Phase(), PhaseCoaching)
	}
	if s.PendingField() != "name" {
		t.Fatalf("PendingField() = %q, want %q", s.PendingField(), "name")
	}
}
